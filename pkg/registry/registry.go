// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/common/validation"
)

//go:embed activity-registry.json
var embedded []byte

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode activity registry: %w", err)
	}
	return &reg, nil
}

// Save writes reg as indented JSON, creating the directory if needed.
func Save(reg *ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

var (
	defaultOnce sync.Once
	defaultReg  *ActivityRegistry
	defaultErr  error

	validatorsMu sync.Mutex
	validators   = map[string]*validation.Validator{}
)

// Default returns the catalog compiled into the binary.
func Default() (*ActivityRegistry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Parse(embedded)
	})
	return defaultReg, defaultErr
}

// MustDefault panics if the embedded catalog is malformed.
func MustDefault() *ActivityRegistry {
	reg, err := Default()
	if err != nil {
		panic(err)
	}
	return reg
}

// InputValidator returns the compiled input schema for taskType from the
// embedded catalog. Validators are compiled once and shared.
func InputValidator(taskType string) (*validation.Validator, error) {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()

	if v, ok := validators[taskType]; ok {
		return v, nil
	}

	reg, err := Default()
	if err != nil {
		return nil, err
	}
	activity, ok := reg.Find(taskType)
	if !ok {
		return nil, fmt.Errorf("task type %s is not registered", taskType)
	}

	v, err := validation.NewValidator(activity.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("task type %s: %w", taskType, err)
	}
	validators[taskType] = v
	return v, nil
}

// ValidateInput checks raw job variables against the task type's input schema.
func ValidateInput(taskType, variables string) (*validation.ValidationResult, error) {
	v, err := InputValidator(taskType)
	if err != nil {
		return nil, err
	}
	if variables == "" {
		variables = "{}"
	}
	return v.ValidateJSON(variables)
}

// CheckInput validates job variables and returns a VALIDATION_FAILED error
// listing every violation.
func CheckInput(taskType, variables string) error {
	result, err := ValidateInput(taskType, variables)
	if err != nil {
		return apperrors.NewValidationFailedError(err.Error())
	}
	if !result.Valid {
		return apperrors.NewValidationFailedError(result.Summary())
	}
	return nil
}
