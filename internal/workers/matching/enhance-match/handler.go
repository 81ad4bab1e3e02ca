// internal/workers/matching/enhance-match/handler.go
package enhancematch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/common/logger"
	"nil-matching/internal/common/metrics"
	"nil-matching/internal/models"
	"nil-matching/internal/qualitative"
	"nil-matching/pkg/registry"
)

const TaskType = "enhance-match"

type Handler struct {
	config       *Config
	enhancer     *qualitative.Enhancer
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, enhancer *qualitative.Enhancer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		enhancer:     enhancer,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := registry.CheckInput(TaskType, job.Variables); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		err = apperrors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err))
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	h.completeJob(client, job, output)
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Match.SubjectID != input.Athlete.ID || input.Match.BrandID != input.Brand.ID {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf(
			"match is for %s/%s but athlete/brand are %s/%s",
			input.Match.SubjectID, input.Match.BrandID, input.Athlete.ID, input.Brand.ID))
	}

	output := &Output{Match: input.Match}
	if input.Match.ScoringMethod == models.MethodHybrid || input.Match.IsExcluded {
		return output, nil
	}

	if h.enhancer == nil {
		return h.degrade(output, qualitative.ErrNotConfigured)
	}

	enhanced, err := h.enhancer.Enhance(ctx, input.Athlete, input.Brand, input.Match)
	if err != nil {
		return h.degrade(output, err)
	}

	metrics.ObserveMatch(TaskType, enhanced)
	h.logger.Info("match enhanced", map[string]interface{}{
		"athleteId": enhanced.SubjectID,
		"brandId":   enhanced.BrandID,
		"ruleScore": input.Match.TotalScore,
		"score":     enhanced.TotalScore,
		"tier":      string(enhanced.Tier),
	})

	output.Match = enhanced
	output.Enhanced = true
	return output, nil
}

// degrade keeps the rule-based match, or returns a job error when the worker
// is configured to fail on assessment errors.
func (h *Handler) degrade(output *Output, err error) (*Output, error) {
	if h.config.FailOnError {
		return nil, classify(err)
	}
	if !errors.Is(err, qualitative.ErrNotConfigured) {
		output.QualitativeError = err.Error()
	}
	return output, nil
}

func classify(err error) error {
	if _, ok := apperrors.AsStandard(err); ok {
		return err
	}
	switch {
	case errors.Is(err, qualitative.ErrNotConfigured):
		return apperrors.NewQualitativeUnavailableError("no qualitative provider configured")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewQualitativeTimeoutError(err)
	default:
		return apperrors.NewQualitativeFailedError(err)
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
