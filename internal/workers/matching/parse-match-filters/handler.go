// internal/workers/matching/parse-match-filters/handler.go
package parsematchfilters

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/common/logger"
	"nil-matching/internal/models"
	"nil-matching/pkg/registry"
)

const TaskType = "parse-match-filters"

// Compact spellings (upper case, separators removed) that differ from the
// canonical conference labels.
var conferenceAliases = map[string]models.Conference{
	"BIG10":         models.ConferenceBigTen,
	"B1G":           models.ConferenceBigTen,
	"BIGTEN":        models.ConferenceBigTen,
	"BIG12":         models.ConferenceBig12,
	"BIGXII":        models.ConferenceBig12,
	"PAC12":         models.ConferencePac12,
	"PACIFIC12":     models.ConferencePac12,
	"CUSA":          models.ConferenceConferenceUSA,
	"CONFERENCEUSA": models.ConferenceConferenceUSA,
	"IVY":           models.ConferenceIvyLeague,
	"IVYLEAGUE":     models.ConferenceIvyLeague,
	"MWC":           models.ConferenceMountainWest,
	"MOUNTAINWEST":  models.ConferenceMountainWest,
	"SUNBELT":       models.ConferenceSunBelt,
	"AMERICAN":      models.ConferenceAAC,
	"IND":           models.ConferenceIndependent,
}

var sportAliases = map[string]models.Sport{
	"MBB":   models.SportMensBasketball,
	"WBB":   models.SportWomensBasketball,
	"FB":    models.SportFootball,
	"TRACK": models.SportTrackAndField,
	"XC":    models.SportCrossCountry,
	"SWIM":  models.SportSwimming,
	"CHEER": models.SportCheerleading,
}

var countSuffixes = map[byte]float64{'K': 1e3, 'M': 1e6, 'B': 1e9}

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
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

// Execute normalizes the raw filter map. Unknown labels are skipped with a
// warning; malformed numbers or inverted ranges fail with INVALID_FILTER_FORMAT.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	raw := input.RawFilters
	if raw == nil {
		raw = map[string]interface{}{}
	}

	var (
		filters  models.MatchFilters
		warnings = []string{}
	)

	for _, label := range parseStringArray(first(raw, "sports", "sport")) {
		if s, ok := lookupSport(label); ok {
			filters.Sports = appendUnique(filters.Sports, s)
		} else {
			warnings = append(warnings, fmt.Sprintf("unknown sport %q ignored", label))
		}
	}

	for _, label := range parseStringArray(first(raw, "conferences", "conference")) {
		if c, ok := lookupConference(label); ok {
			filters.Conferences = appendUnique(filters.Conferences, c)
		} else {
			warnings = append(warnings, fmt.Sprintf("unknown conference %q ignored", label))
		}
	}

	for _, label := range parseStringArray(first(raw, "contentTypes", "contentType")) {
		if c, ok := models.LookupContentType(label); ok {
			filters.ContentTypes = appendUnique(filters.ContentTypes, c)
		} else {
			warnings = append(warnings, fmt.Sprintf("unknown content type %q ignored", label))
		}
	}

	var err error
	if v := first(raw, "minFollowers"); v != nil {
		if filters.MinFollowers, err = parseCount(v); err != nil {
			return nil, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("minFollowers: %v", err))
		}
	}
	if v := first(raw, "maxFollowers"); v != nil {
		if filters.MaxFollowers, err = parseCount(v); err != nil {
			return nil, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("maxFollowers: %v", err))
		}
	}
	if filters.MaxFollowers > 0 && filters.MinFollowers > filters.MaxFollowers {
		return nil, apperrors.NewInvalidFilterFormatError(fmt.Sprintf(
			"minFollowers (%d) > maxFollowers (%d)", filters.MinFollowers, filters.MaxFollowers))
	}

	if v := first(raw, "minEngagementRate", "minEngagement"); v != nil {
		if filters.MinEngagementRate, err = parseRate(v); err != nil {
			return nil, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("minEngagementRate: %v", err))
		}
	}

	h.logger.Info("filters parsed", map[string]interface{}{
		"sports":      len(filters.Sports),
		"conferences": len(filters.Conferences),
		"warnings":    len(warnings),
	})

	return &Output{
		Filters:        filters,
		FiltersApplied: filters.Applied(),
		Warnings:       warnings,
	}, nil
}

func first(raw map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// parseStringArray accepts a CSV string or an array of strings, trimming
// and dropping empties.
func parseStringArray(raw interface{}) []string {
	result := []string{}
	add := func(s string) {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	switch v := raw.(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			add(part)
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	}
	return result
}

func compact(label string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToUpper(strings.TrimSpace(label)))
}

func lookupConference(label string) (models.Conference, bool) {
	if c, ok := conferenceAliases[compact(label)]; ok {
		return c, true
	}
	return models.LookupConference(label)
}

func lookupSport(label string) (models.Sport, bool) {
	if s, ok := sportAliases[compact(label)]; ok {
		return s, true
	}
	return models.LookupSport(label)
}

func appendUnique[T comparable](list []T, v T) []T {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// parseCount reads follower counts such as 25000, "25,000", "10k" or "1.5M".
func parseCount(raw interface{}) (int, error) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case string:
		s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(v), ",", ""))
		if s == "" {
			return 0, fmt.Errorf("empty value")
		}
		mult := 1.0
		if m, ok := countSuffixes[s[len(s)-1]]; ok {
			mult = m
			s = strings.TrimSpace(s[:len(s)-1])
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a follower count", v)
		}
		n = f * mult
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}

	if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("must be a non-negative number")
	}
	return int(math.Round(n)), nil
}

// parseRate reads an engagement percentage such as 3.5 or "3.5%".
func parseRate(raw interface{}) (float64, error) {
	var r float64
	switch v := raw.(type) {
	case float64:
		r = v
	case int:
		r = float64(v)
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(v), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a percentage", v)
		}
		r = f
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
	if r < 0 || r > 100 {
		return 0, fmt.Errorf("must be between 0 and 100")
	}
	return r, nil
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
