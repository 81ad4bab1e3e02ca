// internal/workers/matching/score-match/handler.go
package scorematch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"nil-matching/internal/acquisition"
	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/common/logger"
	"nil-matching/internal/common/metrics"
	"nil-matching/internal/matching"
	"nil-matching/internal/models"
	"nil-matching/internal/qualitative"
	"nil-matching/pkg/registry"
)

const TaskType = "score-match"

type Handler struct {
	config       *Config
	source       acquisition.Source
	scorer       *matching.Scorer
	enhancer     *qualitative.Enhancer
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewHandler wires the scorer. source may be nil when callers always send
// inline views; enhancer may be nil to disable useLlm.
func NewHandler(config *Config, source acquisition.Source, scorer *matching.Scorer, enhancer *qualitative.Enhancer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		source:       source,
		scorer:       scorer,
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
	subject, err := h.subject(ctx, input)
	if err != nil {
		return nil, err
	}
	brand, err := h.brand(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := h.scorer.Validate(subject, brand); err != nil {
		return nil, apperrors.NewValidationFailedError(err.Error())
	}

	result := h.scorer.Score(subject, brand, input.CampaignID)
	output := &Output{}

	if input.UseLLM && h.enhancer != nil {
		enhanced, err := h.enhancer.Enhance(ctx, subject, brand, result)
		result = enhanced
		if err != nil && !errors.Is(err, qualitative.ErrNotConfigured) {
			output.QualitativeError = err.Error()
		}
	}

	metrics.ObserveMatch(TaskType, result)
	h.logger.Info("match scored", map[string]interface{}{
		"athleteId": result.SubjectID,
		"brandId":   result.BrandID,
		"score":     result.TotalScore,
		"tier":      string(result.Tier),
		"method":    string(result.ScoringMethod),
		"excluded":  result.IsExcluded,
	})

	output.Match = result
	output.IsStrongMatch = !result.IsExcluded && result.Tier.IsStrongMatch()
	return output, nil
}

func (h *Handler) subject(ctx context.Context, input *Input) (models.SubjectView, error) {
	if input.Athlete != nil {
		return *input.Athlete, nil
	}
	if h.source == nil {
		return models.SubjectView{}, apperrors.NewValidationFailedError("athlete is required when no profile source is configured")
	}
	return acquisition.ResolveSubject(ctx, h.source, input.AthleteID)
}

func (h *Handler) brand(ctx context.Context, input *Input) (models.BrandView, error) {
	if input.Brand != nil {
		return *input.Brand, nil
	}
	if h.source == nil {
		return models.BrandView{}, apperrors.NewValidationFailedError("brand is required when no profile source is configured")
	}
	view, _, err := acquisition.ResolveBrand(ctx, h.source, input.BrandID, input.CampaignID)
	return view, err
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
