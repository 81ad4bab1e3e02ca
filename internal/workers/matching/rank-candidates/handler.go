// internal/workers/matching/rank-candidates/handler.go
package rankcandidates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"nil-matching/internal/acquisition"
	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/common/logger"
	"nil-matching/internal/common/metrics"
	"nil-matching/internal/common/observability"
	"nil-matching/internal/matching"
	"nil-matching/internal/models"
	"nil-matching/internal/qualitative"
	"nil-matching/pkg/registry"
)

const TaskType = "rank-candidates"

// Searcher pre-selects candidates from the search index.
type Searcher interface {
	SearchAll(ctx context.Context, q acquisition.CandidateQuery, max int) ([]models.SubjectView, error)
}

// Deps are the collaborators; any of Source, Search, Enhancer and Obs may be nil.
type Deps struct {
	Source   acquisition.Source
	Search   Searcher
	Ranker   *matching.Ranker
	Enhancer *qualitative.Enhancer
	Obs      *observability.Observability
}

type Handler struct {
	config       *Config
	deps         Deps
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, deps Deps, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		deps:         deps,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
		now:          time.Now,
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
	started := h.now()

	opts := input.Options()
	if err := opts.Validate(); err != nil {
		return nil, apperrors.NewValidationFailedError(err.Error())
	}

	brand, campaign, err := h.brand(ctx, input)
	if err != nil {
		return nil, err
	}
	if brand.ID == "" {
		return nil, apperrors.NewValidationFailedError(matching.ErrMissingBrandID.Error())
	}

	opts = opts.WithCampaign(campaign)
	if campaign != nil && input.Limit == 0 {
		opts.Limit = campaign.AthleteCap()
	}

	candidates, origin, err := h.candidates(ctx, input, opts)
	if err != nil {
		return nil, err
	}

	var hooks []matching.ResultHook
	if h.wantsQualitative(input) {
		hooks = append(hooks, h.deps.Enhancer.Hook(ctx))
	}

	result := h.deps.Ranker.Rank(brand, candidates, opts, hooks...)
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewRankingFailedError(err)
	}

	method := models.MethodRuleBased
	for _, m := range result.Matches {
		metrics.ObserveMatch(TaskType, m)
		if m.ScoringMethod == models.MethodHybrid {
			method = models.MethodHybrid
		}
	}
	for _, m := range result.Excluded {
		metrics.ObserveMatch(TaskType, m)
	}
	h.deps.Obs.RecordRanking(ctx, string(method), result.TotalCandidates, len(result.Matches))

	elapsed := h.now().Sub(started)
	h.logger.Info("candidates ranked", map[string]interface{}{
		"brandId":         brand.ID,
		"campaignId":      opts.CampaignID,
		"candidateSource": origin,
		"totalCandidates": result.TotalCandidates,
		"totalMatches":    len(result.Matches),
		"avgScore":        result.AvgScore,
		"elapsedMs":       elapsed.Milliseconds(),
	})

	return &Output{
		BulkMatchResponse: models.BulkMatchResponse{
			CalculationID:     uuid.NewString(),
			BrandID:           brand.ID,
			CampaignID:        opts.CampaignID,
			TotalCandidates:   result.TotalCandidates,
			TotalMatches:      len(result.Matches),
			Matches:           result.Matches,
			Excluded:          result.Excluded,
			AvgScore:          result.AvgScore,
			ScoreDistribution: result.TierDistribution,
			FiltersApplied:    opts.Filters.Applied(),
			ScoringMethod:     method,
			GeneratedAt:       h.now().UTC(),
			CalculationTimeMs: elapsed.Milliseconds(),
		},
		CandidateSource: origin,
	}, nil
}

func (h *Handler) brand(ctx context.Context, input *Input) (models.BrandView, *models.CampaignBrief, error) {
	if input.Brand != nil {
		return *input.Brand, nil, nil
	}
	if h.deps.Source == nil {
		return models.BrandView{}, nil, apperrors.NewValidationFailedError("brand is required when no profile source is configured")
	}
	return acquisition.ResolveBrand(ctx, h.deps.Source, input.BrandID, input.CampaignID)
}

// candidates prefers an inline set, then the search index, then a listing
// from the profile source.
func (h *Handler) candidates(ctx context.Context, input *Input, opts models.RankOptions) ([]models.SubjectView, string, error) {
	if len(input.Candidates) > 0 {
		return input.Candidates, CandidatesInline, nil
	}

	if h.deps.Search != nil {
		views, err := h.deps.Search.SearchAll(ctx, acquisition.CandidateQuery{
			Filters:    opts.Filters,
			ExcludeIDs: opts.ExcludedSubjects,
		}, h.config.MaxCandidates)
		if err != nil {
			return nil, "", err
		}
		return views, CandidatesSearch, nil
	}

	if h.deps.Source != nil {
		profiles, err := acquisition.ListAll(ctx, h.deps.Source,
			acquisition.QueryFromFilters(opts.Filters), h.config.PageSize, h.config.MaxCandidates)
		if err != nil {
			return nil, "", err
		}
		return acquisition.SubjectViews(profiles), CandidatesSource, nil
	}

	return nil, "", apperrors.NewValidationFailedError("candidates are required when no search index or profile source is configured")
}

// wantsQualitative honours an explicit rule_based scoring method over useLlm.
func (h *Handler) wantsQualitative(input *Input) bool {
	if h.deps.Enhancer == nil || !h.deps.Enhancer.Enabled() {
		return false
	}
	switch input.ScoringMethod {
	case models.MethodRuleBased:
		return false
	case models.MethodHybrid, models.MethodLLMEnhanced:
		return true
	}
	return input.UseLLM
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
