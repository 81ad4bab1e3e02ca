// internal/workers/matching/search-candidates/handler.go
package searchcandidates

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"nil-matching/internal/acquisition"
	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/common/logger"
	"nil-matching/pkg/registry"
)

const TaskType = "search-candidates"

// Searcher is the part of acquisition.CandidateSearch this worker needs.
type Searcher interface {
	Search(ctx context.Context, q acquisition.CandidateQuery) (*acquisition.CandidatePage, error)
}

type Handler struct {
	config       *Config
	search       Searcher
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, search Searcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		search:       search,
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
	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultLimit
	}

	page, err := h.search.Search(ctx, acquisition.CandidateQuery{
		Filters:    input.Filters,
		ExcludeIDs: input.ExcludeIDs,
		From:       input.From,
		Size:       limit,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(page.Subjects))
	for _, s := range page.Subjects {
		ids = append(ids, s.ID)
	}

	h.logger.Info("candidates found", map[string]interface{}{
		"returned":  len(page.Subjects),
		"totalHits": page.TotalHits,
		"tookMs":    page.Took,
	})

	return &Output{
		Candidates:   page.Subjects,
		CandidateIDs: ids,
		TotalHits:    page.TotalHits,
		Took:         page.Took,
	}, nil
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
