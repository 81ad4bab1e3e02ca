// internal/qualitative/enhancer.go
package qualitative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"nil-matching/internal/common/logger"
	"nil-matching/internal/matching"
	"nil-matching/internal/models"
)

// Outcomes reported to a Recorder.
const (
	OutcomeBlended     = "blended"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
	OutcomeSkipped     = "skipped"
)

// Recorder receives one observation per assessment attempt.
type Recorder interface {
	ObserveAssessment(outcome string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAssessment(string, time.Duration) {}

// Enhancer blends an external assessment into rule-based results. Whenever
// the assessor is unavailable or fails, the rule result comes back unchanged.
type Enhancer struct {
	assessor Assessor
	scorer   *matching.Scorer
	weight   float64
	timeout  time.Duration
	log      logger.Logger
	recorder Recorder
	limiter  *rate.Limiter
}

type EnhancerOption func(*Enhancer)

func WithTimeout(d time.Duration) EnhancerOption {
	return func(e *Enhancer) { e.timeout = d }
}

// WithRateLimit caps provider calls at perSecond with the given burst. A
// non-positive rate leaves calls unthrottled.
func WithRateLimit(perSecond float64, burst int) EnhancerOption {
	return func(e *Enhancer) {
		if perSecond <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithRecorder(r Recorder) EnhancerOption {
	return func(e *Enhancer) {
		if r != nil {
			e.recorder = r
		}
	}
}

func NewEnhancer(assessor Assessor, scorer *matching.Scorer, weight float64, log logger.Logger, opts ...EnhancerOption) *Enhancer {
	if assessor == nil {
		assessor = NotConfigured{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	e := &Enhancer{
		assessor: assessor,
		scorer:   scorer,
		weight:   weight,
		log:      log,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enabled reports whether a real provider is wired.
func (e *Enhancer) Enabled() bool { return IsConfigured(e.assessor) }

// Enhance returns the blended result. On failure it returns the rule result
// untouched together with the error so callers can record it.
func (e *Enhancer) Enhance(ctx context.Context, subject models.SubjectView, brand models.BrandView, result models.MatchResult) (models.MatchResult, error) {
	if result.IsExcluded {
		e.recorder.ObserveAssessment(OutcomeSkipped, 0)
		return result, nil
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	var analysis *models.LLMAnalysis
	err := e.wait(callCtx)
	if err == nil {
		analysis, err = e.assessor.Assess(callCtx, subject, brand, result)
	}
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			e.recorder.ObserveAssessment(OutcomeUnavailable, elapsed)
			e.log.Debug("qualitative assessment not configured", map[string]interface{}{
				"athleteId": subject.ID,
				"brandId":   brand.ID,
			})
			return result, err
		}
		e.recorder.ObserveAssessment(OutcomeFailed, elapsed)
		e.log.Warn("qualitative assessment failed, keeping rule-based score", map[string]interface{}{
			"athleteId": subject.ID,
			"brandId":   brand.ID,
			"error":     err.Error(),
		})
		return result, err
	}

	e.recorder.ObserveAssessment(OutcomeBlended, elapsed)
	return e.scorer.Blend(result, *analysis, e.weight), nil
}

// Hook adapts Enhance for Ranker.Rank. The ranker passes its working brand,
// so the assessment sees the same requirements the rule score used. Failures
// are logged by Enhance and the rule result is kept.
func (e *Enhancer) Hook(ctx context.Context) matching.ResultHook {
	return func(brand models.BrandView, subject models.SubjectView, result models.MatchResult) models.MatchResult {
		enhanced, _ := e.Enhance(ctx, subject, brand, result)
		return enhanced
	}
}

// wait blocks until the limiter admits a provider call or ctx ends. Only
// assessors that can actually be called are throttled.
func (e *Enhancer) wait(ctx context.Context) error {
	if e.limiter == nil || !e.Enabled() {
		return nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}
