// internal/acquisition/source.go
package acquisition

import (
	"context"
	"errors"

	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/models"
)

// ErrNotFound marks a profile the system of record does not have. Every
// source wraps it in a PROFILE_NOT_FOUND StandardError.
var ErrNotFound = errors.New("profile not found")

// Profile kinds used in error metadata and cache keys.
const (
	KindAthlete  = "athlete"
	KindBrand    = "brand"
	KindCampaign = "campaign"
)

// Source loads profiles from a system of record.
type Source interface {
	GetSubject(ctx context.Context, id string) (*models.AthleteProfile, error)
	GetBrand(ctx context.Context, id string) (*models.BrandProfile, error)
	GetCampaign(ctx context.Context, id string) (*models.CampaignBrief, error)
	ListSubjects(ctx context.Context, q SubjectQuery) ([]models.AthleteProfile, error)
}

// SubjectQuery narrows a candidate listing. Zero values mean "any".
type SubjectQuery struct {
	Sport          models.Sport
	Conference     models.Conference
	School         string
	MinFollowers   int
	MinEngagement  float64
	AcceptingDeals bool
	Limit          int
	Offset         int
}

const DefaultPageSize = 50

// QueryFromFilters pushes what the backend can filter on server-side. Only a
// single sport or conference can be expressed; wider sets are left to the
// ranker's pre-filters.
func QueryFromFilters(f models.MatchFilters) SubjectQuery {
	q := SubjectQuery{
		MinFollowers:   f.MinFollowers,
		MinEngagement:  f.MinEngagementRate,
		AcceptingDeals: true,
	}
	if len(f.Sports) == 1 {
		q.Sport = f.Sports[0]
	}
	if len(f.Conferences) == 1 {
		q.Conference = f.Conferences[0]
	}
	return q
}

// ListAll pages through ListSubjects until a short page or max profiles.
// max <= 0 means no cap. A source that overfills a page is truncated to max.
func ListAll(ctx context.Context, src Source, q SubjectQuery, pageSize, max int) ([]models.AthleteProfile, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var out []models.AthleteProfile
	q.Offset = 0
	for {
		q.Limit = pageSize
		if max > 0 && max-len(out) < pageSize {
			q.Limit = max - len(out)
		}

		page, err := src.ListSubjects(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)

		if max > 0 && len(out) >= max {
			return out[:max], nil
		}
		if len(page) < q.Limit {
			return out, nil
		}
		q.Offset += len(page)
	}
}

// SubjectViews projects profiles for the ranker.
func SubjectViews(profiles []models.AthleteProfile) []models.SubjectView {
	views := make([]models.SubjectView, 0, len(profiles))
	for i := range profiles {
		views = append(views, models.SubjectFromProfile(&profiles[i]))
	}
	return views
}

// IsNotFound reports whether err means the profile does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || apperrors.CodeOf(err) == apperrors.ErrCodeProfileNotFound
}

func notFound(kind, id string) error {
	return apperrors.NewProfileNotFoundError(kind, id, ErrNotFound)
}
