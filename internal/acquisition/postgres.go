// internal/acquisition/postgres.go
package acquisition

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"nil-matching/internal/common/database"
	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/models"
)

// PostgresSource reads profiles straight from the backend database.
// Preferences and social accounts are JSONB columns holding the same
// camelCase documents the REST API serves.
type PostgresSource struct {
	db *database.PostgresClient
}

func NewPostgresSource(db *database.PostgresClient) *PostgresSource {
	return &PostgresSource{db: db}
}

const athleteColumns = `id, display_name, sport, position, school, conference, home_state,
	is_verified, is_accepting_deals, preferences, social_accounts`

const selectAthleteByID = `SELECT ` + athleteColumns + ` FROM athletes WHERE id = $1`

const selectBrandByID = `SELECT id, company_name, website, industry, category, description,
	brand_values, personality_traits, target_audience, preferred_sports, preferred_conferences,
	min_followers, min_engagement_rate, required_content_types, excluded_sports,
	competitor_brands, is_active
	FROM brands WHERE id = $1`

const selectCampaignByID = `SELECT id, brand_id, campaign_name, brief FROM campaigns WHERE id = $1`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *PostgresSource) GetSubject(ctx context.Context, id string) (*models.AthleteProfile, error) {
	p, err := scanAthlete(s.db.QueryRow(ctx, selectAthleteByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(KindAthlete, id)
	}
	if err != nil {
		return nil, queryError(KindAthlete, "select athlete", err)
	}
	return p, nil
}

func (s *PostgresSource) GetBrand(ctx context.Context, id string) (*models.BrandProfile, error) {
	var b models.BrandProfile
	var website, industry, category, desc sql.NullString
	var values, traits, sports, confs []string
	var contentTypes, excludedSports, competing []string
	var target []byte
	var minFollowers sql.NullInt64
	var minEngagement sql.NullFloat64

	err := s.db.QueryRow(ctx, selectBrandByID, id).Scan(
		&b.ID, &b.CompanyName, &website, &industry, &category, &desc,
		pq.Array(&values), pq.Array(&traits), &target, pq.Array(&sports), pq.Array(&confs),
		&minFollowers, &minEngagement, pq.Array(&contentTypes), pq.Array(&excludedSports),
		pq.Array(&competing), &b.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(KindBrand, id)
	}
	if err != nil {
		return nil, queryError(KindBrand, "select brand", err)
	}

	b.Website = website.String
	b.Industry = industry.String
	b.Description = desc.String
	if category.Valid && category.String != "" {
		b.Category = models.ParseCategory(category.String)
	}
	b.Values = values
	b.PersonalityTraits = traits
	b.CompetitorBrands = competing
	b.MinFollowers = int(minFollowers.Int64)
	b.MinEngagementRate = minEngagement.Float64
	for _, raw := range sports {
		b.PreferredSports = append(b.PreferredSports, models.ParseSport(raw))
	}
	for _, raw := range excludedSports {
		b.ExcludedSports = append(b.ExcludedSports, models.ParseSport(raw))
	}
	for _, raw := range confs {
		b.PreferredConferences = append(b.PreferredConferences, models.ParseConference(raw))
	}
	b.RequiredContentTypes = knownContentTypes(contentTypes)

	if len(target) > 0 {
		var t models.BrandTarget
		if err := json.Unmarshal(target, &t); err != nil {
			return nil, apperrors.NewProfileDecodeFailedError(KindBrand, err)
		}
		b.TargetAudience = &t
	}
	return &b, nil
}

// GetCampaign loads the brief and its parent brand. A missing parent brand
// leaves Brand nil.
func (s *PostgresSource) GetCampaign(ctx context.Context, id string) (*models.CampaignBrief, error) {
	var (
		campaignID, brandID string
		name                sql.NullString
		brief               []byte
	)
	err := s.db.QueryRow(ctx, selectCampaignByID, id).Scan(&campaignID, &brandID, &name, &brief)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(KindCampaign, id)
	}
	if err != nil {
		return nil, queryError(KindCampaign, "select campaign", err)
	}

	var c models.CampaignBrief
	if len(brief) > 0 {
		if err := json.Unmarshal(brief, &c); err != nil {
			return nil, apperrors.NewProfileDecodeFailedError(KindCampaign, err)
		}
	}
	c.ID = campaignID
	c.BrandID = brandID
	if name.Valid {
		c.Name = name.String
	}

	brand, err := s.GetBrand(ctx, brandID)
	switch {
	case err == nil:
		c.Brand = brand
	case IsNotFound(err):
	default:
		return nil, err
	}
	return &c, nil
}

func (s *PostgresSource) ListSubjects(ctx context.Context, q SubjectQuery) ([]models.AthleteProfile, error) {
	query, args := buildListQuery(q)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, queryError(KindAthlete, "list athletes", err)
	}
	defer rows.Close()

	var out []models.AthleteProfile
	for rows.Next() {
		p, err := scanAthlete(rows)
		if err != nil {
			return nil, queryError(KindAthlete, "scan athlete", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(KindAthlete, "list athletes", err)
	}
	return out, nil
}

// Follower and engagement filters aggregate over the social_accounts JSONB
// array so pagination stays server-side.
const (
	followersExpr = `(SELECT COALESCE(SUM((a->>'followers')::bigint), 0)
		FROM jsonb_array_elements(COALESCE(social_accounts, '[]'::jsonb)) a)`
	engagementExpr = `(SELECT COALESCE(AVG((a->>'engagementRate')::numeric)
		FILTER (WHERE (a->>'engagementRate')::numeric > 0), 0)
		FROM jsonb_array_elements(COALESCE(social_accounts, '[]'::jsonb)) a)`
)

func buildListQuery(q SubjectQuery) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if q.AcceptingDeals {
		where = append(where, "is_accepting_deals = TRUE")
	}
	if q.Sport != "" {
		add("sport = $%d", string(q.Sport))
	}
	if q.Conference != "" {
		add("conference = $%d", string(q.Conference))
	}
	if q.School != "" {
		add("school ILIKE $%d", q.School)
	}
	if q.MinFollowers > 0 {
		add(followersExpr+" >= $%d", q.MinFollowers)
	}
	if q.MinEngagement > 0 {
		add(engagementExpr+" >= $%d", q.MinEngagement)
	}

	var b strings.Builder
	b.WriteString("SELECT " + athleteColumns + " FROM athletes")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	args = append(args, limit, q.Offset)
	fmt.Fprintf(&b, " ORDER BY id LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return b.String(), args
}

func scanAthlete(row rowScanner) (*models.AthleteProfile, error) {
	var p models.AthleteProfile
	var sport string
	var position, school, conference, state sql.NullString
	var preferences, accounts []byte
	if err := row.Scan(&p.ID, &p.DisplayName, &sport, &position, &school, &conference, &state,
		&p.IsVerified, &p.IsAcceptingDeals, &preferences, &accounts); err != nil {
		return nil, err
	}

	p.Sport = models.ParseSport(sport)
	p.Position = position.String
	p.School = school.String
	p.HomeState = state.String
	if conference.Valid && conference.String != "" {
		p.Conference = models.ParseConference(conference.String)
	}

	if len(preferences) > 0 {
		var prefs models.Preferences
		if err := json.Unmarshal(preferences, &prefs); err != nil {
			return nil, apperrors.NewProfileDecodeFailedError(KindAthlete, err)
		}
		p.Preferences = &prefs
	}
	if len(accounts) > 0 {
		if err := json.Unmarshal(accounts, &p.SocialAccounts); err != nil {
			return nil, apperrors.NewProfileDecodeFailedError(KindAthlete, err)
		}
	}
	return &p, nil
}

func queryError(kind, query string, err error) error {
	if _, ok := apperrors.AsStandard(err); ok {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return apperrors.NewQueryExecutionFailedError(query, err).WithMetadata("kind", kind)
	}
	return apperrors.NewProfileFetchFailedError(kind, err)
}

var _ Source = (*PostgresSource)(nil)
