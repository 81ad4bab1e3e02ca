package acquisition

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nil-matching/internal/common/database"
	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/models"
)

var athleteCols = []string{
	"id", "display_name", "sport", "position", "school", "conference", "home_state",
	"is_verified", "is_accepting_deals", "preferences", "social_accounts",
}

var brandCols = []string{
	"id", "company_name", "website", "industry", "category", "description",
	"brand_values", "personality_traits", "target_audience", "preferred_sports", "preferred_conferences",
	"min_followers", "min_engagement_rate", "required_content_types", "excluded_sports",
	"competitor_brands", "is_active",
}

func newMockSource(t *testing.T) (*PostgresSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresSource(database.NewPostgresFromDB(db)), mock
}

func athleteRow(rows *sqlmock.Rows, id string) *sqlmock.Rows {
	return rows.AddRow(id, "Jordan Reyes", "football", "QB", "State University", "SEC", "TX",
		true, true,
		[]byte(`{"likedCategories":["ATHLETIC_APPAREL"],"contentTypes":["REELS"]}`),
		[]byte(`[{"platform":"INSTAGRAM","handle":"@jr","followers":90000,"engagementRate":4.5}]`))
}

// ==========================
// GetSubject
// ==========================

func TestPostgresSource_GetSubject(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(mock sqlmock.Sqlmock)
		expectError    bool
		errorCode      apperrors.ErrorCode
		validateOutput func(t *testing.T, p *models.AthleteProfile)
	}{
		{
			name: "found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM athletes WHERE id = $1")).
					WithArgs("athlete-1").
					WillReturnRows(athleteRow(sqlmock.NewRows(athleteCols), "athlete-1"))
			},
			validateOutput: func(t *testing.T, p *models.AthleteProfile) {
				assert.Equal(t, models.SportFootball, p.Sport)
				assert.Equal(t, models.Conference("SEC"), p.Conference)
				require.NotNil(t, p.Preferences)
				assert.Equal(t, []models.ContentType{models.ContentReels}, p.Preferences.ContentTypes)
				require.Len(t, p.SocialAccounts, 1)
				assert.Equal(t, 90000, p.TotalFollowers())
			},
		},
		{
			name: "no rows",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM athletes WHERE id = $1")).
					WithArgs("athlete-1").
					WillReturnError(sql.ErrNoRows)
			},
			expectError: true,
			errorCode:   apperrors.ErrCodeProfileNotFound,
		},
		{
			name: "postgres error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM athletes WHERE id = $1")).
					WithArgs("athlete-1").
					WillReturnError(&pq.Error{Code: "42P01", Message: "relation does not exist"})
			},
			expectError: true,
			errorCode:   apperrors.ErrCodeQueryExecutionFailed,
		},
		{
			name: "bad preferences document",
			setup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(athleteCols).AddRow("athlete-1", "J", "FOOTBALL", nil, nil, nil, nil,
					false, true, []byte(`{not json`), nil)
				mock.ExpectQuery(regexp.QuoteMeta("FROM athletes WHERE id = $1")).
					WithArgs("athlete-1").
					WillReturnRows(rows)
			},
			expectError: true,
			errorCode:   apperrors.ErrCodeProfileDecodeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, mock := newMockSource(t)
			tt.setup(mock)

			p, err := src.GetSubject(context.Background(), "athlete-1")
			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, tt.errorCode, apperrors.CodeOf(err))
			} else {
				require.NoError(t, err)
				tt.validateOutput(t, p)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// ==========================
// GetBrand / GetCampaign
// ==========================

func TestPostgresSource_GetBrand(t *testing.T) {
	src, mock := newMockSource(t)

	rows := sqlmock.NewRows(brandCols).AddRow(
		"brand-1", "Stride Athletics", "https://stride.example", "Apparel", "ATHLETIC_APPAREL", nil,
		"{grit,community}", "{bold}", []byte(`{"isNational":true,"ageRanges":["18-24"]}`),
		"{FOOTBALL,BASKETBALL}", "{SEC}",
		int64(10000), 3.0, "{REELS,HOLOGRAMS}", "{}",
		`{"Rival Co"}`, true,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM brands WHERE id = $1")).WithArgs("brand-1").WillReturnRows(rows)

	b, err := src.GetBrand(context.Background(), "brand-1")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryAthleticApparel, b.Category)
	assert.Equal(t, []string{"grit", "community"}, b.Values)
	assert.Equal(t, []models.Sport{models.SportFootball, models.SportBasketball}, b.PreferredSports)
	assert.Equal(t, []models.ContentType{models.ContentReels}, b.RequiredContentTypes)
	assert.Equal(t, 10000, b.MinFollowers)
	assert.Equal(t, []string{"Rival Co"}, b.CompetitorBrands)
	require.NotNil(t, b.TargetAudience)
	assert.True(t, b.TargetAudience.IsNational)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_GetCampaign(t *testing.T) {
	t.Run("with parent brand", func(t *testing.T) {
		src, mock := newMockSource(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM campaigns WHERE id = $1")).
			WithArgs("camp-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "brand_id", "campaign_name", "brief"}).
				AddRow("camp-1", "brand-1", "Fall Drop", []byte(`{"maxAthletes":5,"excludedAthletes":["athlete-9"]}`)))
		mock.ExpectQuery(regexp.QuoteMeta("FROM brands WHERE id = $1")).
			WithArgs("brand-1").
			WillReturnRows(sqlmock.NewRows(brandCols).AddRow(
				"brand-1", "Stride Athletics", nil, nil, nil, nil,
				"{}", "{}", nil, "{}", "{}", nil, nil, "{}", "{}", "{}", true))

		c, err := src.GetCampaign(context.Background(), "camp-1")
		require.NoError(t, err)
		assert.Equal(t, "Fall Drop", c.Name)
		assert.Equal(t, 5, c.MaxAthletes)
		assert.Equal(t, []string{"athlete-9"}, c.ExcludedAthletes)
		require.NotNil(t, c.Brand)
		assert.Equal(t, "Stride Athletics", c.Brand.CompanyName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing parent brand", func(t *testing.T) {
		src, mock := newMockSource(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM campaigns WHERE id = $1")).
			WithArgs("camp-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "brand_id", "campaign_name", "brief"}).
				AddRow("camp-1", "brand-gone", nil, nil))
		mock.ExpectQuery(regexp.QuoteMeta("FROM brands WHERE id = $1")).
			WithArgs("brand-gone").
			WillReturnError(sql.ErrNoRows)

		c, err := src.GetCampaign(context.Background(), "camp-1")
		require.NoError(t, err)
		assert.Nil(t, c.Brand)
		assert.Equal(t, "brand-gone", c.BrandID)
	})
}

// ==========================
// ListSubjects
// ==========================

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name         string
		query        SubjectQuery
		wantContains []string
		wantArgs     []interface{}
	}{
		{
			name:         "defaults",
			query:        SubjectQuery{},
			wantContains: []string{"FROM athletes ORDER BY id LIMIT $1 OFFSET $2"},
			wantArgs:     []interface{}{DefaultPageSize, 0},
		},
		{
			name: "all filters",
			query: SubjectQuery{
				Sport: models.SportFootball, Conference: "SEC", School: "State%",
				MinFollowers: 1000, MinEngagement: 2.5, AcceptingDeals: true, Limit: 10, Offset: 20,
			},
			wantContains: []string{
				"is_accepting_deals = TRUE",
				"sport = $1",
				"conference = $2",
				"school ILIKE $3",
				">= $4",
				">= $5",
				"LIMIT $6 OFFSET $7",
			},
			wantArgs: []interface{}{"FOOTBALL", "SEC", "State%", 1000, 2.5, 10, 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.query)
			for _, want := range tt.wantContains {
				assert.Contains(t, query, want)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestPostgresSource_ListSubjects(t *testing.T) {
	src, mock := newMockSource(t)

	rows := sqlmock.NewRows(athleteCols)
	athleteRow(rows, "athlete-1")
	athleteRow(rows, "athlete-2")
	mock.ExpectQuery(regexp.QuoteMeta("FROM athletes WHERE is_accepting_deals = TRUE AND sport = $1")).
		WithArgs("FOOTBALL", 2, 0).
		WillReturnRows(rows)

	profiles, err := src.ListSubjects(context.Background(), SubjectQuery{
		Sport: models.SportFootball, AcceptingDeals: true, Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "athlete-2", profiles[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
