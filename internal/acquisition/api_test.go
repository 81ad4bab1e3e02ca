package acquisition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nil-matching/internal/common/errors"
	commonhttp "nil-matching/internal/common/http"
	"nil-matching/internal/models"
)

const athleteJSON = `{
	"id": "athlete-1",
	"displayName": "Jordan Reyes",
	"sport": "football",
	"school": "State University",
	"conference": "SEC",
	"isVerified": true,
	"preferences": {
		"likedCategories": ["ATHLETIC_APPAREL", "CRYPTO_SCAMS"],
		"contentTypes": ["reels", "hologram"],
		"excludedBrands": ["Rival Co"]
	},
	"socialAccounts": [
		{
			"id": "acc-1",
			"platform": "INSTAGRAM",
			"handle": "@jreyes",
			"followers": 90000,
			"engagementRate": 4.5,
			"isVerified": true,
			"latestSnapshot": {
				"followers": 90000,
				"engagementRate": 4.5,
				"audienceAgeDistribution": {"18-24": 55},
				"audienceTopLocations": ["TX", "CA"]
			}
		},
		{
			"id": "acc-2",
			"platform": "MYSPACE",
			"handle": "jreyes",
			"followers": 30000,
			"engagementRate": 3.9
		}
	]
}`

func newTestAPISource(t *testing.T, handler http.HandlerFunc) *APISource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := commonhttp.NewClient(2*time.Second, commonhttp.WithRetries(1), commonhttp.WithBaseDelay(time.Millisecond))
	return NewAPISource(server.URL+"/", client, "secret-token")
}

// ==========================
// GetSubject
// ==========================

func TestAPISource_GetSubject(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		expectError    bool
		errorCode      apperrors.ErrorCode
		validateOutput func(t *testing.T, p *models.AthleteProfile)
	}{
		{
			name:   "decodes profile",
			status: http.StatusOK,
			body:   athleteJSON,
			validateOutput: func(t *testing.T, p *models.AthleteProfile) {
				assert.Equal(t, "athlete-1", p.ID)
				assert.Equal(t, models.SportFootball, p.Sport)
				assert.True(t, p.IsAcceptingDeals, "missing flag means accepting")
				require.NotNil(t, p.Preferences)
				assert.Equal(t, []models.BrandCategory{models.CategoryAthleticApparel}, p.Preferences.LikedCategories)
				assert.Equal(t, []models.ContentType{models.ContentReels}, p.Preferences.ContentTypes)
				require.Len(t, p.SocialAccounts, 2)
				assert.Equal(t, models.PlatformOther, p.SocialAccounts[1].Platform)
				require.NotNil(t, p.SocialAccounts[0].LatestSnapshot)
				assert.Equal(t, []models.AudienceLocation{{Name: "TX"}, {Name: "CA"}},
					p.SocialAccounts[0].LatestSnapshot.TopLocations)
				assert.Equal(t, 120000, p.TotalFollowers())
			},
		},
		{
			name:        "not found",
			status:      http.StatusNotFound,
			body:        `{"error":"missing"}`,
			expectError: true,
			errorCode:   apperrors.ErrCodeProfileNotFound,
		},
		{
			name:        "server error after retries",
			status:      http.StatusBadGateway,
			body:        `upstream`,
			expectError: true,
			errorCode:   apperrors.ErrCodeProfileFetchFailed,
		},
		{
			name:        "malformed body",
			status:      http.StatusOK,
			body:        `{"id": 12`,
			expectError: true,
			errorCode:   apperrors.ErrCodeProfileDecodeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestAPISource(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/athletes/athlete-1", r.URL.Path)
				assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			p, err := src.GetSubject(context.Background(), "athlete-1")
			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, tt.errorCode, apperrors.CodeOf(err))
				if tt.errorCode == apperrors.ErrCodeProfileNotFound {
					assert.True(t, IsNotFound(err))
				}
				return
			}
			require.NoError(t, err)
			tt.validateOutput(t, p)
		})
	}
}

// ==========================
// ListSubjects
// ==========================

func TestAPISource_ListSubjects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		query SubjectQuery
		want  []string
	}{
		{
			name:  "plain array",
			body:  `[{"id":"a"},{"id":"b"}]`,
			query: SubjectQuery{AcceptingDeals: true},
			want:  []string{"a", "b"},
		},
		{
			name:  "paginated content",
			body:  `{"content":[{"id":"c"}],"totalElements":1}`,
			query: SubjectQuery{Sport: models.SportFootball, MinFollowers: 5000, Limit: 10},
			want:  []string{"c"},
		},
		{
			name: "null body",
			body: `null`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestAPISource(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/athletes", r.URL.Path)
				q := r.URL.Query()
				if tt.query.Limit > 0 {
					assert.Equal(t, "10", q.Get("limit"))
				} else {
					assert.Equal(t, "50", q.Get("limit"))
				}
				if tt.query.Sport != "" {
					assert.Equal(t, "FOOTBALL", q.Get("sport"))
					assert.Equal(t, "5000", q.Get("minFollowers"))
				} else {
					assert.Empty(t, q.Get("sport"))
				}
				_, _ = w.Write([]byte(tt.body))
			})

			profiles, err := src.ListSubjects(context.Background(), tt.query)
			require.NoError(t, err)

			var ids []string
			for _, p := range profiles {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

// ==========================
// GetBrand / GetCampaign
// ==========================

func TestAPISource_GetBrand(t *testing.T) {
	src := newTestAPISource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/intake/brand/brand-9", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": "brand-9",
			"company": "Stride Athletics",
			"industry": "athletic apparel",
			"targetAudience": "college students nationwide",
			"status": "APPROVED"
		}`))
	})

	b, err := src.GetBrand(context.Background(), "brand-9")
	require.NoError(t, err)
	assert.Equal(t, "Stride Athletics", b.CompanyName)
	assert.Equal(t, models.CategoryAthleticApparel, b.Category)
	assert.True(t, b.IsActive)
	require.NotNil(t, b.TargetAudience)
	assert.True(t, b.TargetAudience.IsNational)
}

func TestAPISource_GetBrand_PendingUnknownIndustry(t *testing.T) {
	src := newTestAPISource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"brand-2","industry":"space tourism","status":"PENDING"}`))
	})

	b, err := src.GetBrand(context.Background(), "brand-2")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", b.CompanyName)
	assert.Empty(t, b.Category)
	assert.False(t, b.IsActive)
	assert.Nil(t, b.TargetAudience)
}

func TestAPISource_GetCampaign(t *testing.T) {
	src := newTestAPISource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/campaigns/camp-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"brandId":"brand-1","campaignName":"Fall Drop","excludedSchools":["Rival U"]}`))
	})

	c, err := src.GetCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, "camp-1", c.ID)
	assert.Equal(t, "Fall Drop", c.Name)
	assert.Equal(t, []string{"Rival U"}, c.ExcludedSchools)
}
