package searchcandidates

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nil-matching/internal/acquisition"
	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/common/logger"
	"nil-matching/internal/models"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, q acquisition.CandidateQuery) (*acquisition.CandidatePage, error) {
	args := m.Called(ctx, q)
	if page, ok := args.Get(0).(*acquisition.CandidatePage); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, DefaultLimit: 25}
}

// ==========================
// Execute with a mocked searcher
// ==========================

func TestHandler_Execute(t *testing.T) {
	filters := models.MatchFilters{Sports: []models.Sport{models.SportSoccer}, MinFollowers: 5000}

	tests := []struct {
		name           string
		input          *Input
		setupMock      func(m *MockSearcher)
		wantCode       apperrors.ErrorCode
		validateOutput func(t *testing.T, out *Output)
	}{
		{
			name:  "default limit applied",
			input: &Input{Filters: filters, ExcludeIDs: []string{"ath-9"}},
			setupMock: func(m *MockSearcher) {
				m.On("Search", mock.Anything, acquisition.CandidateQuery{
					Filters: filters, ExcludeIDs: []string{"ath-9"}, Size: 25,
				}).Return(&acquisition.CandidatePage{
					Subjects:  []models.SubjectView{{ID: "ath-1"}, {ID: "ath-2"}},
					TotalHits: 40,
					Took:      3,
				}, nil)
			},
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, []string{"ath-1", "ath-2"}, out.CandidateIDs)
				assert.Equal(t, int64(40), out.TotalHits)
				assert.Len(t, out.Candidates, 2)
			},
		},
		{
			name:  "explicit page",
			input: &Input{From: 50, Limit: 10},
			setupMock: func(m *MockSearcher) {
				m.On("Search", mock.Anything, acquisition.CandidateQuery{From: 50, Size: 10}).
					Return(&acquisition.CandidatePage{Subjects: []models.SubjectView{}}, nil)
			},
			validateOutput: func(t *testing.T, out *Output) {
				assert.Empty(t, out.CandidateIDs)
				assert.NotNil(t, out.CandidateIDs)
			},
		},
		{
			name:  "search error propagates",
			input: &Input{},
			setupMock: func(m *MockSearcher) {
				m.On("Search", mock.Anything, mock.Anything).
					Return(nil, apperrors.NewIndexNotFoundError("athletes"))
			},
			wantCode: apperrors.ErrCodeIndexNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockSearcher{}
			tt.setupMock(m)
			h := NewHandler(createTestConfig(), m, logger.NewTestLogger(t))

			out, err := h.Execute(context.Background(), tt.input)
			m.AssertExpectations(t)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			tt.validateOutput(t, out)
		})
	}
}

// ==========================
// Execute against an Elasticsearch stub
// ==========================

func TestHandler_Execute_Elasticsearch(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"took":2,"hits":{"total":{"value":1},"hits":[
			{"_id":"ath-7","_source":{"displayName":"Jordan Lee","sport":"SOCCER","totalFollowers":12000}}
		]}}`))
	}))
	defer server.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	h := NewHandler(createTestConfig(), acquisition.NewCandidateSearch(client, "athletes"), logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{Filters: models.MatchFilters{MinFollowers: 10000}})
	require.NoError(t, err)

	require.Len(t, out.Candidates, 1)
	assert.Equal(t, "ath-7", out.Candidates[0].ID)
	assert.Equal(t, models.SportSoccer, out.Candidates[0].Sport)
	assert.Contains(t, gotBody, "query")
}
