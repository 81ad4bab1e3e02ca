// internal/acquisition/search.go
package acquisition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "nil-matching/internal/common/errors"
	"nil-matching/internal/models"
)

// CandidateQuery selects candidates from the athlete index.
type CandidateQuery struct {
	Filters    models.MatchFilters
	ExcludeIDs []string
	From       int
	Size       int
}

// CandidatePage is one page of search hits.
type CandidatePage struct {
	Subjects  []models.SubjectView `json:"subjects"`
	TotalHits int64                `json:"totalHits"`
	Took      int                  `json:"took"`
}

// CandidateSearch runs candidate pre-selection against Elasticsearch. Documents
// are SubjectView projections keyed by athlete id.
type CandidateSearch struct {
	client *elasticsearch.Client
	index  string
}

func NewCandidateSearch(client *elasticsearch.Client, index string) *CandidateSearch {
	if index == "" {
		index = "athletes"
	}
	return &CandidateSearch{client: client, index: index}
}

func (s *CandidateSearch) Index() string { return s.index }

// BuildSearchBody renders the bool query for q. Every filter is a non-scoring
// clause; hits come back by follower count, highest first.
func BuildSearchBody(q CandidateQuery) map[string]interface{} {
	filters := []interface{}{}
	f := q.Filters

	if len(f.Sports) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"sport": f.Sports},
		})
	}
	if len(f.Conferences) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"conference": f.Conferences},
		})
	}

	followers := map[string]interface{}{}
	if f.MinFollowers > 0 {
		followers["gte"] = f.MinFollowers
	}
	if f.MaxFollowers > 0 {
		followers["lte"] = f.MaxFollowers
	}
	if len(followers) > 0 {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"totalFollowers": followers},
		})
	}
	if f.MinEngagementRate > 0 {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{
				"avgEngagementRate": map[string]interface{}{"gte": f.MinEngagementRate},
			},
		})
	}

	boolQuery := map[string]interface{}{"filter": filters}
	if len(q.ExcludeIDs) > 0 {
		boolQuery["must_not"] = []interface{}{
			map[string]interface{}{"ids": map[string]interface{}{"values": q.ExcludeIDs}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"totalFollowers": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"_id": map[string]interface{}{"order": "asc"}},
		},
	}
}

type searchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string             `json:"_id"`
			Source models.SubjectView `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *CandidateSearch) Search(ctx context.Context, q CandidateQuery) (*CandidatePage, error) {
	size := q.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	from := q.From

	body, err := json.Marshal(BuildSearchBody(q))
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(s.index, err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, s.transportError(ctx, err)
	}
	defer res.Body.Close()

	if err := s.statusError(res); err != nil {
		return nil, err
	}

	var decoded searchResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(s.index, fmt.Errorf("decode response: %w", err))
	}

	page := &CandidatePage{
		TotalHits: decoded.Hits.Total.Value,
		Took:      decoded.Took,
		Subjects:  make([]models.SubjectView, 0, len(decoded.Hits.Hits)),
	}
	for _, hit := range decoded.Hits.Hits {
		view := hit.Source
		if view.ID == "" {
			view.ID = hit.ID
		}
		page.Subjects = append(page.Subjects, view)
	}
	return page, nil
}

// SearchAll pages through hits until max subjects or the hits run out.
func (s *CandidateSearch) SearchAll(ctx context.Context, q CandidateQuery, max int) ([]models.SubjectView, error) {
	if q.Size <= 0 {
		q.Size = DefaultPageSize
	}
	var out []models.SubjectView
	q.From = 0
	for {
		if max > 0 && max-len(out) < q.Size {
			q.Size = max - len(out)
		}
		page, err := s.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Subjects...)
		if len(page.Subjects) < q.Size || int64(len(out)) >= page.TotalHits || (max > 0 && len(out) >= max) {
			return out, nil
		}
		q.From += len(page.Subjects)
	}
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// IndexSubjects upserts views into the index with one bulk request and
// returns the number of documents accepted.
func (s *CandidateSearch) IndexSubjects(ctx context.Context, views []models.SubjectView) (int, error) {
	if len(views) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, v := range views {
		meta := map[string]interface{}{"index": map[string]interface{}{"_id": v.ID}}
		if err := enc.Encode(meta); err != nil {
			return 0, apperrors.NewSearchQueryFailedError(s.index, err)
		}
		if err := enc.Encode(v); err != nil {
			return 0, apperrors.NewSearchQueryFailedError(s.index, err)
		}
	}

	req := esapi.BulkRequest{
		Index:   s.index,
		Body:    &buf,
		Refresh: "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return 0, s.transportError(ctx, err)
	}
	defer res.Body.Close()

	if err := s.statusError(res); err != nil {
		return 0, err
	}

	var decoded bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return 0, apperrors.NewSearchQueryFailedError(s.index, fmt.Errorf("decode bulk response: %w", err))
	}

	accepted := 0
	var failures []string
	for _, item := range decoded.Items {
		for _, result := range item {
			if result.Error != nil {
				failures = append(failures, fmt.Sprintf("%s: %s", result.ID, result.Error.Reason))
				continue
			}
			accepted++
		}
	}
	if len(failures) > 0 {
		return accepted, apperrors.NewSearchQueryFailedError(s.index,
			fmt.Errorf("bulk index rejected %d documents: %s", len(failures), strings.Join(failures, "; ")))
	}
	return accepted, nil
}

func (s *CandidateSearch) statusError(res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	if res.StatusCode == 404 {
		return apperrors.NewIndexNotFoundError(s.index)
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return apperrors.NewSearchQueryFailedError(s.index,
		fmt.Errorf("%s: %s", res.Status(), strings.TrimSpace(string(msg))))
}

func (s *CandidateSearch) transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewSearchTimeoutError(s.index, err)
	}
	return apperrors.NewSearchQueryFailedError(s.index, err)
}
