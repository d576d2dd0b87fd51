// Package search maintains the application search index in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"lease-backend/internal/common/errors"
	"lease-backend/internal/common/logger"
	"lease-backend/internal/models"
)

type Index struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndex(client *elasticsearch.Client, index string, log logger.Logger) *Index {
	return &Index{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "application-search"}),
	}
}

// document is the indexed projection of an application; the JSONB payload
// stays in PostgreSQL, only searchable fields go to Elasticsearch.
type document struct {
	ID             string `json:"id"`
	ApplicantID    string `json:"applicantId"`
	ApplicantName  string `json:"applicantName,omitempty"`
	ListingID      string `json:"listingId"`
	ReadinessScore int    `json:"readinessScore"`
	Priority       string `json:"priority"`
	Status         string `json:"status"`
	CreatedAt      string `json:"createdAt"`
}

// IndexApplication writes the searchable projection of an application.
func (i *Index) IndexApplication(ctx context.Context, app *models.Application) error {
	doc := document{
		ID:             app.ID,
		ApplicantID:    app.ApplicantID,
		ApplicantName:  applicantName(app),
		ListingID:      app.ListingID,
		ReadinessScore: app.ReadinessScore,
		Priority:       app.Priority,
		Status:         app.Status,
		CreatedAt:      app.CreatedAt,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewSearchIndexFailedError(err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: app.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return errors.NewSearchIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewSearchIndexFailedError(fmt.Errorf("index response: %s", res.Status()))
	}

	i.logger.Debug("application indexed", map[string]interface{}{
		"applicationId": app.ID,
	})
	return nil
}

// Query holds the supported search filters.
type Query struct {
	Keywords  string
	ListingID string
	Status    string
	Priority  string
	MinScore  int
	From      int
	Size      int
}

// Result is one search hit plus paging metadata on the wrapper.
type Result struct {
	Hits      []map[string]interface{} `json:"hits"`
	TotalHits int                      `json:"totalHits"`
	Took      int                      `json:"took"`
}

// Search runs a filtered application search.
func (i *Index) Search(ctx context.Context, q Query) (*Result, error) {
	if q.Size == 0 {
		q.Size = 20
	}

	body, err := json.Marshal(buildSearchBody(q))
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}

	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  strings.NewReader(string(body)),
		From:  &q.From,
		Size:  &q.Size,
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewSearchTimeoutError()
		}
		return nil, errors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("search response: %s", res.Status()))
	}

	return parseSearchResponse(res)
}

func buildSearchBody(q Query) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if q.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Keywords,
				"fields": []string{"applicantName^2", "listingId"},
				"type":   "best_fields",
			},
		})
	}
	if q.ListingID != "" {
		filterClauses = append(filterClauses, termFilter("listingId", q.ListingID))
	}
	if q.Status != "" {
		filterClauses = append(filterClauses, termFilter("status", q.Status))
	}
	if q.Priority != "" {
		filterClauses = append(filterClauses, termFilter("priority", q.Priority))
	}
	if q.MinScore > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"readinessScore": map[string]interface{}{"gte": q.MinScore},
			},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}
	if len(boolQuery) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
			"sort":  []interface{}{map[string]interface{}{"createdAt": "desc"}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{map[string]interface{}{"createdAt": "desc"}},
	}
}

func termFilter(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}

func parseSearchResponse(res *esapi.Response) (*Result, error) {
	var parsed struct {
		Took int `json:"took"`
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}

	result := &Result{
		Hits:      make([]map[string]interface{}, 0, len(parsed.Hits.Hits)),
		TotalHits: parsed.Hits.Total.Value,
		Took:      parsed.Took,
	}
	for _, hit := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, hit.Source)
	}
	return result, nil
}

func applicantName(app *models.Application) string {
	personal, ok := app.ApplicationData["personalInfo"].(map[string]interface{})
	if !ok {
		return ""
	}
	name, _ := personal["name"].(string)
	return name
}
