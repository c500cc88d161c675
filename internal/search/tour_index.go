// Package search keeps a full-text index of tours in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/voyagehub/travel-backend/internal/config"
	"github.com/voyagehub/travel-backend/internal/models"
)

// TourIndex is implemented by the Elasticsearch client. The service falls
// back to SQL search when no index is configured.
type TourIndex interface {
	IndexTour(ctx context.Context, tour *models.Tour) error
	DeleteTour(ctx context.Context, id uuid.UUID) error
	SearchTours(ctx context.Context, query string, limit int) ([]models.TourSearchHit, error)
	// Reindex replaces the whole index content with tours
	Reindex(ctx context.Context, tours []models.Tour) error
}

type tourDocument struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Type        models.TourType   `json:"type"`
	Status      models.TourStatus `json:"status"`
	Price       float64           `json:"price"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
}

func toDocument(t *models.Tour) tourDocument {
	return tourDocument{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Type:        t.Type,
		Status:      t.Status,
		Price:       t.Price,
		StartDate:   t.StartDate.Format("2006-01-02"),
		EndDate:     t.EndDate.Format("2006-01-02"),
	}
}

// ElasticsearchTourIndex stores tours in one index
type ElasticsearchTourIndex struct {
	client *elasticsearch.Client
	index  string
	logger *logrus.Logger
}

// NewElasticsearchTourIndex creates the client and makes sure the index exists
func NewElasticsearchTourIndex(ctx context.Context, cfg config.ElasticsearchConfig, logger *logrus.Logger) (*ElasticsearchTourIndex, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	idx := &ElasticsearchTourIndex{client: es, index: cfg.Index, logger: logger}
	if err := idx.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}
	return idx, nil
}

func (i *ElasticsearchTourIndex) ensureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":   map[string]interface{}{"type": "keyword"},
				"name": map[string]interface{}{
					"type":   "text",
					"fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}},
				},
				"description": map[string]interface{}{"type": "text"},
				"type":        map[string]interface{}{"type": "keyword"},
				"status":      map[string]interface{}{"type": "keyword"},
				"price":       map[string]interface{}{"type": "double"},
				"start_date":  map[string]interface{}{"type": "date"},
				"end_date":    map[string]interface{}{"type": "date"},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createRes, err := esapi.IndicesCreateRequest{Index: i.index, Body: bytes.NewReader(body)}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	i.logger.WithField("index", i.index).Info("Created Elasticsearch index")
	return nil
}

func (i *ElasticsearchTourIndex) IndexTour(ctx context.Context, tour *models.Tour) error {
	body, err := json.Marshal(toDocument(tour))
	if err != nil {
		return fmt.Errorf("failed to marshal tour: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: tour.ID.String(),
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to index tour: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}
	return nil
}

func (i *ElasticsearchTourIndex) DeleteTour(ctx context.Context, id uuid.UUID) error {
	res, err := esapi.DeleteRequest{Index: i.index, DocumentID: id.String(), Refresh: "wait_for"}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to delete tour: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

// Reindex clears the index and writes every tour in one bulk request
func (i *ElasticsearchTourIndex) Reindex(ctx context.Context, tours []models.Tour) error {
	clear, err := esapi.DeleteByQueryRequest{
		Index:     []string{i.index},
		Body:      strings.NewReader(`{"query":{"match_all":{}}}`),
		Refresh:   esapi.BoolPtr(true),
		Conflicts: "proceed",
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	clear.Body.Close()
	if clear.IsError() {
		return fmt.Errorf("clear index error: %s", clear.String())
	}

	if len(tours) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for idx := range tours {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": i.index, "_id": tours[idx].ID.String()}}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return fmt.Errorf("failed to encode bulk meta: %w", err)
		}
		if err := json.NewEncoder(&buf).Encode(toDocument(&tours[idx])); err != nil {
			return fmt.Errorf("failed to encode tour: %w", err)
		}
	}

	res, err := esapi.BulkRequest{Body: &buf, Refresh: "true"}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to bulk index tours: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.String())
	}

	i.logger.WithField("count", len(tours)).Info("Reindexed tours")
	return nil
}

func (i *ElasticsearchTourIndex) SearchTours(ctx context.Context, query string, limit int) ([]models.TourSearchHit, error) {
	body, err := json.Marshal(buildTourQuery(query, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, i.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Score  float64      `json:"_score"`
				Source tourDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]models.TourSearchHit, 0, len(response.Hits.Hits))
	for _, h := range response.Hits.Hits {
		hits = append(hits, models.TourSearchHit{
			ID:     h.Source.ID,
			Name:   h.Source.Name,
			Type:   h.Source.Type,
			Status: h.Source.Status,
			Price:  h.Source.Price,
			Score:  h.Score,
		})
	}
	return hits, nil
}

func buildTourQuery(query string, limit int) map[string]interface{} {
	q := map[string]interface{}{"match_all": map[string]interface{}{}}
	if strings.TrimSpace(query) != "" {
		q = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		}
	}
	return map[string]interface{}{
		"query": q,
		"size":  limit,
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"name.keyword": map[string]interface{}{"order": "asc"}},
		},
	}
}
