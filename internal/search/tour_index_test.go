package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagehub/travel-backend/internal/config"
	"github.com/voyagehub/travel-backend/internal/models"
)

// fakeCluster answers the few endpoints the index uses
func fakeCluster(t *testing.T, tourID uuid.UUID, requests *[]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		body, _ := io.ReadAll(r.Body)
		*requests = append(*requests, r.Method+" "+r.URL.Path+" "+string(body))

		switch {
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusOK)
		case strings.HasSuffix(r.URL.Path, "/_search"):
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"hits": map[string]interface{}{
					"hits": []map[string]interface{}{{
						"_score": 3.2,
						"_source": map[string]interface{}{
							"id": tourID, "name": "Gorilla Trek", "type": "WILDLIFE", "status": "UPCOMING", "price": 1200.5,
						},
					}},
				},
			})
		default:
			_, _ = w.Write([]byte(`{"result":"ok"}`))
		}
	}))
}

func TestElasticsearchTourIndex(t *testing.T) {
	tourID := uuid.New()
	var requests []string
	srv := fakeCluster(t, tourID, &requests)
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	idx, err := NewElasticsearchTourIndex(context.Background(), config.ElasticsearchConfig{
		Addresses: []string{srv.URL},
		Index:     "tours",
	}, logger)
	require.NoError(t, err)

	t.Run("Search maps hits", func(t *testing.T) {
		hits, err := idx.SearchTours(context.Background(), "gorila", 5)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, tourID, hits[0].ID)
		assert.Equal(t, models.TourTypeWildlife, hits[0].Type)
		assert.InDelta(t, 3.2, hits[0].Score, 0.001)

		last := requests[len(requests)-1]
		assert.Contains(t, last, `"fuzziness":"AUTO"`)
		assert.Contains(t, last, `"size":5`)
	})

	t.Run("Index sends the document", func(t *testing.T) {
		start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		err := idx.IndexTour(context.Background(), &models.Tour{
			ID: tourID, Name: "Gorilla Trek", Type: models.TourTypeWildlife,
			StartDate: start, EndDate: start.AddDate(0, 0, 3),
		})
		require.NoError(t, err)

		last := requests[len(requests)-1]
		assert.Contains(t, last, "/tours/_doc/"+tourID.String())
		assert.Contains(t, last, `"start_date":"2026-07-01"`)
	})

	t.Run("Reindex clears then bulk writes", func(t *testing.T) {
		before := len(requests)
		err := idx.Reindex(context.Background(), []models.Tour{{ID: tourID, Name: "Gorilla Trek"}})
		require.NoError(t, err)

		sent := requests[before:]
		require.Len(t, sent, 2)
		assert.Contains(t, sent[0], "/tours/_delete_by_query")
		assert.Contains(t, sent[1], "/_bulk")
		assert.Contains(t, sent[1], tourID.String())
	})
}

func TestBuildTourQuery(t *testing.T) {
	q := buildTourQuery("  ", 10)
	assert.Contains(t, q["query"], "match_all")

	q = buildTourQuery("beach", 10)
	assert.Contains(t, q["query"], "multi_match")
}
