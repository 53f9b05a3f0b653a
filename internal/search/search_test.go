package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopdb/internal/models"
)

type fakeCluster struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
	hits     []uuid.UUID
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies[r.Method+" "+r.URL.Path] = string(body)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		_, _ = w.Write([]byte(`{"version":{"number":"9.0.0"}}`))
	case strings.HasSuffix(r.URL.Path, "/_search"):
		hits := make([]map[string]any, 0, len(f.hits))
		for _, id := range f.hits {
			hits = append(hits, map[string]any{"_id": id.String(), "_score": 1.0})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{"total": map[string]any{"value": 42}, "hits": hits},
		})
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	default:
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}
}

func newFake(t *testing.T) (*fakeCluster, *Elastic) {
	t.Helper()
	f := &fakeCluster{bodies: map[string]string{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	e, err := NewElastic(context.Background(), srv.URL, "", "", "products")
	require.NoError(t, err)
	return f, e
}

func TestElastic_IndexSendsDocument(t *testing.T) {
	t.Parallel()
	f, e := newFake(t)

	desc := "warm light"
	p := &models.Product{
		ID: uuid.New(), Name: "Lamp", SKU: "L-1", Description: &desc,
		Price: decimal.RequireFromString("19.90"), Status: models.ProductActive,
		Tags: models.StringList{"home"},
	}
	require.NoError(t, e.Index(context.Background(), p))

	key := "PUT /products/_doc/" + p.ID.String()
	require.Contains(t, f.bodies, key)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.bodies[key]), &doc))
	assert.Equal(t, "Lamp", doc["name"])
	assert.Equal(t, "warm light", doc["description"])
	assert.InDelta(t, 19.9, doc["price"], 0.001)
}

func TestElastic_DeleteIgnoresMissingDocument(t *testing.T) {
	t.Parallel()
	_, e := newFake(t)

	assert.NoError(t, e.Delete(context.Background(), uuid.New()))
}

func TestElastic_SearchParsesHits(t *testing.T) {
	t.Parallel()
	f, e := newFake(t)
	f.hits = []uuid.UUID{uuid.New(), uuid.New()}

	total, ids, err := e.Search(context.Background(), "lamp", 10, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 42, total)
	assert.Equal(t, f.hits, ids)

	var body string
	for k, v := range f.bodies {
		if strings.HasSuffix(k, "/products/_search") {
			body = v
		}
	}
	assert.Contains(t, body, `"multi_match"`)
	assert.Contains(t, body, `"from":10`)
}

func TestParseHits(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	total, ids, err := parseHits([]byte(`{"hits":{"total":{"value":3},"hits":[{"_id":"` + id.String() + `"},{"_id":"not-a-uuid"}]}}`))
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []uuid.UUID{id}, ids)

	_, _, err = parseHits([]byte(`{broken`))
	assert.Error(t, err)
}

func TestNoop_SearchIsDisabled(t *testing.T) {
	t.Parallel()

	_, _, err := Noop{}.Search(context.Background(), "x", 0, 10)
	assert.ErrorIs(t, err, ErrDisabled)
}
