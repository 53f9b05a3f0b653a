// Package search keeps an Elasticsearch index of products for full-text lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/Skotchmaster/shopdb/internal/models"
)

// ErrDisabled is returned by indexes that cannot serve queries; callers fall
// back to database search.
var ErrDisabled = errors.New("search: disabled")

type ProductIndex interface {
	Index(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Search returns the total hit count and the ids of the requested window, best match first.
	Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error)
}

type document struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	SKU         string   `json:"sku"`
	Tags        []string `json:"tags,omitempty"`
	Status      string   `json:"status"`
	Price       float64  `json:"price"`
}

func toDocument(p *models.Product) document {
	d := document{
		Name:   p.Name,
		SKU:    p.SKU,
		Tags:   p.Tags,
		Status: string(p.Status),
		Price:  p.Price.InexactFloat64(),
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	return d
}

type Elastic struct {
	client *elasticsearch.Client
	index  string
}

// NewElastic connects to the cluster at url and checks it answers before
// returning.
func NewElastic(ctx context.Context, url, user, password, index string) (*Elastic, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("search: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("search: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res)
	}
	return &Elastic{client: client, index: index}, nil
}

func (e *Elastic) Index(ctx context.Context, p *models.Product) error {
	body, err := json.Marshal(toDocument(p))
	if err != nil {
		return fmt.Errorf("search: encode document: %w", err)
	}

	res, err := e.client.Index(e.index, bytes.NewReader(body),
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("search: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

func (e *Elastic) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := e.client.Delete(e.index, id.String(), e.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res)
	}
	return nil
}

func (e *Elastic) Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "description", "sku", "tags"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"status": string(models.ProductActive)},
				},
			},
		},
		"from":    from,
		"size":    size,
		"_source": false,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("query", res)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("search: read response: %w", err)
	}
	return parseHits(raw)
}

func parseHits(raw []byte) (int64, []uuid.UUID, error) {
	if !gjson.ValidBytes(raw) {
		return 0, nil, errors.New("search: malformed response")
	}
	total := gjson.GetBytes(raw, "hits.total.value").Int()

	var ids []uuid.UUID
	for _, h := range gjson.GetBytes(raw, "hits.hits.#._id").Array() {
		id, err := uuid.Parse(h.String())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return total, ids, nil
}

func responseError(op string, res *esapi.Response) error {
	b, _ := io.ReadAll(res.Body)
	reason := gjson.GetBytes(b, "error.reason").String()
	if reason == "" {
		reason = strings.TrimSpace(string(b))
	}
	return fmt.Errorf("search: %s: %s: %s", op, res.Status(), reason)
}

type Noop struct{}

func (Noop) Index(context.Context, *models.Product) error { return nil }
func (Noop) Delete(context.Context, uuid.UUID) error      { return nil }
func (Noop) Search(context.Context, string, int, int) (int64, []uuid.UUID, error) {
	return 0, nil, ErrDisabled
}
