package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/salonsys/salon-admin/internal/models"
)

// Index maintains and queries the client search index. A nil *Index is
// valid: mutations become no-ops and Search reports it is unavailable via
// Enabled, letting handlers fall back to the store.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewIndex(es *elasticsearch.Client, name string) *Index {
	return &Index{ES: es, Name: name}
}

func (ix *Index) Enabled() bool {
	return ix != nil && ix.ES != nil
}

// IndexClient upserts one client document.
func (ix *Index) IndexClient(ctx context.Context, c *models.Client) error {
	if !ix.Enabled() {
		return nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("search: encode client: %w", err)
	}

	res, err := ix.ES.Index(
		ix.Name,
		&buf,
		ix.ES.Index.WithContext(ctx),
		ix.ES.Index.WithDocumentID(strconv.FormatUint(uint64(c.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("search: index client: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index client: %s", res.Status())
	}
	return nil
}

func (ix *Index) DeleteClient(ctx context.Context, id uint) error {
	if !ix.Enabled() {
		return nil
	}

	res, err := ix.ES.Delete(
		ix.Name,
		strconv.FormatUint(uint64(id), 10),
		ix.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: delete client: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: delete client: %s", res.Status())
	}
	return nil
}

// Search runs a fuzzy multi-match over client names.
func (ix *Index) Search(ctx context.Context, query string, from, size int) (int64, []models.Client, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(ctx),
		ix.ES.Search.WithIndex(ix.Name),
		ix.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: query failed: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Client `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	clients := make([]models.Client, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		clients[i] = hit.Source
	}
	return r.Hits.Total.Value, clients, nil
}
