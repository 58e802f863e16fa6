package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"userhub/backend/internal/models"
)

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: %s: %s", res.Status(), body)
	}

	return client, nil
}

// UserIndex keeps a searchable copy of user records for the admin search
// endpoint. Indexing failures are reported but never block the write path.
type UserIndex struct {
	ES    *elasticsearch.Client
	Index string
}

type UserDoc struct {
	ID       string        `json:"id"`
	Email    string        `json:"email"`
	Username string        `json:"username"`
	Role     models.Role   `json:"role"`
	Status   models.Status `json:"status"`
}

func (i *UserIndex) IndexUser(ctx context.Context, u *models.User) error {
	doc, err := json.Marshal(UserDoc{
		ID:       u.ID.String(),
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
		Status:   u.Status,
	})
	if err != nil {
		return fmt.Errorf("index user: %w", err)
	}

	res, err := i.ES.Index(
		i.Index,
		bytes.NewReader(doc),
		i.ES.Index.WithDocumentID(u.ID.String()),
		i.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index user: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index user: %s", res.Status())
	}
	return nil
}

func (i *UserIndex) DeleteUser(ctx context.Context, id string) error {
	res, err := i.ES.Delete(i.Index, id, i.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete user from index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete user from index: %s", res.Status())
	}
	return nil
}

// Search runs a fuzzy multi_match over email and username.
func (i *UserIndex) Search(ctx context.Context, query string, size int) ([]UserDoc, error) {
	if size < 1 || size > 100 {
		size = 20
	}

	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"email^2", "username"},
				"fuzziness": "AUTO",
			},
		},
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Index),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search users: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source UserDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("search users: decode response: %w", err)
	}

	docs := make([]UserDoc, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		docs[n] = hit.Source
	}
	return docs, nil
}
