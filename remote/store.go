// Package remote is the client for a hosted backend: message rows
// over a small REST surface and row-change notifications over a
// websocket feed. The backend itself is an opaque collaborator; this
// package only speaks its wire shapes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"secretlink/models"
	"secretlink/store"
)

const defaultRequestTimeout = 15 * time.Second

// Store talks to the backend's message rows.
type Store struct {
	baseURL string
	client  *http.Client
}

// NewStore creates a client for a backend base URL.
func NewStore(baseURL string) *Store {
	return &Store{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: defaultRequestTimeout},
	}
}

// SelectAll fetches every message ordered by created_at ascending.
func (s *Store) SelectAll(ctx context.Context) ([]models.Message, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/messages?order=created_at.asc", nil)
	if err != nil {
		return nil, fmt.Errorf("build select request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("select messages: unexpected status %s", resp.Status)
	}

	var messages []models.Message
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	return messages, nil
}

// Insert creates a new row. The backend assigns id and created_at and
// echoes the row on the realtime feed.
func (s *Store) Insert(ctx context.Context, content, senderID string) error {
	payload := struct {
		Content  string `json:"content"`
		SenderID string `json:"sender_id"`
	}{Content: content, SenderID: senderID}

	return s.send(ctx, http.MethodPost, s.baseURL+"/messages", payload, "insert message")
}

// MarkRead flips is_read for one row. The backend treats re-marking
// an already-read row as a no-op.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	payload := struct {
		IsRead bool `json:"is_read"`
	}{IsRead: true}

	return s.send(ctx, http.MethodPatch, s.baseURL+"/messages/"+id, payload, "mark read")
}

func (s *Store) send(ctx context.Context, method, url string, payload any, action string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode payload: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: unexpected status %s", action, resp.Status)
	}

	return nil
}

var _ store.MessageStore = (*Store)(nil)
