package items

import (
	"strconv"
	"time"

	"gallerykeeper/internal/shared"
)

// Item types. A text item carries raw text in Content; an image item carries
// either a remote URL or a self-contained data URI.
const (
	TypeText  = "text"
	TypeImage = "image"
)

// Item is a persisted content record. Items are immutable once created
// except for deletion; CreatedAt is assigned server-side and never updated.
type Item struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// CreateItemRequest is the payload for creating a new item.
type CreateItemRequest struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate checks the request fields. It must run before any store write.
func (r CreateItemRequest) Validate() error {
	switch r.Type {
	case TypeText, TypeImage:
	default:
		return shared.NewValidationError("type", `must be "text" or "image"`)
	}
	if r.Title == "" {
		return shared.NewValidationError("title", "must not be empty")
	}
	if r.Content == "" {
		return shared.NewValidationError("content", "must not be empty")
	}
	return nil
}

// timeNow is a seam for tests that need deterministic ids and timestamps.
var timeNow = time.Now

// NewItem builds the canonical record for a create request. The id is the
// creation instant in milliseconds; two creates within the same millisecond
// collide. Known limitation, kept for compatibility with existing records.
func NewItem(req CreateItemRequest) *Item {
	now := timeNow().UTC()
	return &Item{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Type:      req.Type,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now.Format(time.RFC3339),
	}
}
