package feed

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is the canonical domain record served by feed endpoints. Sources
// are generic over the decoded type, so Record is a convenience for the
// common case rather than a requirement.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// page is the paginated response envelope. An empty Next cursor marks the
// final page.
type page[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next,omitempty"`
}
