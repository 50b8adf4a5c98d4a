package ports

import (
	"context"

	"banyan/internal/core/domain"
)

// CreateAck is what the remote acknowledges for a created post. ID is empty
// when the server does not echo one.
type CreateAck struct {
	ID string
}

// Gateway is the remote posting API.
type Gateway interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	CreatePost(ctx context.Context, authorID, content string) (CreateAck, error)
	Rephraser
}

// Rephraser produces an alternative phrasing of a text and may fail.
type Rephraser interface {
	Rephrase(ctx context.Context, content string) (string, error)
}

// KeyValue is a durable byte store. Get reports ok=false for a missing key.
type KeyValue interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// PostCache is the client-persisted copy of the feed.
type PostCache interface {
	Read() []domain.Post
	Write(posts []domain.Post)
}
