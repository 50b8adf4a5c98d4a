package cache

import (
	"encoding/json"

	"banyan/internal/core/domain"
	"banyan/internal/core/ports"
	"banyan/internal/logging"
	"banyan/internal/metrics"

	"go.uber.org/zap"
)

// PostsKey is the storage key holding the serialized feed.
const PostsKey = "banyan_posts"

// Store is the client-persisted copy of the feed. It never reports an error:
// an unusable backend reads as the seed set and swallows writes.
type Store struct {
	kv      ports.KeyValue
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New wraps kv. kv may be nil when no storage could be opened.
func New(kv ports.KeyValue, m *metrics.Metrics, log *zap.Logger) *Store {
	return &Store{kv: kv, metrics: m, log: logging.OrNop(log)}
}

var _ ports.PostCache = (*Store)(nil)

// Read returns the stored feed, or the seed set when nothing usable is stored.
func (s *Store) Read() []domain.Post {
	if s.kv == nil {
		return SeedPosts()
	}
	raw, ok, err := s.kv.Get(PostsKey)
	if err != nil {
		s.metrics.CacheError("read")
		s.log.Warn("cache_read_failed", zap.Error(err))
		return SeedPosts()
	}
	if !ok {
		return SeedPosts()
	}
	var posts []domain.Post
	if err := json.Unmarshal(raw, &posts); err != nil || posts == nil {
		s.metrics.CacheError("read")
		s.log.Warn("cache_decode_failed", zap.Error(err), zap.Int("len", len(raw)))
		return SeedPosts()
	}
	for i := range posts {
		// A rephrased flag without text cannot be shown.
		if posts[i].IsRephrased && !posts[i].HasRephrase() {
			posts[i].IsRephrased = false
		}
	}
	return posts
}

// Write replaces the stored feed with posts.
func (s *Store) Write(posts []domain.Post) {
	if s.kv == nil {
		return
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	data, err := json.Marshal(posts)
	if err != nil {
		s.log.Warn("cache_encode_failed", zap.Error(err))
		return
	}
	if err := s.kv.Set(PostsKey, data); err != nil {
		s.metrics.CacheError("write")
		s.log.Warn("cache_write_failed", zap.Error(err), zap.Int("posts", len(posts)))
	}
}
