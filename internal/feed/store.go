package feed

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"banyan/internal/core/domain"
	"banyan/internal/core/ports"
	"banyan/internal/logging"
	"banyan/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultUsername = "You"
	justNow         = "Just now"
)

// Rephraser is the total rephrase contract: it always returns a phrasing.
type Rephraser interface {
	Rephrase(ctx context.Context, text string) string
}

// Store is the single source of truth for the feed of the current session.
// It reads and writes the remote first and keeps the local cache convergent.
// Remote calls never happen under mu; every change to the collection is a
// pure mapping applied to whatever slice is current at commit time.
type Store struct {
	gateway   ports.Gateway
	cache     ports.PostCache
	rephraser Rephraser

	username func() string
	now      func() time.Time
	metrics  *metrics.Metrics
	log      *zap.Logger

	mu      sync.Mutex
	posts   []domain.Post
	pending map[string]struct{}
	flights singleflight.Group
}

type Option func(*Store)

// WithUsernameFunc sets the source of the display name stamped on created
// posts. fn is asked at each Create; an empty name falls back to "You".
func WithUsernameFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.username = fn
		}
	}
}

// WithClock replaces time.Now for id minting.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = logging.OrNop(log) }
}

func NewStore(gateway ports.Gateway, cache ports.PostCache, rephraser Rephraser, opts ...Option) *Store {
	s := &Store{
		gateway:   gateway,
		cache:     cache,
		rephraser: rephraser,
		username:  func() string { return "" },
		now:       time.Now,
		log:       zap.NewNop(),
		pending:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Posts returns a copy of the current collection.
func (s *Store) Posts() []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePosts(s.posts)
}

// Pending reports whether a rephrase for postID is in flight.
func (s *Store) Pending(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[postID]
	return ok
}

// Load replaces the collection with the remote feed and mirrors it into the
// cache. When the remote fails the cached feed is used instead. Local-only
// posts are not merged into a successful remote result.
func (s *Store) Load(ctx context.Context) []domain.Post {
	posts, err := s.gateway.ListPosts(ctx)
	s.metrics.Remote("list", err)
	if err != nil {
		s.metrics.Fallback("list")
		s.log.Warn("remote_list_failed", zap.Error(err))
		return s.LoadCached()
	}
	posts = s.uniqueByID(posts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = clonePosts(posts)
	s.cache.Write(clonePosts(posts))
	s.log.Debug("posts_loaded", zap.Int("count", len(posts)))
	return clonePosts(posts)
}

// LoadCached replaces the collection with the cached feed without touching
// the remote.
func (s *Store) LoadCached() []domain.Post {
	cached := s.uniqueByID(s.cache.Read())
	s.mu.Lock()
	s.posts = clonePosts(cached)
	s.mu.Unlock()
	return clonePosts(cached)
}

// Create publishes content. Only empty content is refused; a remote failure
// still yields a post, stored locally under a local- id.
func (s *Store) Create(ctx context.Context, authorID, content string) (domain.Post, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Post{}, domain.ErrValidationRejected
	}

	ack, err := s.gateway.CreatePost(ctx, authorID, content)
	s.metrics.Remote("create", err)

	post := domain.Post{
		Content:          content,
		Username:         s.displayName(),
		CreatedAtDisplay: justNow,
		AuthorID:         authorID,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.metrics.Fallback("create")
		s.log.Warn("remote_create_failed", zap.Error(err))
		post.ID = s.mintIDLocked(domain.LocalIDPrefix, "")
	} else {
		post.ID = s.mintIDLocked("", ack.ID)
	}
	s.commitLocked(prepend(post))
	return post, nil
}

// Toggle switches postID between its original and rephrased text. The first
// toggle fetches the rephrasing and always lands on the rephrased text;
// later toggles flip without any network call. Concurrent first toggles of
// the same post share one rephrase.
func (s *Store) Toggle(ctx context.Context, postID string) (domain.Post, error) {
	s.mu.Lock()
	p, ok := findPost(s.posts, postID)
	if !ok {
		s.mu.Unlock()
		return domain.Post{}, domain.ErrPostNotFound
	}
	if p.HasRephrase() {
		show := !p.IsRephrased
		s.commitLocked(setRephrased(postID, show))
		p.IsRephrased = show
		s.mu.Unlock()
		return p, nil
	}
	content := p.Content
	s.mu.Unlock()

	_, _, _ = s.flights.Do(postID, func() (any, error) {
		s.mu.Lock()
		if cur, ok := findPost(s.posts, postID); ok && cur.HasRephrase() {
			s.mu.Unlock()
			return nil, nil
		}
		s.pending[postID] = struct{}{}
		s.mu.Unlock()

		text := s.rephraser.Rephrase(ctx, content)

		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.pending, postID)
		if text == "" {
			s.log.Warn("rephrase_empty", zap.String("post", postID))
			return nil, nil
		}
		s.commitLocked(withRephrase(postID, text))
		return nil, nil
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := findPost(s.posts, postID)
	if !ok {
		return domain.Post{}, domain.ErrPostNotFound
	}
	return cur, nil
}

func (s *Store) displayName() string {
	if name := s.username(); name != "" {
		return name
	}
	return defaultUsername
}

// uniqueByID keeps the first post for each id; later duplicates are dropped.
func (s *Store) uniqueByID(posts []domain.Post) []domain.Post {
	seen := make(map[string]struct{}, len(posts))
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if _, dup := seen[p.ID]; dup {
			s.log.Warn("duplicate_post_dropped", zap.String("post", p.ID))
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// commitLocked applies mutate to memory first, then to the cached feed, and
// persists the latter.
func (s *Store) commitLocked(mutate func([]domain.Post) []domain.Post) {
	s.posts = mutate(s.posts)
	s.cache.Write(mutate(s.cache.Read()))
}

// mintIDLocked returns an id unused in memory and in the cache. preferred wins
// when it is free; otherwise the id is prefix plus the clock in milliseconds,
// bumped until unique.
func (s *Store) mintIDLocked(prefix, preferred string) string {
	taken := make(map[string]struct{}, len(s.posts))
	for _, p := range s.posts {
		taken[p.ID] = struct{}{}
	}
	for _, p := range s.cache.Read() {
		taken[p.ID] = struct{}{}
	}
	if preferred != "" {
		if _, dup := taken[preferred]; !dup {
			return preferred
		}
	}
	n := s.now().UnixMilli()
	for {
		id := prefix + strconv.FormatInt(n, 10)
		if _, dup := taken[id]; !dup {
			return id
		}
		n++
	}
}

func prepend(post domain.Post) func([]domain.Post) []domain.Post {
	return func(posts []domain.Post) []domain.Post {
		out := make([]domain.Post, 0, len(posts)+1)
		out = append(out, post)
		return append(out, posts...)
	}
}

// setRephrased never turns the rephrased view on for a copy that lacks the text.
func setRephrased(postID string, show bool) func([]domain.Post) []domain.Post {
	return mapPost(postID, func(p domain.Post) domain.Post {
		if !show || p.HasRephrase() {
			p.IsRephrased = show
		}
		return p
	})
}

// withRephrase keeps an existing rephrasing rather than replacing it.
func withRephrase(postID, text string) func([]domain.Post) []domain.Post {
	return mapPost(postID, func(p domain.Post) domain.Post {
		if !p.HasRephrase() {
			p.RephrasedContent = text
		}
		p.IsRephrased = true
		return p
	})
}

func mapPost(postID string, fn func(domain.Post) domain.Post) func([]domain.Post) []domain.Post {
	return func(posts []domain.Post) []domain.Post {
		out := make([]domain.Post, len(posts))
		for i, p := range posts {
			if p.ID == postID {
				p = fn(p)
			}
			out[i] = p
		}
		return out
	}
}

func findPost(posts []domain.Post, id string) (domain.Post, bool) {
	for _, p := range posts {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Post{}, false
}

func clonePosts(posts []domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	copy(out, posts)
	return out
}
