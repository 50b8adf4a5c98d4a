package banyan

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"banyan/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, nil)
}

func TestListPosts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/posts", r.URL.Path)
		io.WriteString(w, `[
			{"id": 42, "content": "hello", "username": "amy", "time": "1 分鐘前", "user_id": "u1"},
			{"id": "abc", "content": "", "extra": true}
		]`)
	})

	posts, err := c.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, domain.Post{ID: "42", Content: "hello", Username: "amy", CreatedAtDisplay: "1 分鐘前", AuthorID: "u1"}, posts[0])
	assert.Equal(t, "abc", posts[1].ID)
	assert.Equal(t, "", posts[1].Content)
}

func TestListPostsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	posts, err := c.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NotNil(t, posts)
}

func TestListPostsFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"object instead of array", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"posts": []}`)
		}},
		{"missing content", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"id": "1"}]`)
		}},
		{"missing id", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"content": "x"}]`)
		}},
		{"content of wrong type", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"id": "1", "content": 7}]`)
		}},
		{"repeated id", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"id": 1, "content": "a"}, {"id": "1", "content": "b"}]`)
		}},
		{"null body", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `null`)
		}},
		{"html body", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `<html>maintenance</html>`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.ListPosts(context.Background())
			require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
		})
	}
}

func TestTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	c.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := c.ListPosts(context.Background())
	require.ErrorIs(t, err, domain.ErrTimeout)
	assert.NotErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil)
	_, err := c.Rephrase(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestCreatePost(t *testing.T) {
	t.Run("sends content and user id", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/post", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body CreatePostRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, CreatePostRequest{Content: "hello", UserID: "u1"}, body)
			io.WriteString(w, `{"message": "ok"}`)
		})

		ack, err := c.CreatePost(context.Background(), "u1", "hello")
		require.NoError(t, err)
		assert.Empty(t, ack.ID)
	})

	t.Run("echoed id is surfaced", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"id": 1001}`)
		})
		ack, err := c.CreatePost(context.Background(), "u1", "hello")
		require.NoError(t, err)
		assert.Equal(t, "1001", ack.ID)
	})

	t.Run("non-object acknowledgement", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `["ok"]`)
		})
		ack, err := c.CreatePost(context.Background(), "u1", "hello")
		require.NoError(t, err)
		assert.Empty(t, ack.ID)
	})

	t.Run("empty body is not an acknowledgement", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		_, err := c.CreatePost(context.Background(), "u1", "hello")
		require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	})

	t.Run("bad status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, `{}`)
		})
		_, err := c.CreatePost(context.Background(), "u1", "hello")
		require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	})
}

func TestRephrase(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rephrase", r.URL.Path)
			var body RephraseRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "立即停止", body.Content)
			io.WriteString(w, `{"rephrased": "建議重新評估"}`)
		})
		out, err := c.Rephrase(context.Background(), "立即停止")
		require.NoError(t, err)
		assert.Equal(t, "建議重新評估", out)
	})

	t.Run("missing field", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"text": "x"}`)
		})
		_, err := c.Rephrase(context.Background(), "x")
		require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	})

	t.Run("wrong type", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"rephrased": ["x"]}`)
		})
		_, err := c.Rephrase(context.Background(), "x")
		require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	})
}

func TestFlexibleID(t *testing.T) {
	tests := []struct {
		in   string
		want FlexibleID
	}{
		{`"abc"`, "abc"},
		{`17`, "17"},
		{`1.5`, "1.5"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var id FlexibleID
		require.NoError(t, json.Unmarshal([]byte(tt.in), &id), tt.in)
		assert.Equal(t, tt.want, id)
	}

	var id FlexibleID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}
