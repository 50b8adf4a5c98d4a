package session

import (
	"encoding/json"
	"strings"
	"sync"

	"banyan/internal/core/domain"
	"banyan/internal/core/ports"
	"banyan/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	UserKey  = "user"
	ThemeKey = "banyan_theme"

	defaultName  = "測試使用者"
	defaultEmail = "test@example.com"
)

// Session owns the per-client state that outlives a single command: the stub
// user and the chosen theme. Like the post cache, storage failures degrade to
// in-memory values and are only logged.
type Session struct {
	kv  ports.KeyValue
	log *zap.Logger

	mu    sync.RWMutex
	user  *domain.User
	theme domain.ThemeName
}

// Open restores the session from kv, which may be nil.
func Open(kv ports.KeyValue, log *zap.Logger) *Session {
	s := &Session{kv: kv, log: logging.OrNop(log), theme: domain.ThemeDefault}
	s.restore()
	return s
}

func (s *Session) restore() {
	if raw, ok := s.get(UserKey); ok {
		var u domain.User
		if err := json.Unmarshal(raw, &u); err != nil || u.ID == "" {
			s.log.Warn("stored_user_invalid", zap.Error(err))
			s.del(UserKey)
		} else {
			s.user = &u
		}
	}
	if raw, ok := s.get(ThemeKey); ok {
		if t := domain.ThemeName(raw); t.Valid() {
			s.theme = t
		}
	}
}

// User returns the logged-in stub user, if any.
func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// Login manufactures a local identity. It performs no authentication.
func (s *Session) Login(name string) domain.User {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultName
	}
	u := domain.User{
		ID:    "user-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:7],
		Name:  name,
		Email: defaultEmail,
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	if data, err := json.Marshal(u); err == nil {
		s.set(UserKey, data)
	}
	return u
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.del(UserKey)
}

// Theme returns the current theme name.
func (s *Session) Theme() domain.ThemeName {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme persists t. Unknown names are ignored and reported as false.
func (s *Session) SetTheme(t domain.ThemeName) bool {
	if !t.Valid() {
		return false
	}
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()
	s.set(ThemeKey, []byte(t))
	return true
}

func (s *Session) get(key string) ([]byte, bool) {
	if s.kv == nil {
		return nil, false
	}
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.log.Warn("session_read_failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return raw, ok
}

func (s *Session) set(key string, value []byte) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Set(key, value); err != nil {
		s.log.Warn("session_write_failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Session) del(key string) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Delete(key); err != nil {
		s.log.Warn("session_delete_failed", zap.String("key", key), zap.Error(err))
	}
}
