// Package user keeps the registered players and administrators. The registry
// is in-memory; accounts are seeded at boot or registered over the API.
package user

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pool-tracker-service/internal/domain"
)

var (
	// ErrDuplicateLogin is returned when a login is already taken.
	ErrDuplicateLogin = errors.New("login already registered")
	// ErrInvalidCredentials is returned when a login/secret pair does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Registry stores users keyed by id with a unique-login constraint.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byLogin map[string]string
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:    make(map[string]domain.User),
		byLogin: make(map[string]string),
	}
}

// Register validates and stores a new user. Logins are case-insensitive and
// must be unique.
func (r *Registry) Register(u domain.User) (domain.User, error) {
	u.Login = strings.TrimSpace(strings.ToLower(u.Login))
	if u.Login == "" {
		return domain.User{}, fmt.Errorf("login required")
	}
	if u.Name == "" {
		return domain.User{}, fmt.Errorf("name required")
	}
	if u.Secret == "" {
		return domain.User{}, fmt.Errorf("secret required")
	}
	if u.Role == "" {
		u.Role = domain.RolePlayer
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byLogin[u.Login]; taken {
		return domain.User{}, ErrDuplicateLogin
	}
	r.byID[u.ID] = u
	r.byLogin[u.Login] = u.ID
	return u, nil
}

// Authenticate resolves a login/secret pair to a user.
func (r *Registry) Authenticate(login, secret string) (domain.User, error) {
	login = strings.TrimSpace(strings.ToLower(login))

	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byLogin[login]
	if !ok {
		return domain.User{}, ErrInvalidCredentials
	}
	u := r.byID[id]
	if u.Secret != secret {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// ByID returns a single user if present.
func (r *Registry) ByID(id string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	return u, ok
}

// Users returns all registered users ordered by name.
func (r *Registry) Users() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of registered users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
