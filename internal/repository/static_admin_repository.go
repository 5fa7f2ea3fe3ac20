package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/teacher-admin/internal/models"
)

// StaticAdminRepository serves operator accounts configured as
// "email:bcrypt-hash[:Full Name]" entries. Last-login stamps live in memory.
type StaticAdminRepository struct {
	mu    sync.RWMutex
	users map[string]*models.AdminUser
}

// NewStaticAdminRepository parses the configured entries.
func NewStaticAdminRepository(entries []string) (*StaticAdminRepository, error) {
	repo := &StaticAdminRepository{users: make(map[string]*models.AdminUser, len(entries))}
	for i, entry := range entries {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("admin user entry %d: want email:hash", i+1)
		}
		email := strings.ToLower(strings.TrimSpace(parts[0]))
		user := &models.AdminUser{
			ID:           email,
			Email:        email,
			PasswordHash: strings.TrimSpace(parts[1]),
			Active:       true,
		}
		if len(parts) == 3 {
			user.FullName = strings.TrimSpace(parts[2])
		}
		repo.users[email] = user
	}
	return repo, nil
}

// FindByEmail returns a copy of the matching account, sql.ErrNoRows when absent.
func (r *StaticAdminRepository) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

// UpdateLastLogin stamps the account in memory.
func (r *StaticAdminRepository) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		user.LastLogin = &ts
		user.UpdatedAt = ts
	}
	return nil
}

// Len is the number of configured accounts.
func (r *StaticAdminRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
