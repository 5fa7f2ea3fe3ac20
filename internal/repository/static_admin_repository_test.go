package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticAdminRepository(t *testing.T) {
	repo, err := NewStaticAdminRepository([]string{
		"Admin@Example.com:$2a$10$abcdefghijklmnopqrstuv:Site Admin",
		"ops@example.com:$2a$10$zyxwvutsrqponmlkjihgfe",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.Len())

	user, err := repo.FindByEmail(context.Background(), " admin@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "Site Admin", user.FullName)
	assert.Equal(t, "$2a$10$abcdefghijklmnopqrstuv", user.PasswordHash)
	assert.True(t, user.Active)

	ts := time.Now()
	require.NoError(t, repo.UpdateLastLogin(context.Background(), user.ID, ts))
	again, err := repo.FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, again.LastLogin)
	assert.Nil(t, user.LastLogin, "returned accounts are copies")

	_, err = repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStaticAdminRepositoryRejectsMalformed(t *testing.T) {
	_, err := NewStaticAdminRepository([]string{"no-hash"})
	assert.Error(t, err)
	_, err = NewStaticAdminRepository([]string{":hash"})
	assert.Error(t, err)
}
