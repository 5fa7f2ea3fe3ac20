package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())
	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "session:1", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "session:1", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "session:1"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
