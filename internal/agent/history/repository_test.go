package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-command-agent/internal/models"
)

func record(id, status string) models.CommandRecord {
	return models.CommandRecord{
		ID:          id,
		Command:     "Enable starvation mode",
		Intent:      "enable_starvation_mode",
		CommandType: models.CommandTypeSystemConfiguration,
		Status:      status,
		Provider:    "google",
		Confidence:  0.95,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestMemoryRepository_SaveAndFindRecent(t *testing.T) {
	repo := NewMemoryRepository(10)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, record(fmt.Sprintf("cmd_%d", i), models.StatusCompleted)))
	}

	recent, err := repo.FindRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	assert.Equal(t, "cmd_4", recent[0].ID, "newest first")
	assert.Equal(t, "cmd_3", recent[1].ID)
	assert.Equal(t, "cmd_2", recent[2].ID)
}

func TestMemoryRepository_EvictsOldest(t *testing.T) {
	repo := NewMemoryRepository(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, record(fmt.Sprintf("cmd_%d", i), models.StatusCompleted)))
	}

	recent, err := repo.FindRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "cmd_4", recent[0].ID)
	assert.Equal(t, "cmd_2", recent[2].ID)
}

func TestMemoryRepository_FindByStatus(t *testing.T) {
	repo := NewMemoryRepository(10)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, record("cmd_ok", models.StatusCompleted)))
	require.NoError(t, repo.Save(ctx, record("cmd_bad", models.StatusError)))
	require.NoError(t, repo.Save(ctx, record("cmd_ok2", models.StatusCompleted)))

	failed, err := repo.FindByStatus(ctx, models.StatusError, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "cmd_bad", failed[0].ID)

	completed, err := repo.FindByStatus(ctx, models.StatusCompleted, 1)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "cmd_ok2", completed[0].ID)
}

func TestMemoryRepository_EmptyFindRecent(t *testing.T) {
	repo := NewMemoryRepository(10)

	recent, err := repo.FindRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
