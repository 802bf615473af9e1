package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryCreateAssignsIDs(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	id1, err := repo.Create(ctx, Draft{ChatID: 10, Title: "Fix roof", Description: "Repair leak", Deadline: "15.03.2024", Executor: "МУП", Photos: []string{"file-1"}})
	require.NoError(t, err)
	id2, err := repo.Create(ctx, Draft{ChatID: 10, Title: "Paint fence", Description: "South side", Deadline: "01.04.2024", Executor: "УК"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Fix roof", list[0].Title)
	assert.Equal(t, StatusNew, list[0].Status)
	assert.Equal(t, []string{"file-1"}, []string(list[0].Photos))
}

func TestMemoryRepositoryChronologicalOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	// Lexicographically "05.01.2025" < "20.12.2024"; chronologically it is later.
	_, err := repo.Create(ctx, Draft{Title: "later", Deadline: "05.01.2025", Executor: "МУП"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, Draft{Title: "earlier", Deadline: "20.12.2024", Executor: "МУП"})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "earlier", list[0].Title)
	assert.Equal(t, "later", list[1].Title)
}

func TestMemoryRepositoryFilterByExecutor(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, Draft{Title: "a", Deadline: "01.01.2025", Executor: "МУП"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, Draft{Title: "b", Deadline: "02.01.2025", Executor: "УК"})
	require.NoError(t, err)

	got, err := repo.ListByExecutor(ctx, "МУП")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Title)

	empty, err := repo.ListByExecutor(ctx, "Подрядчик")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryRepositoryUpdateStatusTouchesOnlyStatus(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, Draft{ChatID: 5, Title: "a", Description: "d", Deadline: "01.01.2025", Executor: "МУП", Photos: []string{"p1", "p2"}})
	require.NoError(t, err)

	before, err := repo.List(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, id, "В работе"))

	after, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "В работе", after[0].Status)

	after[0].Status = before[0].Status
	assert.Equal(t, before[0], after[0])
}

func TestMemoryRepositoryDelete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, Draft{Title: "a", Deadline: "01.01.2025", Executor: "МУП"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = repo.Delete(ctx, id)
	assert.True(t, IsNotFound(err))
	err = repo.UpdateStatus(ctx, id, "В работе")
	assert.True(t, IsNotFound(err))
}

func TestValidExecutor(t *testing.T) {
	for _, e := range Executors {
		assert.True(t, ValidExecutor(e), e)
	}
	assert.False(t, ValidExecutor("муп"))
	assert.False(t, ValidExecutor("Слесарь"))
	assert.False(t, ValidExecutor(""))
}
