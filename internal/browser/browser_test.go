package browser

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbot/internal/tasks"
	"taskbot/internal/telegramtest"
)

func seed(t *testing.T, repo tasks.Repository, d tasks.Draft) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), d)
	require.NoError(t, err)
	return id
}

func TestListAllEmpty(t *testing.T) {
	b := New(tasks.NewMemoryRepository())
	c := telegramtest.NewContext(1)
	require.NoError(t, b.ListAll(c))
	assert.Equal(t, []string{textNoTasks}, c.SentTexts())
}

func TestListAllRendersSummariesAndAlbums(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	seed(t, repo, tasks.Draft{ChatID: 1, Title: "Крыша", Description: "Течёт", Deadline: "15.03.2024", Executor: "МУП"})
	seed(t, repo, tasks.Draft{ChatID: 1, Title: "Подвал", Description: "Затоплен", Deadline: "01.03.2024", Executor: "УК",
		Photos: []string{"f1", "f2"}})

	b := New(repo)
	c := telegramtest.NewContext(1)
	require.NoError(t, b.ListAll(c))

	// Deadlines sort chronologically, so the basement task leads.
	require.Len(t, c.SentMsgs, 2)
	first, _ := c.SentMsgs[0].What.(string)
	assert.Contains(t, first, "Подвал")
	assert.Contains(t, first, "Срок: 01.03.2024")
	assert.Contains(t, first, "Статус: "+tasks.StatusNew)
	second, _ := c.SentMsgs[1].What.(string)
	assert.Contains(t, second, "Крыша")

	require.Len(t, c.Albums, 1)
	assert.Len(t, c.Albums[0], 2)

	markup := c.LastMarkup()
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 2, "one button per status option")
	assert.Len(t, markup.InlineKeyboard[1], 1, "delete row")
}

func TestFilterMenuListsExecutors(t *testing.T) {
	b := New(tasks.NewMemoryRepository())
	c := telegramtest.NewContext(1)
	require.NoError(t, b.FilterMenu(c))

	assert.Equal(t, []string{textChooseExecutor}, c.SentTexts())
	markup := c.LastMarkup()
	require.NotNil(t, markup)
	total := 0
	for _, row := range markup.InlineKeyboard {
		total += len(row)
	}
	assert.Equal(t, len(tasks.Executors), total)
}

func TestHandleFilter(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	seed(t, repo, tasks.Draft{ChatID: 1, Title: "Крыша", Executor: "МУП", Deadline: "15.03.2024"})
	seed(t, repo, tasks.Draft{ChatID: 1, Title: "Подвал", Executor: "УК", Deadline: "01.03.2024"})

	b := New(repo)
	c := telegramtest.NewContext(1).WithCallback(UniqueFilter, "МУП")
	require.NoError(t, b.HandleFilter(c))

	assert.Len(t, c.Responses, 1)
	require.Len(t, c.SentMsgs, 1)
	text, _ := c.SentMsgs[0].What.(string)
	assert.Contains(t, text, "Крыша")
	assert.NotContains(t, text, "Подвал")
}

func TestHandleFilterEmpty(t *testing.T) {
	b := New(tasks.NewMemoryRepository())
	c := telegramtest.NewContext(1).WithCallback(UniqueFilter, "МУП")
	require.NoError(t, b.HandleFilter(c))
	assert.Equal(t, []string{textNoTasksExecutor}, c.SentTexts())
}

func TestHandleStatusUpdatesAndRerenders(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	id := seed(t, repo, tasks.Draft{ChatID: 1, Title: "Крыша", Executor: "МУП", Deadline: "15.03.2024"})

	b := New(repo)
	payload := fmt.Sprintf("%d_В работе_МУП", id)
	c := telegramtest.NewContext(1).WithCallback(UniqueStatus, payload)
	require.NoError(t, b.HandleStatus(c))

	list, err := repo.ListByExecutor(context.Background(), "МУП")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "В работе", list[0].Status)

	assert.Len(t, c.Responses, 1)
	assert.Equal(t, 1, c.Deletes, "stale card is removed before the refresh")
	require.NotEmpty(t, c.SentMsgs)
	text, _ := c.SentMsgs[0].What.(string)
	assert.Contains(t, text, "Статус: В работе")
}

func TestHandleStatusMissingTask(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	b := New(repo)
	c := telegramtest.NewContext(1).WithCallback(UniqueStatus, "42_В работе_МУП")
	require.NoError(t, b.HandleStatus(c))

	assert.Len(t, c.Responses, 1)
	assert.Equal(t, 1, c.Deletes)
	assert.Equal(t, []string{textNoTasksExecutor}, c.SentTexts())
}

func TestHandleDelete(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	id := seed(t, repo, tasks.Draft{ChatID: 1, Title: "Крыша", Executor: "МУП", Deadline: "15.03.2024"})

	b := New(repo)
	c := telegramtest.NewContext(1).WithCallback(UniqueDelete, fmt.Sprintf("%d_МУП", id))
	require.NoError(t, b.HandleDelete(c))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Len(t, c.Responses, 1)
	assert.Equal(t, 1, c.Deletes)
	assert.Equal(t, []string{textNoTasksExecutor}, c.SentTexts())
}

func TestHandleDeleteMissingTaskTolerated(t *testing.T) {
	b := New(tasks.NewMemoryRepository())
	c := telegramtest.NewContext(1).WithCallback(UniqueDelete, "7_МУП")
	require.NoError(t, b.HandleDelete(c))
	assert.Equal(t, 1, c.Deletes)
}

func TestBadPayloads(t *testing.T) {
	b := New(tasks.NewMemoryRepository())

	for _, payload := range []string{"", "МУП", "_МУП", "x_МУП", "7_"} {
		c := telegramtest.NewContext(1).WithCallback(UniqueStatus, payload)
		require.NoError(t, b.HandleStatus(c), "payload %q", payload)
		assert.Len(t, c.Responses, 1, "payload %q", payload)
		assert.Zero(t, c.Deletes, "payload %q", payload)
		assert.Empty(t, c.SentMsgs, "payload %q", payload)
	}

	c := telegramtest.NewContext(1).WithCallback(UniqueDelete, "name only")
	require.NoError(t, b.HandleDelete(c))
	assert.Zero(t, c.Deletes)
}

func TestHandleStatusBadStatusSegment(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	id := seed(t, repo, tasks.Draft{ChatID: 1, Title: "Крыша", Executor: "МУП", Deadline: "15.03.2024"})

	b := New(repo)
	// Remainder has no underscore, so status and executor cannot be split.
	c := telegramtest.NewContext(1).WithCallback(UniqueStatus, fmt.Sprintf("%d_Вработе", id))
	require.NoError(t, b.HandleStatus(c))
	assert.Len(t, c.Responses, 1)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusNew, list[0].Status)
}

func TestSummaryEscapesMarkdown(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	seed(t, repo, tasks.Draft{ChatID: 1, Title: "a*b", Description: "c_d", Executor: "МУП", Deadline: "15.03.2024"})

	b := New(repo)
	c := telegramtest.NewContext(1)
	require.NoError(t, b.ListAll(c))
	require.Len(t, c.SentMsgs, 1)
	text, _ := c.SentMsgs[0].What.(string)
	assert.Contains(t, text, `a\*b`)
	assert.Contains(t, text, `c\_d`)
}
