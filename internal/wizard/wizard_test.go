package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbot/core/telegram/state"
	"taskbot/internal/calendar"
	"taskbot/internal/tasks"
	"taskbot/internal/telegramtest"
)

func fixedClock() time.Time {
	return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func newWizard(repo tasks.Repository) (*Wizard, state.Manager[tasks.Draft]) {
	sessions := state.NewMemoryManager[tasks.Draft]()
	return New(sessions, repo, WithClock(fixedClock)), sessions
}

func TestWizardHappyPath(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	w, sessions := newWizard(repo)
	const chatID = int64(100)

	c := telegramtest.NewContext(chatID).WithText("Добавить задачу")
	require.NoError(t, w.Start(c))
	assert.Equal(t, StepTitle, sessions.CurrentStep(chatID))

	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("Fix roof")))
	assert.Equal(t, StepDescription, sessions.CurrentStep(chatID))

	c = telegramtest.NewContext(chatID).WithText("Repair leak")
	require.NoError(t, w.HandleUpdate(c))
	assert.Equal(t, StepDeadline, sessions.CurrentStep(chatID))
	require.NotNil(t, c.LastMarkup(), "calendar keyboard must be attached")

	c = telegramtest.NewContext(chatID).WithCallback(calendar.UniqueDate, "2024-03-15")
	require.NoError(t, w.HandleDate(c))
	assert.Equal(t, StepExecutor, sessions.CurrentStep(chatID))
	assert.Equal(t, 1, c.Deletes, "calendar message must be discarded")
	s, _ := sessions.Get(chatID)
	assert.Equal(t, "15.03.2024", s.Data.Deadline)

	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("МУП")))
	assert.Equal(t, StepPhoto, sessions.CurrentStep(chatID))

	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithPhoto("photo-file-1")))

	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText(DoneSentinel)))
	assert.False(t, w.InProgress(chatID), "session must be cleared on completion")

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	task := list[0]
	assert.Equal(t, chatID, task.ChatID)
	assert.Equal(t, "Fix roof", task.Title)
	assert.Equal(t, "Repair leak", task.Description)
	assert.Equal(t, "15.03.2024", task.Deadline)
	assert.Equal(t, "МУП", task.Executor)
	assert.Equal(t, tasks.StatusNew, task.Status)
	assert.Equal(t, []string{"photo-file-1"}, []string(task.Photos))
}

func TestWizardInvalidExecutorKeepsDraft(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	w, sessions := newWizard(repo)
	const chatID = int64(7)

	require.NoError(t, w.Start(telegramtest.NewContext(chatID)))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("t")))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("d")))
	require.NoError(t, w.HandleDate(telegramtest.NewContext(chatID).WithCallback(calendar.UniqueDate, "2024-03-15")))

	c := telegramtest.NewContext(chatID).WithText("Слесарь")
	require.NoError(t, w.HandleUpdate(c))
	assert.Equal(t, StepExecutor, sessions.CurrentStep(chatID))
	s, _ := sessions.Get(chatID)
	assert.Empty(t, s.Data.Executor)
	assert.Equal(t, "t", s.Data.Title, "draft progress must survive validation failure")
	assert.Contains(t, c.SentTexts(), textBadExecutor)

	// Case matters: the match is exact.
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("муп")))
	assert.Equal(t, StepExecutor, sessions.CurrentStep(chatID))
}

func TestWizardRestartOverwritesDraft(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	w, sessions := newWizard(repo)
	const chatID = int64(8)

	require.NoError(t, w.Start(telegramtest.NewContext(chatID)))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("first title")))

	require.NoError(t, w.Start(telegramtest.NewContext(chatID)))
	s, ok := sessions.Get(chatID)
	require.True(t, ok)
	assert.Equal(t, StepTitle, s.Step)
	assert.Empty(t, s.Data.Title, "second create command wins")
}

func TestWizardDeadlineStepIgnoresText(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	w, sessions := newWizard(repo)
	const chatID = int64(9)

	require.NoError(t, w.Start(telegramtest.NewContext(chatID)))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("t")))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("d")))

	c := telegramtest.NewContext(chatID).WithText("завтра")
	require.NoError(t, w.HandleUpdate(c))
	assert.Equal(t, StepDeadline, sessions.CurrentStep(chatID))
	assert.Empty(t, c.SentMsgs)
}

func TestWizardEmptyTitleReprompts(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	w, sessions := newWizard(repo)
	const chatID = int64(11)

	require.NoError(t, w.Start(telegramtest.NewContext(chatID)))
	c := telegramtest.NewContext(chatID).WithPhoto("early-photo")
	require.NoError(t, w.HandleUpdate(c))
	assert.Equal(t, StepTitle, sessions.CurrentStep(chatID))
	assert.Contains(t, c.SentTexts(), textAskTitle)
}

func TestWizardNavigationKeepsStep(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	w, sessions := newWizard(repo)
	const chatID = int64(12)

	require.NoError(t, w.Start(telegramtest.NewContext(chatID)))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("t")))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("d")))

	c := telegramtest.NewContext(chatID).WithCallback(calendar.UniquePrev, "2024-02")
	require.NoError(t, w.HandleNav(c))
	assert.Equal(t, StepDeadline, sessions.CurrentStep(chatID))
	require.Len(t, c.Edits, 1, "navigation replaces the keyboard in place")
}

func TestWizardDateWithoutSessionIgnored(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	w, _ := newWizard(repo)

	c := telegramtest.NewContext(13).WithCallback(calendar.UniqueDate, "2024-03-15")
	require.NoError(t, w.HandleDate(c))
	assert.Empty(t, c.SentMsgs)
	assert.Zero(t, c.Deletes)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWizardPhotoStepIgnoresOtherText(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	w, sessions := newWizard(repo)
	const chatID = int64(14)

	require.NoError(t, w.Start(telegramtest.NewContext(chatID)))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("t")))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("d")))
	require.NoError(t, w.HandleDate(telegramtest.NewContext(chatID).WithCallback(calendar.UniqueDate, "2024-03-15")))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("МУП")))

	c := telegramtest.NewContext(chatID).WithText("что-то ещё")
	require.NoError(t, w.HandleUpdate(c))
	assert.Equal(t, StepPhoto, sessions.CurrentStep(chatID))
	assert.Empty(t, c.SentMsgs)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

type failingRepo struct {
	*tasks.MemoryRepository
}

func (failingRepo) Create(context.Context, tasks.Draft) (int64, error) {
	return 0, errors.New("db down")
}

func TestWizardCreateFailureKeepsSession(t *testing.T) {
	repo := failingRepo{tasks.NewMemoryRepository()}
	w, sessions := newWizard(repo)
	const chatID = int64(15)

	require.NoError(t, w.Start(telegramtest.NewContext(chatID)))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("t")))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("d")))
	require.NoError(t, w.HandleDate(telegramtest.NewContext(chatID).WithCallback(calendar.UniqueDate, "2024-03-15")))
	require.NoError(t, w.HandleUpdate(telegramtest.NewContext(chatID).WithText("МУП")))

	c := telegramtest.NewContext(chatID).WithText(DoneSentinel)
	err := w.HandleUpdate(c)
	require.Error(t, err)
	assert.Contains(t, c.SentTexts(), textRequestFailed)
	assert.Equal(t, StepPhoto, sessions.CurrentStep(chatID), "session must survive the failure for a retry")
}
