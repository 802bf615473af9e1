package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"

	"taskbot/internal/tasks"
	"taskbot/internal/telegramtest"
)

func TestUnknownPhotoIsSilent(t *testing.T) {
	a := &App{}
	c := telegramtest.NewContext(1).WithPhoto("stray-photo")
	require.NoError(t, a.UnknownPhoto()(c))
	assert.Empty(t, c.SentMsgs, "a photo outside the wizard earns no reply")
	assert.Empty(t, c.Responses)
}

func TestUnknownTextReplies(t *testing.T) {
	a := &App{}
	c := telegramtest.NewContext(1).WithText("привет")
	require.NoError(t, a.UnknownText()(c))
	assert.Equal(t, []string{textInvalidCommand}, c.SentTexts())
}

func TestStartAndMenuShowMainKeyboard(t *testing.T) {
	a := &App{}
	for _, h := range []tele.HandlerFunc{a.handleStart, a.handleMenu} {
		c := telegramtest.NewContext(1)
		require.NoError(t, h(c))
		markup := c.LastMarkup()
		require.NotNil(t, markup)
		require.Len(t, markup.ReplyKeyboard, 2)
		assert.Equal(t, labelAddTask, markup.ReplyKeyboard[0][0].Text)
		assert.Equal(t, labelAllTasks, markup.ReplyKeyboard[1][0].Text)
		assert.Equal(t, labelByExecutor, markup.ReplyKeyboard[1][1].Text)
	}
}

func TestStatsCountsPerExecutor(t *testing.T) {
	repo := tasks.NewMemoryRepository()
	ctx := context.Background()
	for _, e := range []string{"МУП", "МУП", "УК"} {
		_, err := repo.Create(ctx, tasks.Draft{ChatID: 1, Title: "t", Deadline: "01.01.2025", Executor: e})
		require.NoError(t, err)
	}

	a := &App{repo: repo}
	c := telegramtest.NewContext(1)
	require.NoError(t, a.handleStats(c))

	require.Len(t, c.SentMsgs, 1)
	text, _ := c.SentMsgs[0].What.(string)
	assert.Contains(t, text, "Всего задач: 3")
	assert.Contains(t, text, "МУП: 2")
	assert.Contains(t, text, "УК: 1")

	require.Len(t, c.SentMsgs[0].Opts, 1)
	opts, ok := c.SentMsgs[0].Opts[0].(*tele.SendOptions)
	require.True(t, ok)
	assert.Equal(t, tele.ModeMarkdown, opts.ParseMode)
}

func TestStatsEmpty(t *testing.T) {
	a := &App{repo: tasks.NewMemoryRepository()}
	c := telegramtest.NewContext(1)
	require.NoError(t, a.handleStats(c))
	assert.Equal(t, []string{textStatsEmpty}, c.SentTexts())
}
