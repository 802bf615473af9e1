package app

import (
	"fmt"
	"strings"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"taskbot/core/logger"
	coretelegram "taskbot/core/telegram"
	tghelpers "taskbot/core/telegram/helpers"
	"taskbot/core/telegram/keyboard"
	"taskbot/internal/tasks"
)

const (
	textGreeting       = "Здравствуйте! Я помогу вести задачи по дому. Выберите действие на клавиатуре."
	textMenu           = "Выберите действие"
	textInvalidCommand = "Неверная команда"
	textStatsEmpty     = "Задач пока нет"

	labelAddTask    = "Добавить задачу"
	labelAllTasks   = "Все задачи"
	labelByExecutor = "Задачи по исполнителю"
)

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{labelAddTask},
		[]string{labelAllTasks, labelByExecutor},
	)
}

func (a *App) handleStart(c tele.Context) error {
	return c.Send(textGreeting, mainMenu())
}

func (a *App) handleMenu(c tele.Context) error {
	return c.Send(textMenu, mainMenu())
}

func (a *App) handleUnknown(c tele.Context) error {
	return tghelpers.SendText(c, textInvalidCommand)
}

// UnknownText replies to unrecognized text outside an active dialog.
func (a *App) UnknownText() tele.HandlerFunc { return a.handleUnknown }

// UnknownPhoto drops photos arriving outside the wizard photo step. Only
// unmatched top-level text earns a reply.
func (a *App) UnknownPhoto() tele.HandlerFunc {
	return func(tele.Context) error { return nil }
}

// UnknownCallback answers stale callbacks whose key is no longer registered.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: textInvalidCommand})
	}
}

func (a *App) handleHelp(reg *coretelegram.Registry) tele.HandlerFunc {
	return func(c tele.Context) error {
		var b strings.Builder
		for _, cmd := range reg.ListCommands(true) {
			fmt.Fprintf(&b, "%s — %s\n", cmd.Text, cmd.Description)
		}
		return tghelpers.SendText(c, strings.TrimRight(b.String(), "\n"))
	}
}

// handleStats reports per-executor task counts. Admin only.
func (a *App) handleStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	list, err := a.repo.List(ctx)
	if err != nil {
		logger.Error(ctx, "app", "stats.fail",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, textInvalidCommand)
	}
	if len(list) == 0 {
		return tghelpers.SendText(c, textStatsEmpty)
	}

	byExecutor := make(map[string]int, len(tasks.Executors))
	for _, t := range list {
		byExecutor[t.Executor]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Всего задач: %d*\n", len(list))
	for _, e := range tasks.Executors {
		if n := byExecutor[e]; n > 0 {
			fmt.Fprintf(&b, "%s: %d\n", e, n)
		}
	}
	return tghelpers.SendMD(c, strings.TrimRight(b.String(), "\n"))
}
