// Package browser lists stored tasks and applies status and delete actions
// through inline controls.
package browser

import (
	"fmt"
	"strconv"

	"taskbot/core/logger"
	"taskbot/core/telegram/callbacks"
	"taskbot/core/telegram/format"
	tghelpers "taskbot/core/telegram/helpers"
	"taskbot/core/telegram/keyboard"
	"taskbot/internal/tasks"

	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Callback unique keys carried by browser controls.
const (
	UniqueFilter = "filter"
	UniqueStatus = "status"
	UniqueDelete = "delete"
)

// statusOptions are the labels offered on the inline controls. Storage keeps
// an open status domain; these are just the choices rendered.
var statusOptions = []string{"В работе", "Выполнена"}

const (
	textNoTasks         = "Задач пока нет"
	textNoTasksExecutor = "Нет задач для этого исполнителя"
	textChooseExecutor  = "Задачи какого исполнителя показать?"
	textStatusUpdated   = "Статус обновлён"
	textTaskDeleted     = "Задача удалена"
	textTaskMissing     = "Задача уже не существует"
	textRequestFailed   = "Не удалось выполнить запрос, попробуйте ещё раз"
	textDeleteLabel     = "🗑 Удалить"
)

// Browser renders task listings and applies mutations via the repository.
type Browser struct {
	repo tasks.Repository
}

// New builds a Browser over the given repository.
func New(repo tasks.Repository) *Browser {
	return &Browser{repo: repo}
}

// ListAll renders every stored task, ordered by deadline.
func (b *Browser) ListAll(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	list, err := b.repo.List(ctx)
	if err != nil {
		return b.fail(c, "tasks.list", err)
	}
	if len(list) == 0 {
		return tghelpers.SendText(c, textNoTasks)
	}
	return b.render(c, list)
}

// FilterMenu shows one inline button per executor label.
func (b *Browser) FilterMenu(c tele.Context) error {
	btns := make([]keyboard.InlineBtn, 0, len(tasks.Executors))
	for _, e := range tasks.Executors {
		btns = append(btns, keyboard.InlineBtn{Text: e, Unique: UniqueFilter, Data: e})
	}
	return c.Send(textChooseExecutor, keyboard.InlineButtonsNPerRow(btns, 2))
}

// HandleFilter renders the executor-filtered listing for a filter callback.
func (b *Browser) HandleFilter(c tele.Context) error {
	executor := callbacks.CallbackPayload(c)
	_ = c.Respond()
	return b.renderExecutor(c, executor)
}

// HandleStatus applies a status change encoded as <id>_<newStatus>_<executor>,
// acknowledges it, removes the rendered control message and re-renders the
// executor-filtered list.
func (b *Browser) HandleStatus(c tele.Context) error {
	id, parts, err := taskPayload(c, 2)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textRequestFailed})
	}
	status, executor := parts[0], parts[1]

	ctx := tghelpers.BuildContext(c)
	if err := b.repo.UpdateStatus(ctx, id, status); err != nil {
		if tasks.IsNotFound(err) {
			_ = c.Respond(&tele.CallbackResponse{Text: textTaskMissing})
			_ = c.Delete()
			return b.renderExecutor(c, executor)
		}
		_ = c.Respond(&tele.CallbackResponse{Text: textRequestFailed})
		return b.fail(c, "tasks.status", err)
	}
	logger.Info(ctx, "browser", "task.status",
		slog.String("status", "ok"),
		slog.Int64("task_id", id),
		slog.String("executor", executor),
	)
	_ = c.Respond(&tele.CallbackResponse{Text: textStatusUpdated})
	_ = c.Delete()
	return b.renderExecutor(c, executor)
}

// HandleDelete removes a task encoded as <id>_<executor> with the same
// refresh-in-place pattern as HandleStatus.
func (b *Browser) HandleDelete(c tele.Context) error {
	id, parts, err := taskPayload(c, 1)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textRequestFailed})
	}
	executor := parts[0]

	ctx := tghelpers.BuildContext(c)
	if err := b.repo.Delete(ctx, id); err != nil && !tasks.IsNotFound(err) {
		_ = c.Respond(&tele.CallbackResponse{Text: textRequestFailed})
		return b.fail(c, "tasks.delete", err)
	}
	logger.Info(ctx, "browser", "task.delete",
		slog.String("status", "ok"),
		slog.Int64("task_id", id),
		slog.String("executor", executor),
	)
	_ = c.Respond(&tele.CallbackResponse{Text: textTaskDeleted})
	_ = c.Delete()
	return b.renderExecutor(c, executor)
}

func (b *Browser) renderExecutor(c tele.Context, executor string) error {
	ctx := tghelpers.BuildContext(c)
	list, err := b.repo.ListByExecutor(ctx, executor)
	if err != nil {
		return b.fail(c, "tasks.list_executor", err)
	}
	if len(list) == 0 {
		return tghelpers.SendText(c, textNoTasksExecutor)
	}
	return b.render(c, list)
}

// render sends the listing directly, bypassing the async sender: the album
// must land before its summary message.
func (b *Browser) render(c tele.Context, list []tasks.Task) error {
	for _, t := range list {
		if len(t.Photos) > 0 {
			album := make(tele.Album, 0, len(t.Photos))
			for _, fileID := range t.Photos {
				album = append(album, &tele.Photo{File: tele.File{FileID: fileID}})
			}
			if err := c.SendAlbum(album); err != nil {
				return b.fail(c, "tasks.album", err)
			}
		}
		opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: controls(t)}
		if err := c.Send(summary(t), opts); err != nil {
			return b.fail(c, "tasks.render", err)
		}
	}
	return nil
}

func (b *Browser) fail(c tele.Context, op string, err error) error {
	ctx := tghelpers.BuildContext(c)
	logger.Error(ctx, "browser", op,
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
	_ = tghelpers.SendText(c, textRequestFailed)
	return err
}

func summary(t tasks.Task) string {
	title, _ := format.EscapeMarkdown(t.Title, format.MarkdownV1, "")
	desc, _ := format.EscapeMarkdown(t.Description, format.MarkdownV1, "")
	return fmt.Sprintf("*№%d · %s*\n%s\nСрок: %s\nИсполнитель: %s\nСтатус: %s",
		t.ID, title, desc, t.Deadline, t.Executor, t.Status)
}

func controls(t tasks.Task) *tele.ReplyMarkup {
	statusRow := make([]keyboard.InlineBtn, 0, len(statusOptions))
	for _, st := range statusOptions {
		statusRow = append(statusRow, keyboard.InlineBtn{
			Text:   st,
			Unique: UniqueStatus,
			Data:   fmt.Sprintf("%d_%s_%s", t.ID, st, t.Executor),
		})
	}
	deleteRow := []keyboard.InlineBtn{{
		Text:   textDeleteLabel,
		Unique: UniqueDelete,
		Data:   fmt.Sprintf("%d_%s", t.ID, t.Executor),
	}}
	return keyboard.InlineButtonsRows(statusRow, deleteRow)
}

// taskPayload parses an underscore-delimited callback payload into the
// leading task id and exactly want trailing parts. Status and executor
// labels never contain underscores, so a plain split is unambiguous.
func taskPayload(c tele.Context, want int) (int64, []string, error) {
	parts, err := callbacks.PayloadParts(c, "_")
	if err != nil {
		return 0, nil, err
	}
	if len(parts) != want+1 {
		return 0, nil, fmt.Errorf("browser: bad payload %q", callbacks.CallbackPayload(c))
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("browser: bad task id %q: %w", parts[0], err)
	}
	for _, p := range parts[1:] {
		if p == "" {
			return 0, nil, fmt.Errorf("browser: bad payload %q", callbacks.CallbackPayload(c))
		}
	}
	return id, parts[1:], nil
}
