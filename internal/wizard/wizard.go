// Package wizard implements the multi-step task creation dialog:
// title → description → deadline (calendar) → executor → photos.
package wizard

import (
	"time"

	"taskbot/core/logger"
	"taskbot/core/telegram/callbacks"
	tghelpers "taskbot/core/telegram/helpers"
	"taskbot/core/telegram/keyboard"
	"taskbot/core/telegram/state"
	"taskbot/internal/calendar"
	"taskbot/internal/tasks"

	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Wizard steps, in strict forward order. There are no backward transitions
// and no skips.
const (
	StepTitle       state.Step = "title"
	StepDescription state.Step = "description"
	StepDeadline    state.Step = "deadline"
	StepExecutor    state.Step = "executor"
	StepPhoto       state.Step = "photo"
)

// DoneSentinel is the text that finalizes the photo step.
const DoneSentinel = "Готово"

const (
	textAskTitle       = "Введите название задачи"
	textAskDescription = "Опишите задачу"
	textAskDeadline    = "Выберите срок выполнения"
	textAskExecutor    = "Выберите исполнителя"
	textBadExecutor    = "Такого исполнителя нет, выберите с клавиатуры"
	textAskPhoto       = "Пришлите фото к задаче или нажмите «" + DoneSentinel + "»"
	textPhotoAdded     = "Фото добавлено, пришлите ещё или нажмите «" + DoneSentinel + "»"
	textCreated        = "Задача создана"
	textRequestFailed  = "Не удалось выполнить запрос, попробуйте ещё раз"
)

// Session is a per-chat wizard session holding the draft being built.
type Session = state.Session[tasks.Draft]

// Wizard drives the creation dialog over the session manager and persists
// the finished draft into the task repository.
type Wizard struct {
	sessions state.Manager[tasks.Draft]
	repo     tasks.Repository
	now      func() time.Time
}

// Option customises a Wizard.
type Option func(*Wizard)

// WithClock overrides the time source used for the initial calendar month.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// New builds a Wizard over the given session manager and repository.
func New(sessions state.Manager[tasks.Draft], repo tasks.Repository, opts ...Option) *Wizard {
	w := &Wizard{sessions: sessions, repo: repo, now: time.Now}
	for _, o := range opts {
		o(w)
	}
	return w
}

// stepHandlers maps each wizard step to its update handler. Dispatch goes
// through this table only, so an event arriving at a step that does not
// accept it falls out as a no-op instead of corrupting the draft.
var stepHandlers = map[state.Step]func(*Wizard, tele.Context, Session) error{
	StepTitle:       (*Wizard).handleTitle,
	StepDescription: (*Wizard).handleDescription,
	StepDeadline:    (*Wizard).handleDeadline,
	StepExecutor:    (*Wizard).handleExecutor,
	StepPhoto:       (*Wizard).handlePhoto,
}

// Start begins the creation dialog for the chat. A second Start before
// completion overwrites the previous draft entirely: last command wins.
func (w *Wizard) Start(c tele.Context) error {
	chatID := c.Chat().ID
	w.sessions.Set(chatID, Session{Step: StepTitle, Data: tasks.Draft{ChatID: chatID}})
	return tghelpers.SendText(c, textAskTitle)
}

// InProgress reports whether the chat has an active creation dialog.
func (w *Wizard) InProgress(chatID int64) bool {
	return w.sessions.InProgress(chatID)
}

// HandleUpdate routes a text or photo update to the current step's handler.
func (w *Wizard) HandleUpdate(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	s, ok := w.sessions.Get(chat.ID)
	if !ok {
		return nil
	}
	h, ok := stepHandlers[s.Step]
	if !ok {
		return nil
	}
	return h(w, c, s)
}

func (w *Wizard) handleTitle(c tele.Context, s Session) error {
	text := c.Text()
	if isPhoto(c) || text == "" {
		return tghelpers.SendText(c, textAskTitle)
	}
	s.Data.Title = text
	s.Step = StepDescription
	w.sessions.Set(c.Chat().ID, s)
	return tghelpers.SendText(c, textAskDescription)
}

func (w *Wizard) handleDescription(c tele.Context, s Session) error {
	text := c.Text()
	if isPhoto(c) || text == "" {
		return tghelpers.SendText(c, textAskDescription)
	}
	s.Data.Description = text
	s.Step = StepDeadline
	w.sessions.Set(c.Chat().ID, s)

	now := w.now()
	grid := calendar.Month(now.Year(), now.Month())
	return c.Send(textAskDeadline, grid.Markup())
}

// handleDeadline drops stray text and photos: the deadline is collected
// exclusively through the calendar callbacks.
func (w *Wizard) handleDeadline(tele.Context, Session) error {
	return nil
}

func (w *Wizard) handleExecutor(c tele.Context, s Session) error {
	text := c.Text()
	if isPhoto(c) {
		return nil
	}
	if !tasks.ValidExecutor(text) {
		// The failing field is re-requested; the draft keeps its progress.
		return c.Send(textBadExecutor, executorKeyboard())
	}
	s.Data.Executor = text
	s.Step = StepPhoto
	w.sessions.Set(c.Chat().ID, s)
	return c.Send(textAskPhoto, keyboard.ReplyButtons([]string{DoneSentinel}))
}

func (w *Wizard) handlePhoto(c tele.Context, s Session) error {
	if isPhoto(c) {
		// Telebot exposes only the largest size variant of the photo.
		fileID := c.Message().Photo.FileID
		w.sessions.Update(c.Chat().ID, func(s *Session) {
			s.Data.Photos = append(s.Data.Photos, fileID)
		})
		return tghelpers.SendText(c, textPhotoAdded)
	}
	if c.Text() != DoneSentinel {
		return nil
	}
	return w.finish(c, s)
}

func (w *Wizard) finish(c tele.Context, s Session) error {
	ctx := tghelpers.BuildContext(c)
	id, err := w.repo.Create(ctx, s.Data)
	if err != nil {
		// The session stays so the user may retry the sentinel.
		logger.Error(ctx, "wizard", "task.create.fail",
			slog.String("status", "fail"),
			slog.String("executor", s.Data.Executor),
			slog.String("err", err.Error()),
		)
		_ = tghelpers.SendText(c, textRequestFailed)
		return err
	}
	w.sessions.Clear(c.Chat().ID)
	logger.Info(ctx, "wizard", "task.created",
		slog.String("status", "ok"),
		slog.Int64("task_id", id),
		slog.String("executor", s.Data.Executor),
		slog.Int("photos", len(s.Data.Photos)),
	)
	return c.Send(textCreated, keyboard.RemoveKeyboard())
}

// HandleDate consumes a calendar date selection, stores the deadline and
// advances to the executor step. The calendar message is discarded.
func (w *Wizard) HandleDate(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	s, ok := w.sessions.Get(chat.ID)
	if !ok || s.Step != StepDeadline {
		return c.Respond()
	}
	picked, err := calendar.ParseDate(callbacks.CallbackPayload(c))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textRequestFailed})
	}
	s.Data.Deadline = picked.Format(tasks.DeadlineLayout)
	s.Step = StepExecutor
	w.sessions.Set(chat.ID, s)

	_ = c.Respond(&tele.CallbackResponse{Text: s.Data.Deadline})
	_ = c.Delete()
	return c.Send(textAskExecutor, executorKeyboard())
}

// HandleNav re-renders the calendar keyboard in place for the requested
// month. Navigation never touches the wizard step.
func (w *Wizard) HandleNav(c tele.Context) error {
	year, month, err := calendar.ParseNav(callbacks.CallbackPayload(c))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textRequestFailed})
	}
	_ = c.Respond()
	return c.Edit(calendar.Month(year, month).Markup())
}

// HandleIgnore answers inert calendar cells without doing anything.
func (w *Wizard) HandleIgnore(c tele.Context) error {
	return c.Respond()
}

func isPhoto(c tele.Context) bool {
	m := c.Message()
	return m != nil && m.Photo != nil
}

func executorKeyboard() *tele.ReplyMarkup {
	rows := make([][]string, 0, (len(tasks.Executors)+1)/2)
	for i := 0; i < len(tasks.Executors); i += 2 {
		end := i + 2
		if end > len(tasks.Executors) {
			end = len(tasks.Executors)
		}
		rows = append(rows, tasks.Executors[i:end])
	}
	return keyboard.ReplyButtons(rows...)
}
