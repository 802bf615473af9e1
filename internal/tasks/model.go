package tasks

import (
	"time"

	"github.com/lib/pq"
)

// DeadlineLayout is the user-facing deadline format (DD.MM.YYYY).
const DeadlineLayout = "02.01.2006"

// StatusNew is assigned to every task at creation. The status domain is
// deliberately open: any label written by a status action is stored as-is.
const StatusNew = "Новая"

// Executors is the closed set of assignee labels. Wizard input must match
// one of them exactly, case-sensitive.
var Executors = []string{"МУП", "УК", "Подрядчик", "Диспетчер"}

// ValidExecutor reports whether label belongs to the executor set.
func ValidExecutor(label string) bool {
	for _, e := range Executors {
		if e == label {
			return true
		}
	}
	return false
}

// Task is a persistent task record. After creation only Status mutates;
// every other field is written once by the repository.
type Task struct {
	ID          int64          `db:"id"`
	ChatID      int64          `db:"chat_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Deadline    string         `db:"deadline"`
	Executor    string         `db:"executor"`
	Status      string         `db:"status"`
	Photos      pq.StringArray `db:"photos"`
	CreatedAt   time.Time      `db:"created_at"`
}

// Draft is a partially built task accumulated by the creation wizard.
type Draft struct {
	ChatID      int64
	Title       string
	Description string
	Deadline    string
	Executor    string
	Photos      []string
}
