// Package calendar renders an inline-keyboard month grid used to pick a
// task deadline. Generation is pure: the same (year, month) always yields
// the same grid.
package calendar

import (
	"fmt"
	"strconv"
	"time"

	"taskbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Callback unique keys carried by calendar buttons.
const (
	UniqueDate   = "date"
	UniquePrev   = "prevmonth"
	UniqueNext   = "nextmonth"
	UniqueIgnore = "ignore"
)

// Payload formats for date and navigation tokens.
const (
	datePayloadLayout = "2006-01-02"
	navPayloadLayout  = "2006-01"
)

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

var weekdayLabels = [7]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// Cell is a single calendar button. Inert cells carry UniqueIgnore.
type Cell struct {
	Label   string
	Unique  string
	Payload string
}

// Grid is a fully laid out calendar month.
type Grid struct {
	Year  int
	Month time.Month

	Header   Cell
	Weekdays [7]Cell
	Weeks    [][7]Cell
	Nav      [2]Cell
}

func inert(label string) Cell {
	return Cell{Label: label, Unique: UniqueIgnore}
}

// Month builds the grid for the given year and month. Weeks start on Monday;
// leading and trailing cells outside the month are inert blanks.
func Month(year int, month time.Month) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month is the last day of this one.
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	// time.Weekday starts on Sunday; rotate so Monday is index 0.
	offset := (int(first.Weekday()) + 6) % 7

	g := Grid{
		Year:   year,
		Month:  month,
		Header: inert(fmt.Sprintf("%s %d", monthNames[month-1], year)),
	}
	for i, label := range weekdayLabels {
		g.Weekdays[i] = inert(label)
	}

	var week [7]Cell
	col := 0
	for ; col < offset; col++ {
		week[col] = inert(" ")
	}
	for day := 1; day <= days; day++ {
		week[col] = Cell{
			Label:   strconv.Itoa(day),
			Unique:  UniqueDate,
			Payload: time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(datePayloadLayout),
		}
		col++
		if col == 7 {
			g.Weeks = append(g.Weeks, week)
			week = [7]Cell{}
			col = 0
		}
	}
	if col > 0 {
		for ; col < 7; col++ {
			week[col] = inert(" ")
		}
		g.Weeks = append(g.Weeks, week)
	}

	prevYear, prevMonth := AddMonth(year, month, -1)
	nextYear, nextMonth := AddMonth(year, month, +1)
	g.Nav = [2]Cell{
		{Label: "‹", Unique: UniquePrev, Payload: navPayload(prevYear, prevMonth)},
		{Label: "›", Unique: UniqueNext, Payload: navPayload(nextYear, nextMonth)},
	}
	return g
}

// AddMonth shifts (year, month) by delta months, rolling over year boundaries.
func AddMonth(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

func navPayload(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(navPayloadLayout)
}

// ParseDate decodes a date token payload produced by Month.
func ParseDate(payload string) (time.Time, error) {
	t, err := time.Parse(datePayloadLayout, payload)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar: bad date token %q: %w", payload, err)
	}
	return t, nil
}

// ParseNav decodes a navigation token payload produced by Month.
func ParseNav(payload string) (int, time.Month, error) {
	t, err := time.Parse(navPayloadLayout, payload)
	if err != nil {
		return 0, 0, fmt.Errorf("calendar: bad nav token %q: %w", payload, err)
	}
	return t.Year(), t.Month(), nil
}

// Markup converts the grid into an inline keyboard.
func (g Grid) Markup() *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(g.Weeks)+3)
	rows = append(rows, []keyboard.InlineBtn{btn(g.Header)})
	rows = append(rows, cellRow(g.Weekdays[:]))
	for _, week := range g.Weeks {
		rows = append(rows, cellRow(week[:]))
	}
	rows = append(rows, []keyboard.InlineBtn{btn(g.Nav[0]), btn(g.Nav[1])})
	return keyboard.InlineButtonsRows(rows...)
}

func cellRow(cells []Cell) []keyboard.InlineBtn {
	row := make([]keyboard.InlineBtn, len(cells))
	for i, c := range cells {
		row[i] = btn(c)
	}
	return row
}

func btn(c Cell) keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: c.Label, Unique: c.Unique, Data: c.Payload}
}
