package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayCells(g Grid) []Cell {
	var out []Cell
	for _, week := range g.Weeks {
		for _, c := range week {
			if c.Unique == UniqueDate {
				out = append(out, c)
			}
		}
	}
	return out
}

func TestMonthGridShape(t *testing.T) {
	for _, tc := range []struct {
		year  int
		month time.Month
		days  int
	}{
		{2024, time.February, 29}, // leap year
		{2023, time.February, 28},
		{2024, time.March, 31},
		{2024, time.April, 30},
		{2100, time.February, 28}, // century, not leap
		{2000, time.February, 29}, // divisible by 400, leap
	} {
		g := Month(tc.year, tc.month)
		for _, week := range g.Weeks {
			assert.Len(t, week, 7)
		}
		assert.Len(t, dayCells(g), tc.days, "%d-%d", tc.year, tc.month)
	}
}

func TestMonthMondayFirstOffset(t *testing.T) {
	// March 2024 starts on a Friday: four leading blanks, day 1 at index 4.
	g := Month(2024, time.March)
	week := g.Weeks[0]
	for i := 0; i < 4; i++ {
		assert.Equal(t, UniqueIgnore, week[i].Unique)
	}
	assert.Equal(t, "1", week[4].Label)
	assert.Equal(t, UniqueDate, week[4].Unique)

	// September 2025 starts on a Monday: no leading blanks.
	g = Month(2025, time.September)
	assert.Equal(t, "1", g.Weeks[0][0].Label)
}

func TestMonthDateTokens(t *testing.T) {
	g := Month(2024, time.March)
	cells := dayCells(g)
	require.NotEmpty(t, cells)
	assert.Equal(t, "2024-03-01", cells[0].Payload)
	assert.Equal(t, "2024-03-15", cells[14].Payload)

	picked, err := ParseDate(cells[14].Payload)
	require.NoError(t, err)
	assert.Equal(t, "15.03.2024", picked.Format("02.01.2006"))
}

func TestMonthHeaderAndWeekdaysInert(t *testing.T) {
	g := Month(2024, time.March)
	assert.Equal(t, "Март 2024", g.Header.Label)
	assert.Equal(t, UniqueIgnore, g.Header.Unique)
	for _, c := range g.Weekdays {
		assert.Equal(t, UniqueIgnore, c.Unique)
	}
	assert.Equal(t, "Пн", g.Weekdays[0].Label)
	assert.Equal(t, "Вс", g.Weekdays[6].Label)
}

func TestNavigationYearRollover(t *testing.T) {
	g := Month(2025, time.January)
	assert.Equal(t, "2024-12", g.Nav[0].Payload)
	assert.Equal(t, "2025-02", g.Nav[1].Payload)

	g = Month(2024, time.December)
	assert.Equal(t, "2024-11", g.Nav[0].Payload)
	assert.Equal(t, "2025-01", g.Nav[1].Payload)

	y, m, err := ParseNav(g.Nav[1].Payload)
	require.NoError(t, err)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.January, m)
}

func TestAddMonth(t *testing.T) {
	y, m := AddMonth(2025, time.January, -1)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.December, m)

	y, m = AddMonth(2024, time.December, +1)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.January, m)
}

func TestParseBadTokens(t *testing.T) {
	_, err := ParseDate("not-a-date")
	assert.Error(t, err)
	_, _, err = ParseNav("2024-13")
	assert.Error(t, err)
}

func TestMarkupLayout(t *testing.T) {
	g := Month(2024, time.March)
	mk := g.Markup()
	require.NotNil(t, mk)
	// header + weekday labels + weeks + navigation
	require.Len(t, mk.InlineKeyboard, len(g.Weeks)+3)
	assert.Len(t, mk.InlineKeyboard[0], 1)
	assert.Len(t, mk.InlineKeyboard[1], 7)
	assert.Len(t, mk.InlineKeyboard[len(mk.InlineKeyboard)-1], 2)
}
