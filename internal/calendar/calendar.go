package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"holidaze/internal/booking"
)

// Classifier reports how a day renders in a date picker.
type Classifier interface {
	ClassifyDay(day time.Time, picker booking.Picker) booking.DayClass
}

// Day is one cell of the month grid.
type Day struct {
	booking.DayClass
	Date    time.Time
	InMonth bool
}

// Grid is a Monday-first month view.
type Grid struct {
	Year  int
	Month time.Month
	Weeks [][7]Day
}

// Month builds the grid for year/month. Leading and trailing cells belong
// to the neighbouring months and have InMonth false.
func Month(year int, month time.Month, c Classifier, picker booking.Picker) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	weekdayOffset := int(first.Weekday())
	if weekdayOffset == 0 {
		weekdayOffset = 7 // make Monday-first grid
	}
	start := first.AddDate(0, 0, -(weekdayOffset - 1))
	last := first.AddDate(0, 1, -1)

	grid := Grid{Year: year, Month: month}
	for cur := start; !cur.After(last); {
		var week [7]Day
		for i := range week {
			week[i] = Day{
				DayClass: c.ClassifyDay(cur, picker),
				Date:     cur,
				InMonth:  cur.Month() == month,
			}
			cur = cur.AddDate(0, 0, 1)
		}
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q; expected YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// Render writes the grid as text. Marks: * selected, x booked,
// . unavailable.
func Render(w io.Writer, g Grid) error {
	var b strings.Builder
	title := fmt.Sprintf("%s %d", g.Month, g.Year)
	fmt.Fprintf(&b, "%*s\n", (28+len(title))/2, title)
	b.WriteString("Mo  Tu  We  Th  Fr  Sa  Su\n")

	for _, week := range g.Weeks {
		cells := make([]string, 0, 7)
		for _, d := range week {
			if !d.InMonth {
				cells = append(cells, "   ")
				continue
			}
			cells = append(cells, fmt.Sprintf("%2d%s", d.Date.Day(), mark(d)))
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
		b.WriteByte('\n')
	}
	b.WriteString("* selected  x booked  . unavailable\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func mark(d Day) string {
	switch {
	case d.Booked:
		return "x"
	case d.InRange:
		return "*"
	case !d.Selectable:
		return "."
	default:
		return " "
	}
}
