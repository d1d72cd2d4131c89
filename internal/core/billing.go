package core

import "time"

// Defaults applied when a credit card has no billing configuration stored.
const (
	DefaultClosingDay = 1
	DefaultDueDay     = 10
)

// StatementPeriod is one credit-card billing window. A transaction dated in
// [Start, Close] (inclusive both ends) belongs to the statement; payment is
// expected by Due.
type StatementPeriod struct {
	Start time.Time
	Close time.Time
	Due   time.Time
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay limits day to what the month actually has (Feb 31 -> Feb 28/29).
func ClampDay(day, year int, month time.Month) int {
	if last := DaysInMonth(year, month); day > last {
		return last
	}
	return day
}

// AddMonthsClamped moves t by the given number of calendar months keeping the
// day-of-month, clamped to the target month's length. Unlike time.AddDate it
// never normalizes into the following month (Jan 31 + 1 month = Feb 28/29,
// not Mar 2/3).
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) - 1 + months
	year += m / 12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	month = time.Month(m + 1)
	day = ClampDay(day, year, month)
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// StatementForMonth computes the billing window whose close falls in the
// given month. Zero closingDay/dueDay fall back to the defaults. The window
// closes on the (clamped) closing day at 23:59:59 UTC and starts the day
// after the previous close. When the due day precedes the closing day the
// payment lands in the month after the close.
func StatementForMonth(closingDay, dueDay, year int, month time.Month) StatementPeriod {
	if closingDay == 0 {
		closingDay = DefaultClosingDay
	}
	if dueDay == 0 {
		dueDay = DefaultDueDay
	}

	safeClosingDay := ClampDay(closingDay, year, month)
	close := time.Date(year, month, safeClosingDay, 23, 59, 59, 0, time.UTC)
	start := AddMonthsClamped(close, -1).AddDate(0, 0, 1)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	dueYear, dueMonth := year, month
	if dueDay < closingDay {
		// statement closes late in the cycle, payment is due early next cycle
		dueMonth++
		if dueMonth > time.December {
			dueMonth = time.January
			dueYear++
		}
	}
	due := time.Date(dueYear, dueMonth, ClampDay(dueDay, dueYear, dueMonth), 0, 0, 0, 0, time.UTC)

	return StatementPeriod{Start: start, Close: close, Due: due}
}

// OpenStatementMonth resolves which month's statement is currently open. Once
// today reaches the (clamped) closing day the current cycle has closed, so the
// statement shown rolls forward one month.
func OpenStatementMonth(closingDay int, now time.Time) (int, time.Month) {
	if closingDay == 0 {
		closingDay = DefaultClosingDay
	}
	year, month, day := now.UTC().Date()
	if day >= ClampDay(closingDay, year, month) {
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return year, month
}
