package services

import "time"

const (
	// PenaltyPerDay is the amount (in currency units) charged per calendar day
	// a borrow record remains open past its due date.
	PenaltyPerDay = 5.0

	// MaxOpenBorrows is the number of unreturned borrow records a student may
	// hold at once.
	MaxOpenBorrows = 3
)

// utcMidnight truncates a timestamp to midnight UTC. Due dates are date-only
// values; every comparison against them must use the same truncation.
func utcMidnight(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// DaysOverdue computes how many whole calendar days lie between the due date
// and the given moment, never negative. Both timestamps are truncated to
// midnight UTC, so a return later the same calendar day as the due date is
// not overdue. UTC is the one timezone convention used for all day arithmetic.
func DaysOverdue(dueDate, at time.Time) int {
	days := int(utcMidnight(at).Sub(utcMidnight(dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// OverduePenalty is the pure accrual function: whole days overdue times the
// daily rate, zero when returned on or before the due date. It is evaluated
// exactly once per borrow record, at return time; the stored amount is
// authoritative afterwards.
func OverduePenalty(dueDate, returnedAt time.Time, ratePerDay float64) float64 {
	return float64(DaysOverdue(dueDate, returnedAt)) * ratePerDay
}
