package services

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// Transactor runs a function inside one atomic database transaction: the
// callback's statements either all commit or are all rolled back. *gorm.DB
// satisfies this directly; tests substitute a fake that snapshots and
// restores in-memory state.
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// Clock supplies "now" for due-date comparison and timestamping. Injected so
// tests can pin time; a nil Clock falls back to time.Now in UTC.
type Clock func() time.Time

func defaultClock() time.Time {
	return time.Now().UTC()
}
