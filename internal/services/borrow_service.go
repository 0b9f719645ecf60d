package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuslibrary/internal/models"
	"campuslibrary/internal/repositories"
)

// ─── Borrow Transaction Manager ───────────────────────────────────────────────

// BorrowService owns every mutation of book availability and student borrow
// counters. All writes happen inside a single transaction with the book row
// locked for the duration; nothing is retried automatically; a failed call
// must be reissued by the client.
type BorrowService interface {
	BorrowBook(studentID, bookID uuid.UUID, dueDate time.Time) (*models.BorrowRecord, error)
	ReturnBook(borrowID uuid.UUID) (*models.BorrowRecord, error)
	ListBorrowed(studentID uuid.UUID) ([]models.BorrowedBook, error)
	BorrowHistory(studentID uuid.UUID) ([]models.BorrowedBook, error)
}

const borrowHistoryLimit = 50

type borrowService struct {
	db          Transactor
	bookRepo    repositories.BookRepository
	studentRepo repositories.StudentRepository
	borrowRepo  repositories.BorrowRepository
	penaltyRepo repositories.PenaltyRepository
	now         Clock
}

// NewBorrowService wires up the borrow workflow. A nil clock defaults to
// time.Now in UTC.
func NewBorrowService(
	db Transactor,
	bookRepo repositories.BookRepository,
	studentRepo repositories.StudentRepository,
	borrowRepo repositories.BorrowRepository,
	penaltyRepo repositories.PenaltyRepository,
	now Clock,
) BorrowService {
	if now == nil {
		now = defaultClock
	}
	return &borrowService{
		db:          db,
		bookRepo:    bookRepo,
		studentRepo: studentRepo,
		borrowRepo:  borrowRepo,
		penaltyRepo: penaltyRepo,
		now:         now,
	}
}

// ─── Borrow ───────────────────────────────────────────────────────────────────

// BorrowBook implements the transactional borrow flow.
//
// Preconditions checked in order, with the book row locked (FOR UPDATE):
//  1. Book exists.
//  2. available_quantity > 0.
//  3. Student holds fewer than MaxOpenBorrows open records.
//
// On success a borrow record is inserted, available_quantity is decremented
// and the student's total_borrowed is incremented, all as one unit.
func (s *borrowService) BorrowBook(studentID, bookID uuid.UUID, dueDate time.Time) (*models.BorrowRecord, error) {
	var created *models.BorrowRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		book, err := s.bookRepo.GetByIDForUpdate(tx, bookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		if book.AvailableQuantity <= 0 {
			return ErrBookUnavailable
		}

		openCount, err := s.borrowRepo.CountOpenByStudent(tx, studentID)
		if err != nil {
			log.Printf("[ERROR] BorrowBook: failed to count open borrows for student %s: %v", studentID, err)
			return err
		}
		if openCount >= MaxOpenBorrows {
			return ErrBorrowLimitExceeded
		}

		record := &models.BorrowRecord{
			StudentID:  studentID,
			BookID:     bookID,
			BorrowDate: s.now(),
			DueDate:    dueDate,
		}
		if err := s.borrowRepo.Create(tx, record); err != nil {
			log.Printf("[ERROR] BorrowBook: failed to create borrow record: %v", err)
			return err
		}

		if err := s.bookRepo.AdjustAvailable(tx, bookID, -1); err != nil {
			log.Printf("[ERROR] BorrowBook: failed to decrement availability for book %s: %v", bookID, err)
			return err
		}

		if err := s.studentRepo.IncrementBorrowed(tx, studentID); err != nil {
			log.Printf("[ERROR] BorrowBook: failed to update student %s counters: %v", studentID, err)
			return err
		}

		created = record
		return nil
	})

	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] BorrowBook: record %s created for student %s / book %s, due %s",
		created.ID, studentID, bookID, dueDate.Format("2006-01-02"))
	return created, nil
}

// ─── Return ───────────────────────────────────────────────────────────────────

// ReturnBook implements the transactional return flow.
//
// Steps (all in one transaction):
//  1. Lock the open borrow record (FOR UPDATE); a missing record and an
//     already-returned one fail identically.
//  2. Compute the overdue penalty from due date vs. today.
//  3. Mark the record returned with return timestamp, overdue flag and penalty.
//  4. Restore the book's available_quantity.
//  5. Bump the student's total_returned and aggregate penalty amount.
//  6. Insert a penalty record when the penalty is positive.
func (s *borrowService) ReturnBook(borrowID uuid.UUID) (*models.BorrowRecord, error) {
	var updated *models.BorrowRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		record, err := s.borrowRepo.GetOpenByIDForUpdate(tx, borrowID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowNotFound
			}
			return err
		}

		returnedAt := s.now()
		penalty := OverduePenalty(record.DueDate, returnedAt, PenaltyPerDay)
		overdue := penalty > 0

		if err := s.borrowRepo.MarkReturned(tx, record.ID, returnedAt, overdue, penalty); err != nil {
			log.Printf("[ERROR] ReturnBook: failed to mark record %s returned: %v", borrowID, err)
			return err
		}

		if err := s.bookRepo.AdjustAvailable(tx, record.BookID, 1); err != nil {
			log.Printf("[ERROR] ReturnBook: failed to restore availability for book %s: %v", record.BookID, err)
			return err
		}

		if err := s.studentRepo.RecordReturn(tx, record.StudentID, penalty); err != nil {
			log.Printf("[ERROR] ReturnBook: failed to update student %s counters: %v", record.StudentID, err)
			return err
		}

		if penalty > 0 {
			penaltyRecord := &models.PenaltyRecord{
				StudentID:      record.StudentID,
				BorrowRecordID: record.ID,
				PenaltyType:    models.PenaltyTypeOverdue,
				PenaltyAmount:  penalty,
				PenaltyDate:    returnedAt,
				Notes:          "Late return penalty",
			}
			if err := s.penaltyRepo.Create(tx, penaltyRecord); err != nil {
				log.Printf("[ERROR] ReturnBook: failed to record penalty for record %s: %v", borrowID, err)
				return err
			}
		}

		record.IsReturned = true
		record.ReturnDate = &returnedAt
		record.IsOverdue = overdue
		record.PenaltyAmount = penalty
		updated = record
		return nil
	})

	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] ReturnBook: record %s returned (student=%s, book=%s), penalty=%.2f",
		updated.ID, updated.StudentID, updated.BookID, updated.PenaltyAmount)
	return updated, nil
}

// ─── Queries ──────────────────────────────────────────────────────────────────

// ListBorrowed returns the student's open borrow records joined with book
// data. Overdue days are computed on read, never stored for open records.
func (s *borrowService) ListBorrowed(studentID uuid.UUID) ([]models.BorrowedBook, error) {
	rows, err := s.borrowRepo.ListOpenByStudent(nil, studentID)
	if err != nil {
		return nil, err
	}
	today := s.now()
	for i := range rows {
		rows[i].DaysOverdue = DaysOverdue(rows[i].DueDate, today)
	}
	return rows, nil
}

// BorrowHistory returns the student's most recent borrow records, open and
// returned, newest first.
func (s *borrowService) BorrowHistory(studentID uuid.UUID) ([]models.BorrowedBook, error) {
	rows, err := s.borrowRepo.ListHistoryByStudent(nil, studentID, borrowHistoryLimit)
	if err != nil {
		return nil, err
	}
	today := s.now()
	for i := range rows {
		if !rows[i].IsReturned {
			rows[i].DaysOverdue = DaysOverdue(rows[i].DueDate, today)
		}
	}
	return rows, nil
}
