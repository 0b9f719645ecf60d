package services

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuslibrary/internal/models"
	"campuslibrary/internal/repositories"
)

// AdminService is the read-mostly query surface behind the admin dashboard,
// plus the penalty-clearing override.
type AdminService interface {
	DashboardStats() (*models.DashboardStats, error)
	ListStudents() ([]models.StudentSummary, error)
	ToggleStudentStatus(studentID uuid.UUID) error
	ListActiveLoans() ([]models.ActiveLoan, error)
	ListPenalties() ([]models.PenaltyDetail, error)
	ClearPenalties(studentID uuid.UUID) error
	LibraryReport() (*models.LibraryReport, error)
}

type adminService struct {
	db          Transactor
	bookRepo    repositories.BookRepository
	studentRepo repositories.StudentRepository
	borrowRepo  repositories.BorrowRepository
	penaltyRepo repositories.PenaltyRepository
	now         Clock
}

func NewAdminService(
	db Transactor,
	bookRepo repositories.BookRepository,
	studentRepo repositories.StudentRepository,
	borrowRepo repositories.BorrowRepository,
	penaltyRepo repositories.PenaltyRepository,
	now Clock,
) AdminService {
	if now == nil {
		now = defaultClock
	}
	return &adminService{
		db:          db,
		bookRepo:    bookRepo,
		studentRepo: studentRepo,
		borrowRepo:  borrowRepo,
		penaltyRepo: penaltyRepo,
		now:         now,
	}
}

// DashboardStats aggregates the headline counts. Overdue is computed on read
// against today's date, not by any background sweep.
func (s *adminService) DashboardStats() (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	var err error

	if stats.TotalBooks, err = s.bookRepo.Count(nil); err != nil {
		return nil, err
	}
	if stats.TotalStudents, err = s.studentRepo.CountActive(nil); err != nil {
		return nil, err
	}
	if stats.TotalBorrowed, err = s.borrowRepo.CountOpen(nil); err != nil {
		return nil, err
	}
	// due_date is date-only; compare against midnight so a loan due today is
	// not yet overdue, matching DaysOverdue.
	if stats.TotalOverdue, err = s.borrowRepo.CountOverdue(nil, utcMidnight(s.now())); err != nil {
		return nil, err
	}
	if stats.TotalPenalties, err = s.penaltyRepo.SumUnpaid(nil); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *adminService) ListStudents() ([]models.StudentSummary, error) {
	return s.studentRepo.ListSummaries(nil)
}

func (s *adminService) ToggleStudentStatus(studentID uuid.UUID) error {
	rows, err := s.studentRepo.ToggleActive(nil, studentID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStudentNotFound
	}
	log.Printf("[INFO] ToggleStudentStatus: status toggled for student %s", studentID)
	return nil
}

func (s *adminService) ListActiveLoans() ([]models.ActiveLoan, error) {
	rows, err := s.borrowRepo.ListAllOpen(nil)
	if err != nil {
		return nil, err
	}
	today := s.now()
	for i := range rows {
		rows[i].DaysOverdue = DaysOverdue(rows[i].DueDate, today)
	}
	return rows, nil
}

func (s *adminService) ListPenalties() ([]models.PenaltyDetail, error) {
	return s.penaltyRepo.ListDetails(nil)
}

// ClearPenalties marks every unpaid penalty record for the student paid and
// zeroes the student's aggregate, as one transaction. It is an
// administrative override; no payment is verified.
func (s *adminService) ClearPenalties(studentID uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.penaltyRepo.MarkAllPaidForStudent(tx, studentID, s.now()); err != nil {
			log.Printf("[ERROR] ClearPenalties: failed to mark penalties paid for student %s: %v", studentID, err)
			return err
		}
		if err := s.studentRepo.ClearPenaltyAmount(tx, studentID); err != nil {
			log.Printf("[ERROR] ClearPenalties: failed to zero penalty amount for student %s: %v", studentID, err)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("[INFO] ClearPenalties: penalties cleared for student %s", studentID)
	return nil
}

func (s *adminService) LibraryReport() (*models.LibraryReport, error) {
	stats, err := s.DashboardStats()
	if err != nil {
		return nil, err
	}

	categories, err := s.bookRepo.CategoryCounts(nil)
	if err != nil {
		return nil, err
	}
	top, err := s.bookRepo.ListTrending(nil, trendingLimit)
	if err != nil {
		return nil, err
	}

	return &models.LibraryReport{
		TotalBooks:           stats.TotalBooks,
		TotalStudents:        stats.TotalStudents,
		BooksIssued:          stats.TotalBorrowed,
		OverdueBooks:         stats.TotalOverdue,
		TotalPenalties:       stats.TotalPenalties,
		CategoryDistribution: categories,
		TopBorrowedBooks:     top,
	}, nil
}
