package models

import (
	"time"

	"github.com/google/uuid"
)

// Read-side projections for joined queries. These are scanned directly from
// aggregate SQL and never written back.

type BorrowedBook struct {
	BorrowID      uuid.UUID  `gorm:"column:borrow_id" json:"borrow_id"`
	BookID        uuid.UUID  `gorm:"column:book_id" json:"book_id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Category      string     `json:"category"`
	ISBN          string     `gorm:"column:isbn" json:"isbn"`
	CoverImage    string     `json:"cover_image"`
	BorrowDate    time.Time  `json:"borrow_date"`
	DueDate       time.Time  `json:"due_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	IsReturned    bool       `json:"is_returned"`
	IsOverdue     bool       `json:"is_overdue"`
	PenaltyAmount float64    `json:"penalty_amount"`
	DaysOverdue   int        `gorm:"-" json:"days_overdue"`
}

type ActiveLoan struct {
	BorrowID      uuid.UUID `gorm:"column:borrow_id" json:"borrow_id"`
	BorrowDate    time.Time `json:"borrow_date"`
	DueDate       time.Time `json:"due_date"`
	PenaltyAmount float64   `json:"penalty_amount"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	ISBN          string    `gorm:"column:isbn" json:"isbn"`
	CollegeID     string    `json:"college_id"`
	StudentName   string    `json:"student_name"`
	StudentEmail  string    `json:"student_email"`
	DaysOverdue   int       `gorm:"-" json:"days_overdue"`
}

type StudentSummary struct {
	ID               uuid.UUID `json:"id"`
	CollegeID        string    `json:"college_id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	Course           string    `json:"course"`
	IsActive         bool      `json:"is_active"`
	RegistrationDate time.Time `json:"registration_date"`
	TotalBorrowed    int       `json:"total_borrowed"`
	TotalReturned    int       `json:"total_returned"`
	PenaltyAmount    float64   `json:"penalty_amount"`
	CurrentBorrowed  int       `gorm:"column:current_borrowed" json:"current_borrowed"`
}

type PenaltyDetail struct {
	ID            uuid.UUID  `json:"id"`
	PenaltyAmount float64    `json:"penalty_amount"`
	PenaltyDate   time.Time  `json:"penalty_date"`
	IsPaid        bool       `json:"is_paid"`
	PaymentDate   *time.Time `json:"payment_date"`
	Notes         string     `json:"notes"`
	CollegeID     string     `json:"college_id"`
	StudentName   string     `json:"student_name"`
	StudentEmail  string     `json:"student_email"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
}

type TrendingBook struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	CoverImage  string    `json:"cover_image"`
	Description string    `json:"description"`
	BorrowCount int       `gorm:"column:borrow_count" json:"borrow_count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type DashboardStats struct {
	TotalBooks     int64   `json:"totalBooks"`
	TotalStudents  int64   `json:"totalStudents"`
	TotalBorrowed  int64   `json:"totalBorrowed"`
	TotalOverdue   int64   `json:"totalOverdue"`
	TotalPenalties float64 `json:"totalPenalties"`
}

type LibraryReport struct {
	TotalBooks           int64           `json:"totalBooks"`
	TotalStudents        int64           `json:"totalStudents"`
	BooksIssued          int64           `json:"booksIssued"`
	OverdueBooks         int64           `json:"overdueBooks"`
	TotalPenalties       float64         `json:"totalPenalties"`
	CategoryDistribution []CategoryCount `json:"categoryDistribution"`
	TopBorrowedBooks     []TrendingBook  `json:"topBorrowedBooks"`
}
