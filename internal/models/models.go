package models

import (
	"time"

	"github.com/google/uuid"
)

type PenaltyType string

const (
	PenaltyTypeOverdue PenaltyType = "overdue"
)

type Student struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CollegeID        string    `gorm:"size:50;uniqueIndex;not null" json:"college_id"`
	FullName         string    `gorm:"size:100;not null" json:"full_name"`
	Email            string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Course           string    `gorm:"size:100;not null" json:"course"`
	Password         string    `gorm:"size:255;not null" json:"-"`
	TotalBorrowed    int       `gorm:"not null;default:0" json:"total_borrowed"`
	TotalReturned    int       `gorm:"not null;default:0" json:"total_returned"`
	PenaltyAmount    float64   `gorm:"type:decimal(10,2);not null;default:0" json:"penalty_amount"`
	RegistrationDate time.Time `gorm:"not null;default:now()" json:"registration_date"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
}

type AdminUser struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"size:255;not null" json:"-"`
	FullName  string     `gorm:"size:100;not null" json:"full_name"`
	Role      string     `gorm:"size:50;not null;default:'admin'" json:"role"`
	LastLogin *time.Time `json:"last_login"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

type Book struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title             string    `gorm:"size:255;not null" json:"title"`
	Author            string    `gorm:"size:255;not null" json:"author"`
	Category          string    `gorm:"size:100;not null" json:"category"`
	ISBN              string    `gorm:"size:20;uniqueIndex;not null" json:"isbn"`
	CoverImage        string    `gorm:"type:text" json:"cover_image"`
	Description       string    `gorm:"type:text" json:"description"`
	TotalQuantity     int       `gorm:"not null;default:1" json:"total_quantity"`
	AvailableQuantity int       `gorm:"not null;default:1" json:"available_quantity"`
	DateAdded         time.Time `gorm:"not null;default:now()" json:"date_added"`
}

type BorrowRecord struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	Student       Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	BookID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"book_id"`
	Book          Book       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	BorrowDate    time.Time  `gorm:"not null" json:"borrow_date"`
	DueDate       time.Time  `gorm:"type:date;not null" json:"due_date"`
	ReturnDate    *time.Time `json:"return_date"`
	IsReturned    bool       `gorm:"not null;default:false;index" json:"is_returned"`
	IsOverdue     bool       `gorm:"not null;default:false" json:"is_overdue"`
	PenaltyAmount float64    `gorm:"type:decimal(10,2);not null;default:0" json:"penalty_amount"`
}

type PenaltyRecord struct {
	ID             uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"student_id"`
	Student        Student      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	BorrowRecordID uuid.UUID    `gorm:"type:uuid;not null;index" json:"borrow_record_id"`
	BorrowRecord   BorrowRecord `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PenaltyType    PenaltyType  `gorm:"size:50;not null" json:"penalty_type"`
	PenaltyAmount  float64      `gorm:"type:decimal(10,2);not null" json:"penalty_amount"`
	PenaltyDate    time.Time    `gorm:"not null;default:now()" json:"penalty_date"`
	IsPaid         bool         `gorm:"not null;default:false;index" json:"is_paid"`
	PaymentDate    *time.Time   `json:"payment_date"`
	Notes          string       `gorm:"type:text" json:"notes"`
}

type Favorite struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_student_book" json:"student_id"`
	Student   Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_student_book" json:"book_id"`
	Book      Book      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AddedDate time.Time `gorm:"not null;default:now()" json:"added_date"`
}
