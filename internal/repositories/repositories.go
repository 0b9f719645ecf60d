package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campuslibrary/internal/models"
)

// Every method takes the transaction handle as its first argument so services
// can run multiple repository calls inside one db.Transaction closure. A nil
// handle falls back to the repository's own connection.

type StudentRepository interface {
	Create(db *gorm.DB, student *models.Student) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Student, error)
	GetByEmail(db *gorm.DB, email string) (*models.Student, error)
	ExistsByEmailOrCollegeID(db *gorm.DB, email, collegeID string) (bool, error)
	IncrementBorrowed(db *gorm.DB, id uuid.UUID) error
	RecordReturn(db *gorm.DB, id uuid.UUID, penalty float64) error
	ClearPenaltyAmount(db *gorm.DB, id uuid.UUID) error
	ToggleActive(db *gorm.DB, id uuid.UUID) (int64, error)
	ListSummaries(db *gorm.DB) ([]models.StudentSummary, error)
	CountActive(db *gorm.DB) (int64, error)
}

type AdminUserRepository interface {
	GetByEmail(db *gorm.DB, email string) (*models.AdminUser, error)
	UpdateLastLogin(db *gorm.DB, id uuid.UUID, at time.Time) error
}

type BookRepository interface {
	Create(db *gorm.DB, book *models.Book) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Book, error)
	GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.Book, error)
	List(db *gorm.DB) ([]models.Book, error)
	Update(db *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(db *gorm.DB, id uuid.UUID) error
	AdjustAvailable(db *gorm.DB, id uuid.UUID, delta int) error
	Count(db *gorm.DB) (int64, error)
	ListTrending(db *gorm.DB, limit int) ([]models.TrendingBook, error)
	CategoryCounts(db *gorm.DB) ([]models.CategoryCount, error)
}

type BorrowRepository interface {
	Create(db *gorm.DB, record *models.BorrowRecord) error
	GetOpenByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.BorrowRecord, error)
	MarkReturned(db *gorm.DB, id uuid.UUID, returnedAt time.Time, overdue bool, penalty float64) error
	CountOpenByStudent(db *gorm.DB, studentID uuid.UUID) (int64, error)
	CountOpenByBook(db *gorm.DB, bookID uuid.UUID) (int64, error)
	ListOpenByStudent(db *gorm.DB, studentID uuid.UUID) ([]models.BorrowedBook, error)
	ListHistoryByStudent(db *gorm.DB, studentID uuid.UUID, limit int) ([]models.BorrowedBook, error)
	ListAllOpen(db *gorm.DB) ([]models.ActiveLoan, error)
	CountOpen(db *gorm.DB) (int64, error)
	CountOverdue(db *gorm.DB, today time.Time) (int64, error)
}

type PenaltyRepository interface {
	Create(db *gorm.DB, record *models.PenaltyRecord) error
	MarkAllPaidForStudent(db *gorm.DB, studentID uuid.UUID, paidAt time.Time) error
	SumUnpaid(db *gorm.DB) (float64, error)
	ListDetails(db *gorm.DB) ([]models.PenaltyDetail, error)
}

type FavoriteRepository interface {
	GetByStudentAndBook(db *gorm.DB, studentID, bookID uuid.UUID) (*models.Favorite, error)
	Create(db *gorm.DB, favorite *models.Favorite) error
	Delete(db *gorm.DB, id uuid.UUID) error
	ListBooksByStudent(db *gorm.DB, studentID uuid.UUID) ([]models.Book, error)
}

// concrete implementations

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(db *gorm.DB, student *models.Student) error {
	if db == nil {
		db = r.db
	}
	return db.Create(student).Error
}

func (r *studentRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Student, error) {
	if db == nil {
		db = r.db
	}
	var student models.Student
	if err := db.First(&student, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) GetByEmail(db *gorm.DB, email string) (*models.Student, error) {
	if db == nil {
		db = r.db
	}
	var student models.Student
	if err := db.First(&student, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) ExistsByEmailOrCollegeID(db *gorm.DB, email, collegeID string) (bool, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.Student{}).
		Where("email = ? OR college_id = ?", email, collegeID).
		Count(&count).Error
	return count > 0, err
}

func (r *studentRepository) IncrementBorrowed(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Student{}).
		Where("id = ?", id).
		UpdateColumn("total_borrowed", gorm.Expr("total_borrowed + 1")).
		Error
}

func (r *studentRepository) RecordReturn(db *gorm.DB, id uuid.UUID, penalty float64) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Student{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"total_returned": gorm.Expr("total_returned + 1"),
			"penalty_amount": gorm.Expr("penalty_amount + ?", penalty),
		}).Error
}

func (r *studentRepository) ClearPenaltyAmount(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Student{}).
		Where("id = ?", id).
		UpdateColumn("penalty_amount", 0).
		Error
}

func (r *studentRepository) ToggleActive(db *gorm.DB, id uuid.UUID) (int64, error) {
	if db == nil {
		db = r.db
	}
	result := db.Model(&models.Student{}).
		Where("id = ?", id).
		UpdateColumn("is_active", gorm.Expr("NOT is_active"))
	return result.RowsAffected, result.Error
}

func (r *studentRepository) ListSummaries(db *gorm.DB) ([]models.StudentSummary, error) {
	if db == nil {
		db = r.db
	}
	var rows []models.StudentSummary
	err := db.Table("students s").
		Select("s.id, s.college_id, s.full_name, s.email, s.course, s.is_active, s.registration_date, s.total_borrowed, s.total_returned, s.penalty_amount, COUNT(br.id) AS current_borrowed").
		Joins("LEFT JOIN borrow_records br ON br.student_id = s.id AND br.is_returned = FALSE").
		Group("s.id").
		Order("s.registration_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *studentRepository) CountActive(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.Student{}).Where("is_active = TRUE").Count(&count).Error
	return count, err
}

type adminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

func (r *adminUserRepository) GetByEmail(db *gorm.DB, email string) (*models.AdminUser, error) {
	if db == nil {
		db = r.db
	}
	var admin models.AdminUser
	if err := db.First(&admin, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminUserRepository) UpdateLastLogin(db *gorm.DB, id uuid.UUID, at time.Time) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.AdminUser{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).
		Error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Create(book).Error
}

func (r *bookRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	if err := db.First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByIDForUpdate locks the book row (SELECT ... FOR UPDATE) so concurrent
// borrow/return transactions serialize their read-modify-write of
// available_quantity on the same book.
func (r *bookRepository) GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) List(db *gorm.DB) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	var books []models.Book
	if err := db.Order("title").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) Update(db *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Book{}).
		Where("id = ?", id).
		Updates(fields).
		Error
}

func (r *bookRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Book{}, "id = ?", id).Error
}

func (r *bookRepository) AdjustAvailable(db *gorm.DB, id uuid.UUID, delta int) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity + ?", delta)).
		Error
}

func (r *bookRepository) Count(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.Book{}).Count(&count).Error
	return count, err
}

func (r *bookRepository) ListTrending(db *gorm.DB, limit int) ([]models.TrendingBook, error) {
	if db == nil {
		db = r.db
	}
	var rows []models.TrendingBook
	err := db.Table("books b").
		Select("b.id, b.title, b.author, b.category, b.cover_image, b.description, COUNT(br.id) AS borrow_count").
		Joins("LEFT JOIN borrow_records br ON br.book_id = b.id").
		Group("b.id").
		Order("borrow_count DESC, b.title").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *bookRepository) CategoryCounts(db *gorm.DB) ([]models.CategoryCount, error) {
	if db == nil {
		db = r.db
	}
	var rows []models.CategoryCount
	err := db.Model(&models.Book{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type borrowRepository struct {
	db *gorm.DB
}

func NewBorrowRepository(db *gorm.DB) BorrowRepository {
	return &borrowRepository{db: db}
}

func (r *borrowRepository) Create(db *gorm.DB, record *models.BorrowRecord) error {
	if db == nil {
		db = r.db
	}
	return db.Create(record).Error
}

// GetOpenByIDForUpdate locks the open borrow record. A record that does not
// exist and one already returned are indistinguishable to the caller.
func (r *borrowRepository) GetOpenByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.BorrowRecord, error) {
	if db == nil {
		db = r.db
	}
	var record models.BorrowRecord
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_returned = FALSE", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *borrowRepository) MarkReturned(db *gorm.DB, id uuid.UUID, returnedAt time.Time, overdue bool, penalty float64) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.BorrowRecord{}).
		Where("id = ? AND is_returned = FALSE", id).
		Updates(map[string]interface{}{
			"is_returned":    true,
			"return_date":    returnedAt,
			"is_overdue":     overdue,
			"penalty_amount": penalty,
		}).Error
}

func (r *borrowRepository) CountOpenByStudent(db *gorm.DB, studentID uuid.UUID) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.BorrowRecord{}).
		Where("student_id = ? AND is_returned = FALSE", studentID).
		Count(&count).Error
	return count, err
}

func (r *borrowRepository) CountOpenByBook(db *gorm.DB, bookID uuid.UUID) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.BorrowRecord{}).
		Where("book_id = ? AND is_returned = FALSE", bookID).
		Count(&count).Error
	return count, err
}

func (r *borrowRepository) ListOpenByStudent(db *gorm.DB, studentID uuid.UUID) ([]models.BorrowedBook, error) {
	if db == nil {
		db = r.db
	}
	var rows []models.BorrowedBook
	err := db.Table("borrow_records br").
		Select("br.id AS borrow_id, b.id AS book_id, b.title, b.author, b.category, b.isbn, b.cover_image, br.borrow_date, br.due_date, br.is_returned, br.is_overdue, br.penalty_amount").
		Joins("JOIN books b ON br.book_id = b.id").
		Where("br.student_id = ? AND br.is_returned = FALSE", studentID).
		Order("br.borrow_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *borrowRepository) ListHistoryByStudent(db *gorm.DB, studentID uuid.UUID, limit int) ([]models.BorrowedBook, error) {
	if db == nil {
		db = r.db
	}
	var rows []models.BorrowedBook
	err := db.Table("borrow_records br").
		Select("br.id AS borrow_id, b.id AS book_id, b.title, b.author, b.category, b.isbn, b.cover_image, br.borrow_date, br.due_date, br.return_date, br.is_returned, br.is_overdue, br.penalty_amount").
		Joins("JOIN books b ON br.book_id = b.id").
		Where("br.student_id = ?", studentID).
		Order("br.borrow_date DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *borrowRepository) ListAllOpen(db *gorm.DB) ([]models.ActiveLoan, error) {
	if db == nil {
		db = r.db
	}
	var rows []models.ActiveLoan
	err := db.Table("borrow_records br").
		Select("br.id AS borrow_id, br.borrow_date, br.due_date, br.penalty_amount, b.title, b.author, b.isbn, s.college_id, s.full_name AS student_name, s.email AS student_email").
		Joins("JOIN books b ON br.book_id = b.id").
		Joins("JOIN students s ON br.student_id = s.id").
		Where("br.is_returned = FALSE").
		Order("br.borrow_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *borrowRepository) CountOpen(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.BorrowRecord{}).
		Where("is_returned = FALSE").
		Count(&count).Error
	return count, err
}

func (r *borrowRepository) CountOverdue(db *gorm.DB, today time.Time) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.BorrowRecord{}).
		Where("is_returned = FALSE AND due_date < ?", today).
		Count(&count).Error
	return count, err
}

type penaltyRepository struct {
	db *gorm.DB
}

func NewPenaltyRepository(db *gorm.DB) PenaltyRepository {
	return &penaltyRepository{db: db}
}

func (r *penaltyRepository) Create(db *gorm.DB, record *models.PenaltyRecord) error {
	if db == nil {
		db = r.db
	}
	return db.Create(record).Error
}

func (r *penaltyRepository) MarkAllPaidForStudent(db *gorm.DB, studentID uuid.UUID, paidAt time.Time) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.PenaltyRecord{}).
		Where("student_id = ? AND is_paid = FALSE", studentID).
		Updates(map[string]interface{}{
			"is_paid":      true,
			"payment_date": paidAt,
		}).Error
}

func (r *penaltyRepository) SumUnpaid(db *gorm.DB) (float64, error) {
	if db == nil {
		db = r.db
	}
	var total float64
	err := db.Model(&models.PenaltyRecord{}).
		Where("is_paid = FALSE").
		Select("COALESCE(SUM(penalty_amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *penaltyRepository) ListDetails(db *gorm.DB) ([]models.PenaltyDetail, error) {
	if db == nil {
		db = r.db
	}
	var rows []models.PenaltyDetail
	err := db.Table("penalty_records pr").
		Select("pr.id, pr.penalty_amount, pr.penalty_date, pr.is_paid, pr.payment_date, pr.notes, s.college_id, s.full_name AS student_name, s.email AS student_email, b.title, b.author").
		Joins("JOIN students s ON pr.student_id = s.id").
		Joins("JOIN borrow_records br ON pr.borrow_record_id = br.id").
		Joins("JOIN books b ON br.book_id = b.id").
		Order("pr.penalty_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) GetByStudentAndBook(db *gorm.DB, studentID, bookID uuid.UUID) (*models.Favorite, error) {
	if db == nil {
		db = r.db
	}
	var favorite models.Favorite
	err := db.Where("student_id = ? AND book_id = ?", studentID, bookID).First(&favorite).Error
	if err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) Create(db *gorm.DB, favorite *models.Favorite) error {
	if db == nil {
		db = r.db
	}
	return db.Create(favorite).Error
}

func (r *favoriteRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Favorite{}, "id = ?", id).Error
}

func (r *favoriteRepository) ListBooksByStudent(db *gorm.DB, studentID uuid.UUID) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	var books []models.Book
	err := db.Table("books b").
		Select("b.*").
		Joins("JOIN favorites f ON f.book_id = b.id").
		Where("f.student_id = ?", studentID).
		Order("f.added_date DESC").
		Scan(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}
