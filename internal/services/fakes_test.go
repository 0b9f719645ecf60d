package services

import (
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuslibrary/internal/models"
)

// In-memory doubles for the repository layer. The fake transactor snapshots
// the store before running the closure and restores it on error, mirroring
// the commit/rollback contract of the real database; its mutex stands in for
// the row lock that serializes concurrent transactions.

type memStore struct {
	mu        sync.Mutex
	students  map[uuid.UUID]*models.Student
	books     map[uuid.UUID]*models.Book
	borrows   map[uuid.UUID]*models.BorrowRecord
	penalties map[uuid.UUID]*models.PenaltyRecord
	favorites map[uuid.UUID]*models.Favorite

	// failOn injects an error for a named repository step.
	failOn map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		students:  make(map[uuid.UUID]*models.Student),
		books:     make(map[uuid.UUID]*models.Book),
		borrows:   make(map[uuid.UUID]*models.BorrowRecord),
		penalties: make(map[uuid.UUID]*models.PenaltyRecord),
		favorites: make(map[uuid.UUID]*models.Favorite),
		failOn:    make(map[string]error),
	}
}

func (s *memStore) fail(step string) error {
	return s.failOn[step]
}

type storeSnapshot struct {
	students  map[uuid.UUID]models.Student
	books     map[uuid.UUID]models.Book
	borrows   map[uuid.UUID]models.BorrowRecord
	penalties map[uuid.UUID]models.PenaltyRecord
	favorites map[uuid.UUID]models.Favorite
}

func (s *memStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		students:  make(map[uuid.UUID]models.Student, len(s.students)),
		books:     make(map[uuid.UUID]models.Book, len(s.books)),
		borrows:   make(map[uuid.UUID]models.BorrowRecord, len(s.borrows)),
		penalties: make(map[uuid.UUID]models.PenaltyRecord, len(s.penalties)),
		favorites: make(map[uuid.UUID]models.Favorite, len(s.favorites)),
	}
	for id, v := range s.students {
		snap.students[id] = *v
	}
	for id, v := range s.books {
		snap.books[id] = *v
	}
	for id, v := range s.borrows {
		snap.borrows[id] = *v
	}
	for id, v := range s.penalties {
		snap.penalties[id] = *v
	}
	for id, v := range s.favorites {
		snap.favorites[id] = *v
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	s.students = make(map[uuid.UUID]*models.Student, len(snap.students))
	for id, v := range snap.students {
		v := v
		s.students[id] = &v
	}
	s.books = make(map[uuid.UUID]*models.Book, len(snap.books))
	for id, v := range snap.books {
		v := v
		s.books[id] = &v
	}
	s.borrows = make(map[uuid.UUID]*models.BorrowRecord, len(snap.borrows))
	for id, v := range snap.borrows {
		v := v
		s.borrows[id] = &v
	}
	s.penalties = make(map[uuid.UUID]*models.PenaltyRecord, len(snap.penalties))
	for id, v := range snap.penalties {
		v := v
		s.penalties[id] = &v
	}
	s.favorites = make(map[uuid.UUID]*models.Favorite, len(snap.favorites))
	for id, v := range snap.favorites {
		v := v
		s.favorites[id] = &v
	}
}

type fakeTransactor struct {
	store *memStore
}

func (t *fakeTransactor) Transaction(fc func(tx *gorm.DB) error, _ ...*sql.TxOptions) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	snap := t.store.snapshot()
	if err := fc(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// ── fake repositories ──

type fakeStudentRepo struct {
	store *memStore
}

func (r *fakeStudentRepo) Create(_ *gorm.DB, student *models.Student) error {
	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}
	copy := *student
	r.store.students[student.ID] = &copy
	return nil
}

func (r *fakeStudentRepo) GetByID(_ *gorm.DB, id uuid.UUID) (*models.Student, error) {
	student, ok := r.store.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *student
	return &copy, nil
}

func (r *fakeStudentRepo) GetByEmail(_ *gorm.DB, email string) (*models.Student, error) {
	for _, student := range r.store.students {
		if student.Email == email {
			copy := *student
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) ExistsByEmailOrCollegeID(_ *gorm.DB, email, collegeID string) (bool, error) {
	for _, student := range r.store.students {
		if student.Email == email || student.CollegeID == collegeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeStudentRepo) IncrementBorrowed(_ *gorm.DB, id uuid.UUID) error {
	if err := r.store.fail("student.IncrementBorrowed"); err != nil {
		return err
	}
	student, ok := r.store.students[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	student.TotalBorrowed++
	return nil
}

func (r *fakeStudentRepo) RecordReturn(_ *gorm.DB, id uuid.UUID, penalty float64) error {
	if err := r.store.fail("student.RecordReturn"); err != nil {
		return err
	}
	student, ok := r.store.students[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	student.TotalReturned++
	student.PenaltyAmount += penalty
	return nil
}

func (r *fakeStudentRepo) ClearPenaltyAmount(_ *gorm.DB, id uuid.UUID) error {
	if err := r.store.fail("student.ClearPenaltyAmount"); err != nil {
		return err
	}
	student, ok := r.store.students[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	student.PenaltyAmount = 0
	return nil
}

func (r *fakeStudentRepo) ToggleActive(_ *gorm.DB, id uuid.UUID) (int64, error) {
	student, ok := r.store.students[id]
	if !ok {
		return 0, nil
	}
	student.IsActive = !student.IsActive
	return 1, nil
}

func (r *fakeStudentRepo) ListSummaries(_ *gorm.DB) ([]models.StudentSummary, error) {
	var rows []models.StudentSummary
	for _, student := range r.store.students {
		open := 0
		for _, b := range r.store.borrows {
			if b.StudentID == student.ID && !b.IsReturned {
				open++
			}
		}
		rows = append(rows, models.StudentSummary{
			ID:               student.ID,
			CollegeID:        student.CollegeID,
			FullName:         student.FullName,
			Email:            student.Email,
			Course:           student.Course,
			IsActive:         student.IsActive,
			RegistrationDate: student.RegistrationDate,
			TotalBorrowed:    student.TotalBorrowed,
			TotalReturned:    student.TotalReturned,
			PenaltyAmount:    student.PenaltyAmount,
			CurrentBorrowed:  open,
		})
	}
	return rows, nil
}

func (r *fakeStudentRepo) CountActive(_ *gorm.DB) (int64, error) {
	var count int64
	for _, student := range r.store.students {
		if student.IsActive {
			count++
		}
	}
	return count, nil
}

type fakeAdminRepo struct {
	store  *memStore
	admins map[uuid.UUID]*models.AdminUser
}

func (r *fakeAdminRepo) GetByEmail(_ *gorm.DB, email string) (*models.AdminUser, error) {
	for _, admin := range r.admins {
		if admin.Email == email {
			copy := *admin
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAdminRepo) UpdateLastLogin(_ *gorm.DB, id uuid.UUID, at time.Time) error {
	if admin, ok := r.admins[id]; ok {
		admin.LastLogin = &at
	}
	return nil
}

type fakeBookRepo struct {
	store *memStore
}

func (r *fakeBookRepo) Create(_ *gorm.DB, book *models.Book) error {
	for _, existing := range r.store.books {
		if existing.ISBN == book.ISBN {
			return errUniqueViolation
		}
	}
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	copy := *book
	r.store.books[book.ID] = &copy
	return nil
}

func (r *fakeBookRepo) GetByID(_ *gorm.DB, id uuid.UUID) (*models.Book, error) {
	book, ok := r.store.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *book
	return &copy, nil
}

func (r *fakeBookRepo) GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.Book, error) {
	return r.GetByID(db, id)
}

func (r *fakeBookRepo) List(_ *gorm.DB) ([]models.Book, error) {
	var books []models.Book
	for _, book := range r.store.books {
		books = append(books, *book)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

func (r *fakeBookRepo) Update(_ *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	book, ok := r.store.books[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "title":
			book.Title = value.(string)
		case "author":
			book.Author = value.(string)
		case "category":
			book.Category = value.(string)
		case "isbn":
			book.ISBN = value.(string)
		case "cover_image":
			book.CoverImage = value.(string)
		case "description":
			book.Description = value.(string)
		case "total_quantity":
			book.TotalQuantity = value.(int)
		case "available_quantity":
			book.AvailableQuantity = value.(int)
		}
	}
	return nil
}

func (r *fakeBookRepo) Delete(_ *gorm.DB, id uuid.UUID) error {
	delete(r.store.books, id)
	return nil
}

func (r *fakeBookRepo) AdjustAvailable(_ *gorm.DB, id uuid.UUID, delta int) error {
	if err := r.store.fail("book.AdjustAvailable"); err != nil {
		return err
	}
	book, ok := r.store.books[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	book.AvailableQuantity += delta
	return nil
}

func (r *fakeBookRepo) Count(_ *gorm.DB) (int64, error) {
	return int64(len(r.store.books)), nil
}

func (r *fakeBookRepo) ListTrending(_ *gorm.DB, limit int) ([]models.TrendingBook, error) {
	var rows []models.TrendingBook
	for _, book := range r.store.books {
		count := 0
		for _, b := range r.store.borrows {
			if b.BookID == book.ID {
				count++
			}
		}
		rows = append(rows, models.TrendingBook{
			ID:          book.ID,
			Title:       book.Title,
			Author:      book.Author,
			Category:    book.Category,
			CoverImage:  book.CoverImage,
			Description: book.Description,
			BorrowCount: count,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].BorrowCount != rows[j].BorrowCount {
			return rows[i].BorrowCount > rows[j].BorrowCount
		}
		return rows[i].Title < rows[j].Title
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeBookRepo) CategoryCounts(_ *gorm.DB) ([]models.CategoryCount, error) {
	counts := make(map[string]int)
	for _, book := range r.store.books {
		counts[book.Category]++
	}
	var rows []models.CategoryCount
	for category, count := range counts {
		rows = append(rows, models.CategoryCount{Category: category, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows, nil
}

type fakeBorrowRepo struct {
	store *memStore
}

func (r *fakeBorrowRepo) Create(_ *gorm.DB, record *models.BorrowRecord) error {
	if err := r.store.fail("borrow.Create"); err != nil {
		return err
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	copy := *record
	r.store.borrows[record.ID] = &copy
	return nil
}

func (r *fakeBorrowRepo) GetOpenByIDForUpdate(_ *gorm.DB, id uuid.UUID) (*models.BorrowRecord, error) {
	record, ok := r.store.borrows[id]
	if !ok || record.IsReturned {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *record
	return &copy, nil
}

func (r *fakeBorrowRepo) MarkReturned(_ *gorm.DB, id uuid.UUID, returnedAt time.Time, overdue bool, penalty float64) error {
	record, ok := r.store.borrows[id]
	if !ok || record.IsReturned {
		return gorm.ErrRecordNotFound
	}
	record.IsReturned = true
	record.ReturnDate = &returnedAt
	record.IsOverdue = overdue
	record.PenaltyAmount = penalty
	return nil
}

func (r *fakeBorrowRepo) CountOpenByStudent(_ *gorm.DB, studentID uuid.UUID) (int64, error) {
	var count int64
	for _, record := range r.store.borrows {
		if record.StudentID == studentID && !record.IsReturned {
			count++
		}
	}
	return count, nil
}

func (r *fakeBorrowRepo) CountOpenByBook(_ *gorm.DB, bookID uuid.UUID) (int64, error) {
	var count int64
	for _, record := range r.store.borrows {
		if record.BookID == bookID && !record.IsReturned {
			count++
		}
	}
	return count, nil
}

func (r *fakeBorrowRepo) ListOpenByStudent(_ *gorm.DB, studentID uuid.UUID) ([]models.BorrowedBook, error) {
	var rows []models.BorrowedBook
	for _, record := range r.store.borrows {
		if record.StudentID != studentID || record.IsReturned {
			continue
		}
		rows = append(rows, r.toRow(record))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].BorrowDate.After(rows[j].BorrowDate) })
	return rows, nil
}

func (r *fakeBorrowRepo) ListHistoryByStudent(_ *gorm.DB, studentID uuid.UUID, limit int) ([]models.BorrowedBook, error) {
	var rows []models.BorrowedBook
	for _, record := range r.store.borrows {
		if record.StudentID != studentID {
			continue
		}
		rows = append(rows, r.toRow(record))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].BorrowDate.After(rows[j].BorrowDate) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeBorrowRepo) toRow(record *models.BorrowRecord) models.BorrowedBook {
	row := models.BorrowedBook{
		BorrowID:      record.ID,
		BookID:        record.BookID,
		BorrowDate:    record.BorrowDate,
		DueDate:       record.DueDate,
		ReturnDate:    record.ReturnDate,
		IsReturned:    record.IsReturned,
		IsOverdue:     record.IsOverdue,
		PenaltyAmount: record.PenaltyAmount,
	}
	if book, ok := r.store.books[record.BookID]; ok {
		row.Title = book.Title
		row.Author = book.Author
		row.Category = book.Category
		row.ISBN = book.ISBN
		row.CoverImage = book.CoverImage
	}
	return row
}

func (r *fakeBorrowRepo) ListAllOpen(_ *gorm.DB) ([]models.ActiveLoan, error) {
	var rows []models.ActiveLoan
	for _, record := range r.store.borrows {
		if record.IsReturned {
			continue
		}
		row := models.ActiveLoan{
			BorrowID:      record.ID,
			BorrowDate:    record.BorrowDate,
			DueDate:       record.DueDate,
			PenaltyAmount: record.PenaltyAmount,
		}
		if book, ok := r.store.books[record.BookID]; ok {
			row.Title = book.Title
			row.Author = book.Author
			row.ISBN = book.ISBN
		}
		if student, ok := r.store.students[record.StudentID]; ok {
			row.CollegeID = student.CollegeID
			row.StudentName = student.FullName
			row.StudentEmail = student.Email
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *fakeBorrowRepo) CountOpen(_ *gorm.DB) (int64, error) {
	var count int64
	for _, record := range r.store.borrows {
		if !record.IsReturned {
			count++
		}
	}
	return count, nil
}

func (r *fakeBorrowRepo) CountOverdue(_ *gorm.DB, today time.Time) (int64, error) {
	var count int64
	for _, record := range r.store.borrows {
		if !record.IsReturned && utcMidnight(record.DueDate).Before(today) {
			count++
		}
	}
	return count, nil
}

type fakePenaltyRepo struct {
	store *memStore
}

func (r *fakePenaltyRepo) Create(_ *gorm.DB, record *models.PenaltyRecord) error {
	if err := r.store.fail("penalty.Create"); err != nil {
		return err
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	copy := *record
	r.store.penalties[record.ID] = &copy
	return nil
}

func (r *fakePenaltyRepo) MarkAllPaidForStudent(_ *gorm.DB, studentID uuid.UUID, paidAt time.Time) error {
	if err := r.store.fail("penalty.MarkAllPaidForStudent"); err != nil {
		return err
	}
	for _, record := range r.store.penalties {
		if record.StudentID == studentID && !record.IsPaid {
			record.IsPaid = true
			at := paidAt
			record.PaymentDate = &at
		}
	}
	return nil
}

func (r *fakePenaltyRepo) SumUnpaid(_ *gorm.DB) (float64, error) {
	var total float64
	for _, record := range r.store.penalties {
		if !record.IsPaid {
			total += record.PenaltyAmount
		}
	}
	return total, nil
}

func (r *fakePenaltyRepo) ListDetails(_ *gorm.DB) ([]models.PenaltyDetail, error) {
	var rows []models.PenaltyDetail
	for _, record := range r.store.penalties {
		row := models.PenaltyDetail{
			ID:            record.ID,
			PenaltyAmount: record.PenaltyAmount,
			PenaltyDate:   record.PenaltyDate,
			IsPaid:        record.IsPaid,
			PaymentDate:   record.PaymentDate,
			Notes:         record.Notes,
		}
		if student, ok := r.store.students[record.StudentID]; ok {
			row.CollegeID = student.CollegeID
			row.StudentName = student.FullName
			row.StudentEmail = student.Email
		}
		if borrow, ok := r.store.borrows[record.BorrowRecordID]; ok {
			if book, ok := r.store.books[borrow.BookID]; ok {
				row.Title = book.Title
				row.Author = book.Author
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type fakeFavoriteRepo struct {
	store *memStore
}

func (r *fakeFavoriteRepo) GetByStudentAndBook(_ *gorm.DB, studentID, bookID uuid.UUID) (*models.Favorite, error) {
	for _, favorite := range r.store.favorites {
		if favorite.StudentID == studentID && favorite.BookID == bookID {
			copy := *favorite
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFavoriteRepo) Create(_ *gorm.DB, favorite *models.Favorite) error {
	if favorite.ID == uuid.Nil {
		favorite.ID = uuid.New()
	}
	copy := *favorite
	r.store.favorites[favorite.ID] = &copy
	return nil
}

func (r *fakeFavoriteRepo) Delete(_ *gorm.DB, id uuid.UUID) error {
	delete(r.store.favorites, id)
	return nil
}

func (r *fakeFavoriteRepo) ListBooksByStudent(_ *gorm.DB, studentID uuid.UUID) ([]models.Book, error) {
	var books []models.Book
	for _, favorite := range r.store.favorites {
		if favorite.StudentID != studentID {
			continue
		}
		if book, ok := r.store.books[favorite.BookID]; ok {
			books = append(books, *book)
		}
	}
	return books, nil
}

// errUniqueViolation mimics the PostgreSQL unique_violation error text the
// services sniff for.
var errUniqueViolation = &uniqueViolationError{}

type uniqueViolationError struct{}

func (e *uniqueViolationError) Error() string {
	return `ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)`
}

// testEnv bundles the fakes with services wired against them.
type testEnv struct {
	store    *memStore
	tx       *fakeTransactor
	students *fakeStudentRepo
	books    *fakeBookRepo
	borrows  *fakeBorrowRepo
	pens     *fakePenaltyRepo
	favs     *fakeFavoriteRepo
	clock    time.Time

	borrowSvc   BorrowService
	catalogSvc  CatalogService
	adminSvc    AdminService
	favoriteSvc FavoriteService
}

func newTestEnv(now time.Time) *testEnv {
	store := newMemStore()
	env := &testEnv{
		store:    store,
		tx:       &fakeTransactor{store: store},
		students: &fakeStudentRepo{store: store},
		books:    &fakeBookRepo{store: store},
		borrows:  &fakeBorrowRepo{store: store},
		pens:     &fakePenaltyRepo{store: store},
		favs:     &fakeFavoriteRepo{store: store},
		clock:    now,
	}
	clock := func() time.Time { return env.clock }
	env.borrowSvc = NewBorrowService(env.tx, env.books, env.students, env.borrows, env.pens, clock)
	env.catalogSvc = NewCatalogService(env.tx, env.books, env.borrows, clock)
	env.adminSvc = NewAdminService(env.tx, env.books, env.students, env.borrows, env.pens, clock)
	env.favoriteSvc = NewFavoriteService(env.favs, env.books, clock)
	return env
}

func (e *testEnv) addStudent() *models.Student {
	student := &models.Student{
		ID:        uuid.New(),
		CollegeID: "C" + uuid.NewString()[:8],
		FullName:  "Test Student",
		Email:     uuid.NewString()[:8] + "@example.edu",
		Course:    "CS",
		IsActive:  true,
	}
	e.store.students[student.ID] = student
	return student
}

func (e *testEnv) addBook(total, available int) *models.Book {
	book := &models.Book{
		ID:                uuid.New(),
		Title:             "Test Book",
		Author:            "Author",
		Category:          "Fiction",
		ISBN:              uuid.NewString()[:13],
		TotalQuantity:     total,
		AvailableQuantity: available,
	}
	e.store.books[book.ID] = book
	return book
}
