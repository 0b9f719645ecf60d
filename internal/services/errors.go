package services

import "errors"

var (
	// ErrBookNotFound is returned when the referenced book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrBookUnavailable is returned when no copies of the book remain.
	ErrBookUnavailable = errors.New("book not available for borrowing")

	// ErrBorrowLimitExceeded is returned when the student already holds the
	// maximum number of open borrow records.
	ErrBorrowLimitExceeded = errors.New("borrowing limit exceeded (maximum 3 books)")

	// ErrBorrowNotFound is returned when the borrow record does not exist or
	// has already been returned. The two cases are deliberately not
	// distinguishable to the caller.
	ErrBorrowNotFound = errors.New("borrow record not found or already returned")

	// ErrStudentNotFound is returned when the referenced student does not exist.
	ErrStudentNotFound = errors.New("student not found")

	// ErrInvalidQuantity is returned when an inventory edit would drive the
	// available copy count negative.
	ErrInvalidQuantity = errors.New("total quantity below currently borrowed count")

	// ErrBookHasOpenLoans is returned when a book deletion is attempted while
	// unreturned borrow records still reference it.
	ErrBookHasOpenLoans = errors.New("book has unreturned borrow records")

	// ErrDuplicateISBN is returned when a book with the same ISBN already exists.
	ErrDuplicateISBN = errors.New("book with this ISBN already exists")

	// ErrDuplicateStudent is returned when a registration reuses an email or
	// college ID.
	ErrDuplicateStudent = errors.New("student with this email or college ID already exists")

	// ErrInvalidCredentials is returned on login when the email is unknown or
	// the password does not match. The two cases are deliberately not
	// distinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountInactive is returned on login when the account exists but has
	// been deactivated by an admin.
	ErrAccountInactive = errors.New("account is deactivated")

	// ErrAccessDenied is returned when a student requests another student's
	// private records without admin privileges.
	ErrAccessDenied = errors.New("access denied")
)
