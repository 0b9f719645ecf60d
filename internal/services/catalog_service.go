package services

import (
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuslibrary/internal/models"
	"campuslibrary/internal/repositories"
)

const trendingLimit = 10

// BookInput carries the admin-editable fields of a book.
type BookInput struct {
	Title         string
	Author        string
	Category      string
	ISBN          string
	CoverImage    string
	Description   string
	TotalQuantity int
}

// CatalogService manages the book inventory. Quantity edits go through the
// same invariant as borrow/return: available_quantity never exceeds
// total_quantity and never goes negative.
type CatalogService interface {
	CreateBook(input BookInput) (*models.Book, error)
	UpdateBook(id uuid.UUID, input BookInput) (*models.Book, error)
	DeleteBook(id uuid.UUID) error
	ListBooks() ([]models.Book, error)
	TrendingBooks() ([]models.TrendingBook, error)
}

type catalogService struct {
	db         Transactor
	bookRepo   repositories.BookRepository
	borrowRepo repositories.BorrowRepository
	now        Clock
}

func NewCatalogService(
	db Transactor,
	bookRepo repositories.BookRepository,
	borrowRepo repositories.BorrowRepository,
	now Clock,
) CatalogService {
	if now == nil {
		now = defaultClock
	}
	return &catalogService{db: db, bookRepo: bookRepo, borrowRepo: borrowRepo, now: now}
}

// CreateBook adds a book with all copies initially available.
func (s *catalogService) CreateBook(input BookInput) (*models.Book, error) {
	book := &models.Book{
		Title:             input.Title,
		Author:            input.Author,
		Category:          input.Category,
		ISBN:              input.ISBN,
		CoverImage:        input.CoverImage,
		Description:       input.Description,
		TotalQuantity:     input.TotalQuantity,
		AvailableQuantity: input.TotalQuantity,
		DateAdded:         s.now(),
	}
	if err := s.bookRepo.Create(nil, book); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateISBN
		}
		log.Printf("[ERROR] CreateBook: failed to create book %q: %v", input.Title, err)
		return nil, err
	}
	log.Printf("[INFO] CreateBook: created book %q (id=%s) with %d copies", book.Title, book.ID, book.TotalQuantity)
	return book, nil
}

// UpdateBook edits a book's fields and recomputes available_quantity as
// new total minus currently borrowed. It fails without writing when the new
// total would force availability negative.
func (s *catalogService) UpdateBook(id uuid.UUID, input BookInput) (*models.Book, error) {
	var updated *models.Book

	err := s.db.Transaction(func(tx *gorm.DB) error {
		book, err := s.bookRepo.GetByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		borrowed, err := s.borrowRepo.CountOpenByBook(tx, id)
		if err != nil {
			return err
		}
		if int64(input.TotalQuantity) < borrowed {
			return ErrInvalidQuantity
		}
		newAvailable := input.TotalQuantity - int(borrowed)

		fields := map[string]interface{}{
			"title":              input.Title,
			"author":             input.Author,
			"category":           input.Category,
			"isbn":               input.ISBN,
			"cover_image":        input.CoverImage,
			"description":        input.Description,
			"total_quantity":     input.TotalQuantity,
			"available_quantity": newAvailable,
		}
		if err := s.bookRepo.Update(tx, id, fields); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateISBN
			}
			log.Printf("[ERROR] UpdateBook: failed to update book %s: %v", id, err)
			return err
		}

		book.Title = input.Title
		book.Author = input.Author
		book.Category = input.Category
		book.ISBN = input.ISBN
		book.CoverImage = input.CoverImage
		book.Description = input.Description
		book.TotalQuantity = input.TotalQuantity
		book.AvailableQuantity = newAvailable
		updated = book
		return nil
	})

	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] UpdateBook: book %s updated, available=%d/%d", id, updated.AvailableQuantity, updated.TotalQuantity)
	return updated, nil
}

// DeleteBook removes a book. Books with unreturned borrow records are kept;
// loan history must stay resolvable.
func (s *catalogService) DeleteBook(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.bookRepo.GetByIDForUpdate(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		borrowed, err := s.borrowRepo.CountOpenByBook(tx, id)
		if err != nil {
			return err
		}
		if borrowed > 0 {
			return ErrBookHasOpenLoans
		}

		if err := s.bookRepo.Delete(tx, id); err != nil {
			log.Printf("[ERROR] DeleteBook: failed to delete book %s: %v", id, err)
			return err
		}
		log.Printf("[INFO] DeleteBook: book %s deleted", id)
		return nil
	})
}

func (s *catalogService) ListBooks() ([]models.Book, error) {
	return s.bookRepo.List(nil)
}

func (s *catalogService) TrendingBooks() ([]models.TrendingBook, error) {
	return s.bookRepo.ListTrending(nil, trendingLimit)
}

// isUniqueViolation checks whether a PostgreSQL unique-constraint error
// occurred. PostgreSQL error code 23505 = unique_violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
