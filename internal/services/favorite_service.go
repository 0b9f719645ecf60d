package services

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuslibrary/internal/models"
	"campuslibrary/internal/repositories"
)

// FavoriteAction reports what a toggle did.
type FavoriteAction string

const (
	FavoriteAdded   FavoriteAction = "added"
	FavoriteRemoved FavoriteAction = "removed"
)

// FavoriteService keeps per-student bookmarks. The store is authoritative;
// clients never cache this state.
type FavoriteService interface {
	ToggleFavorite(studentID, bookID uuid.UUID) (FavoriteAction, error)
	ListFavorites(studentID uuid.UUID) ([]models.Book, error)
}

type favoriteService struct {
	favoriteRepo repositories.FavoriteRepository
	bookRepo     repositories.BookRepository
	now          Clock
}

func NewFavoriteService(
	favoriteRepo repositories.FavoriteRepository,
	bookRepo repositories.BookRepository,
	now Clock,
) FavoriteService {
	if now == nil {
		now = defaultClock
	}
	return &favoriteService{favoriteRepo: favoriteRepo, bookRepo: bookRepo, now: now}
}

func (s *favoriteService) ToggleFavorite(studentID, bookID uuid.UUID) (FavoriteAction, error) {
	if _, err := s.bookRepo.GetByID(nil, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrBookNotFound
		}
		return "", err
	}

	existing, err := s.favoriteRepo.GetByStudentAndBook(nil, studentID, bookID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	if existing != nil {
		if err := s.favoriteRepo.Delete(nil, existing.ID); err != nil {
			return "", err
		}
		log.Printf("[INFO] ToggleFavorite: book %s removed from favorites of student %s", bookID, studentID)
		return FavoriteRemoved, nil
	}

	favorite := &models.Favorite{
		StudentID: studentID,
		BookID:    bookID,
		AddedDate: s.now(),
	}
	if err := s.favoriteRepo.Create(nil, favorite); err != nil {
		return "", err
	}
	log.Printf("[INFO] ToggleFavorite: book %s added to favorites of student %s", bookID, studentID)
	return FavoriteAdded, nil
}

func (s *favoriteService) ListFavorites(studentID uuid.UUID) ([]models.Book, error) {
	return s.favoriteRepo.ListBooksByStudent(nil, studentID)
}
