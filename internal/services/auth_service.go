package services

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"campuslibrary/internal/models"
	"campuslibrary/internal/repositories"
)

const bcryptCost = 10

// RegistrationInput carries the fields of a student signup request.
type RegistrationInput struct {
	CollegeID string
	FullName  string
	Email     string
	Course    string
	Password  string
}

// AuthService verifies credentials against the store. Token issuance lives in
// the auth package; this service only decides who the caller is.
type AuthService interface {
	RegisterStudent(input RegistrationInput) (*models.Student, error)
	AuthenticateStudent(email, password string) (*models.Student, error)
	AuthenticateAdmin(email, password string) (*models.AdminUser, error)
}

type authService struct {
	studentRepo repositories.StudentRepository
	adminRepo   repositories.AdminUserRepository
	now         Clock
}

func NewAuthService(
	studentRepo repositories.StudentRepository,
	adminRepo repositories.AdminUserRepository,
	now Clock,
) AuthService {
	if now == nil {
		now = defaultClock
	}
	return &authService{studentRepo: studentRepo, adminRepo: adminRepo, now: now}
}

func (s *authService) RegisterStudent(input RegistrationInput) (*models.Student, error) {
	exists, err := s.studentRepo.ExistsByEmailOrCollegeID(nil, input.Email, input.CollegeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateStudent
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		CollegeID:        input.CollegeID,
		FullName:         input.FullName,
		Email:            input.Email,
		Course:           input.Course,
		Password:         string(hashed),
		RegistrationDate: s.now(),
		IsActive:         true,
	}
	if err := s.studentRepo.Create(nil, student); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateStudent
		}
		log.Printf("[ERROR] RegisterStudent: failed to create student %s: %v", input.Email, err)
		return nil, err
	}
	log.Printf("[INFO] RegisterStudent: student %s registered (id=%s)", student.Email, student.ID)
	return student, nil
}

func (s *authService) AuthenticateStudent(email, password string) (*models.Student, error) {
	student, err := s.studentRepo.GetByEmail(nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !student.IsActive {
		return nil, ErrAccountInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(student.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	log.Printf("[INFO] AuthenticateStudent: login successful for %s", student.ID)
	return student, nil
}

func (s *authService) AuthenticateAdmin(email, password string) (*models.AdminUser, error) {
	admin, err := s.adminRepo.GetByEmail(nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrAccountInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	// Best effort; a failed stamp must not fail the login.
	if err := s.adminRepo.UpdateLastLogin(nil, admin.ID, s.now()); err != nil {
		log.Printf("[WARN] AuthenticateAdmin: failed to update last login for %s: %v", admin.ID, err)
	}
	log.Printf("[INFO] AuthenticateAdmin: login successful for %s", admin.ID)
	return admin, nil
}
