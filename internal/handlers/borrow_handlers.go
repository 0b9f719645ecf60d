package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campuslibrary/internal/auth"
	"campuslibrary/internal/services"
)

const dueDateLayout = "2006-01-02"

type borrowRequest struct {
	BookID  string `json:"bookId" binding:"required,uuid"`
	DueDate string `json:"dueDate" binding:"required"`
}

// borrowBook creates a borrow record for the calling student. The acting
// student is taken from the token, never from the body.
func (h *Handler) borrowBook(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	var req borrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid book id"})
		return
	}

	dueDate, err := time.ParseInLocation(dueDateLayout, req.DueDate, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid due date, expected YYYY-MM-DD"})
		return
	}

	record, err := h.borrowSvc.BorrowBook(identity.ID, bookID, dueDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Book borrowed successfully",
		"borrowId": record.ID,
		"dueDate":  record.DueDate.Format(dueDateLayout),
	})
}

func (h *Handler) returnBook(c *gin.Context) {
	borrowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.borrowSvc.ReturnBook(borrowID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Book returned successfully",
		"penalty": record.PenaltyAmount,
	})
}

func (h *Handler) listBorrowed(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !canAccessStudent(identity, studentID) {
		respondError(c, services.ErrAccessDenied)
		return
	}

	rows, err := h.borrowSvc.ListBorrowed(studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "borrowedBooks": rows})
}

func (h *Handler) borrowHistory(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !canAccessStudent(identity, studentID) {
		respondError(c, services.ErrAccessDenied)
		return
	}

	rows, err := h.borrowSvc.BorrowHistory(studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": rows})
}

type toggleFavoriteRequest struct {
	BookID string `json:"bookId" binding:"required,uuid"`
}

func (h *Handler) toggleFavorite(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	var req toggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid book id"})
		return
	}

	action, err := h.favoriteSvc.ToggleFavorite(identity.ID, bookID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Book added to favorites"
	if action == services.FavoriteRemoved {
		message = "Book removed from favorites"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "action": action})
}

func (h *Handler) listFavorites(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !canAccessStudent(identity, studentID) {
		respondError(c, services.ErrAccessDenied)
		return
	}

	books, err := h.favoriteSvc.ListFavorites(studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "favoriteBooks": books})
}
