package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campuslibrary/internal/services"
)

func (h *Handler) listBooks(c *gin.Context) {
	books, err := h.catalogSvc.ListBooks()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "books": books})
}

func (h *Handler) trendingBooks(c *gin.Context) {
	books, err := h.catalogSvc.TrendingBooks()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "books": books})
}

type bookRequest struct {
	Title         string `json:"title" binding:"required"`
	Author        string `json:"author" binding:"required"`
	Category      string `json:"category" binding:"required"`
	ISBN          string `json:"isbn" binding:"required"`
	CoverImage    string `json:"coverImage"`
	Description   string `json:"description"`
	TotalQuantity int    `json:"totalQuantity" binding:"required,min=1"`
}

func (r bookRequest) toInput() services.BookInput {
	return services.BookInput{
		Title:         r.Title,
		Author:        r.Author,
		Category:      r.Category,
		ISBN:          r.ISBN,
		CoverImage:    r.CoverImage,
		Description:   r.Description,
		TotalQuantity: r.TotalQuantity,
	}
}

func (h *Handler) createBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	book, err := h.catalogSvc.CreateBook(req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Book added successfully",
		"bookId":  book.ID,
	})
}

func (h *Handler) updateBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	book, err := h.catalogSvc.UpdateBook(bookID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"message":              "Book updated successfully",
		"newAvailableQuantity": book.AvailableQuantity,
	})
}

func (h *Handler) deleteBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogSvc.DeleteBook(bookID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Book deleted successfully"})
}
