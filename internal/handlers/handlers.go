package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campuslibrary/internal/auth"
	"campuslibrary/internal/services"
)

type Handler struct {
	issuer      *auth.TokenIssuer
	authSvc     services.AuthService
	borrowSvc   services.BorrowService
	catalogSvc  services.CatalogService
	adminSvc    services.AdminService
	favoriteSvc services.FavoriteService
}

func RegisterRoutes(
	r *gin.Engine,
	issuer *auth.TokenIssuer,
	authSvc services.AuthService,
	borrowSvc services.BorrowService,
	catalogSvc services.CatalogService,
	adminSvc services.AdminService,
	favoriteSvc services.FavoriteService,
) {
	h := &Handler{
		issuer:      issuer,
		authSvc:     authSvc,
		borrowSvc:   borrowSvc,
		catalogSvc:  catalogSvc,
		adminSvc:    adminSvc,
		favoriteSvc: favoriteSvc,
	}

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "OK"})
	})

	students := api.Group("/students")
	students.POST("/register", h.registerStudent)
	students.POST("/login", h.loginStudent)
	students.POST("/favorites/toggle", auth.RequireAuth(issuer), auth.RequireStudent(), h.toggleFavorite)
	students.GET("/:id/favorites", auth.RequireAuth(issuer), h.listFavorites)

	books := api.Group("/books")
	books.GET("", h.listBooks)
	books.GET("/trending", h.trendingBooks)
	books.POST("", auth.RequireAuth(issuer), auth.RequireAdmin(), h.createBook)
	books.PUT("/:id", auth.RequireAuth(issuer), auth.RequireAdmin(), h.updateBook)
	books.DELETE("/:id", auth.RequireAuth(issuer), auth.RequireAdmin(), h.deleteBook)

	borrow := api.Group("/borrow", auth.RequireAuth(issuer))
	borrow.POST("", auth.RequireStudent(), h.borrowBook)
	borrow.PUT("/:id/return", h.returnBook)
	borrow.GET("/student/:id", h.listBorrowed)
	borrow.GET("/history/:id", h.borrowHistory)

	admin := api.Group("/admin")
	admin.POST("/login", h.loginAdmin)

	adminAuth := admin.Group("", auth.RequireAuth(issuer), auth.RequireAdmin())
	adminAuth.GET("/dashboard/stats", h.dashboardStats)
	adminAuth.GET("/students", h.listStudents)
	adminAuth.PUT("/students/:id/toggle-status", h.toggleStudentStatus)
	adminAuth.GET("/borrowed-books", h.listActiveLoans)
	adminAuth.GET("/penalties", h.listPenalties)
	adminAuth.PUT("/penalties/:studentId/clear", h.clearPenalties)
	adminAuth.GET("/reports/library", h.libraryReport)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrBookNotFound),
		errors.Is(err, services.ErrBorrowNotFound),
		errors.Is(err, services.ErrStudentNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrBookUnavailable),
		errors.Is(err, services.ErrBorrowLimitExceeded),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrDuplicateISBN),
		errors.Is(err, services.ErrDuplicateStudent):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrBookHasOpenLoans):
		return http.StatusConflict
	case errors.Is(err, services.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAccountInactive):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope. Store-level failures surface as a
// generic message; internals never leak to clients.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Database error"
	}
	c.JSON(status, gin.H{"success": false, "message": message})
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// canAccessStudent guards per-student reads: a student sees only their own
// records, admins see everyone's.
func canAccessStudent(identity auth.Identity, studentID uuid.UUID) bool {
	return identity.IsAdmin() || identity.ID == studentID
}
