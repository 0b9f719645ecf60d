package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.adminSvc.DashboardStats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

func (h *Handler) listStudents(c *gin.Context) {
	students, err := h.adminSvc.ListStudents()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "students": students})
}

func (h *Handler) toggleStudentStatus(c *gin.Context) {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.adminSvc.ToggleStudentStatus(studentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Student status updated successfully"})
}

func (h *Handler) listActiveLoans(c *gin.Context) {
	loans, err := h.adminSvc.ListActiveLoans()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "borrowedBooks": loans})
}

func (h *Handler) listPenalties(c *gin.Context) {
	penalties, err := h.adminSvc.ListPenalties()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "penalties": penalties})
}

func (h *Handler) clearPenalties(c *gin.Context) {
	studentID, ok := parseIDParam(c, "studentId")
	if !ok {
		return
	}

	if err := h.adminSvc.ClearPenalties(studentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Penalty cleared successfully"})
}

func (h *Handler) libraryReport(c *gin.Context) {
	report, err := h.adminSvc.LibraryReport()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reportData": report})
}
