package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campuslibrary/internal/auth"
	"campuslibrary/internal/services"
)

type registerRequest struct {
	CollegeID string `json:"collegeId" binding:"required"`
	FullName  string `json:"fullName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Course    string `json:"course" binding:"required"`
	Password  string `json:"password" binding:"required,min=6"`
}

func (h *Handler) registerStudent(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	student, err := h.authSvc.RegisterStudent(services.RegistrationInput{
		CollegeID: req.CollegeID,
		FullName:  req.FullName,
		Email:     req.Email,
		Course:    req.Course,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Student registered successfully",
		"studentId": student.ID,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) loginStudent(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	student, err := h.authSvc.AuthenticateStudent(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	identity := auth.Identity{
		ID:       student.ID,
		Email:    student.Email,
		UserType: auth.UserTypeStudent,
	}
	token, err := h.issuer.Generate(identity, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":        student.ID,
			"collegeId": student.CollegeID,
			"fullName":  student.FullName,
			"email":     student.Email,
			"course":    student.Course,
			"userType":  auth.UserTypeStudent,
		},
	})
}

func (h *Handler) loginAdmin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	admin, err := h.authSvc.AuthenticateAdmin(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	identity := auth.Identity{
		ID:       admin.ID,
		Email:    admin.Email,
		UserType: auth.UserTypeAdmin,
		Role:     admin.Role,
	}
	token, err := h.issuer.Generate(identity, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":       admin.ID,
			"email":    admin.Email,
			"fullName": admin.FullName,
			"role":     admin.Role,
			"userType": auth.UserTypeAdmin,
		},
	})
}
