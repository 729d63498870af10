package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduplay-service/internal/app"
)

// AuthHandler serves registration and login for both account kinds.
type AuthHandler struct {
	accounts *app.AccountService
}

func NewAuthHandler(accounts *app.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type studentRegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Grade    int    `json:"grade" binding:"required,gradelevel"`
	School   string `json:"school"`
}

type teacherRegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Subject  string `json:"subject"`
	School   string `json:"school"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req studentRegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	student, token, err := h.accounts.RegisterStudent(c.Request.Context(), app.StudentRegistration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Grade:    req.Grade,
		School:   req.School,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "student": student})
}

func (h *AuthHandler) LoginStudent(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	student, streak, token, err := h.accounts.LoginStudent(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "student": student, "streak": streak})
}

func (h *AuthHandler) RegisterTeacher(c *gin.Context) {
	var req teacherRegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	teacher, token, err := h.accounts.RegisterTeacher(c.Request.Context(), app.TeacherRegistration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Subject:  req.Subject,
		School:   req.School,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "teacher": teacher})
}

func (h *AuthHandler) LoginTeacher(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	teacher, token, err := h.accounts.LoginTeacher(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "teacher": teacher})
}
