package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos/internal/domain"
	"pos/internal/service"
)

// AuthHandler handles operator login, signup and logout.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SessionResponse is the HTTP response describing the operator session.
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserName      string `json:"user_name,omitempty"`
	Redirect      string `json:"redirect,omitempty"`
}

func sessionResponse(session domain.Session) SessionResponse {
	return SessionResponse{
		Authenticated: session.Authenticated(),
		UserName:      session.UserName,
		Redirect:      "/issuecard",
	}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginForm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, sessionResponse(session))
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupForm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, sessionResponse(session))
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SessionResponse{Redirect: LoginRoute})
}

// Session handles GET /v1/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	session, err := h.authService.Session(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SessionResponse{
		Authenticated: true,
		UserName:      session.UserName,
	})
}
