package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/midwicket/pavilion/internal/auth"
	"github.com/midwicket/pavilion/internal/domain/model"
)

const minPasswordLen = 8

// AuthHandler serves registration, login, and session introspection.
type AuthHandler struct {
	deps         Dependencies
	jwtSecret    string
	cookieSecure bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps Dependencies, jwtSecret string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{deps: deps, jwtSecret: jwtSecret, cookieSecure: cookieSecure}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) validate() string {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return "missing name"
	case strings.TrimSpace(r.Email) == "":
		return "missing email"
	case len(r.Password) < minPasswordLen:
		return "password must be at least 8 characters"
	}
	return ""
}

// HandleRegister creates a player account and opens a session. Accounts are
// always created with the player role; admins are provisioned out of band.
func (h *AuthHandler) HandleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(c, msg)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.deps.RegisterUser(c.Request.Context(), model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Role:         auth.RolePlayer,
		PasswordHash: hash,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.openSession(c, user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin checks credentials and opens a session. Unknown emails and
// wrong passwords are indistinguishable to the client.
func (h *AuthHandler) HandleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.deps.UserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}

	if err := h.openSession(c, user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// HandleLogout clears the session cookie.
func (h *AuthHandler) HandleLogout(c *gin.Context) {
	auth.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// HandleMe returns the authenticated user.
func (h *AuthHandler) HandleMe(c *gin.Context) {
	user, err := h.deps.UserByID(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) openSession(c *gin.Context, user model.User) error {
	token, err := auth.IssueToken(h.jwtSecret, user.ID, user.Role)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(c, token, h.cookieSecure)
	return nil
}
