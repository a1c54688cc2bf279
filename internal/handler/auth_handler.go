package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"shopcompare/backend/internal/model"
	"shopcompare/backend/internal/service"
)

type AuthHandler struct {
	service service.AuthService
}

type signupRequest struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

type tokenRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type userResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	FullName  *string `json:"full_name"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/auth/signup", h.Signup)
	g.POST("/auth/token", h.Token)
	g.POST("/auth/logout", h.Logout)
}

func (h *AuthHandler) RegisterProtectedRoutes(g *echo.Group) {
	g.GET("/auth/me", h.Me)
}

// Signup godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body signupRequest true "account"
// @Success 201 {object} userResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	user, err := h.service.Signup(c.Request().Context(), service.SignupInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Token godoc
// @Summary Exchange username (or email) and password for an access token
// @Tags auth
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param username formData string true "username or email"
// @Param password formData string true "password"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} errorResponse
// @Router /auth/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	token, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeServiceError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     AuthCookieName,
		Value:    token.AccessToken,
		Path:     "/",
		Expires:  token.ExpiresAt,
		MaxAge:   int(h.service.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout clears the auth cookie. Tokens are stateless, so there is nothing to revoke.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} userResponse
// @Failure 401 {object} errorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := AuthenticatedUserID(c)
	if !ok {
		return writeServiceError(c, service.ErrInvalidToken)
	}
	user, err := h.service.GetUser(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func toUserResponse(user *model.User) userResponse {
	resp := userResponse{
		ID:        strconv.FormatInt(user.ID, 10),
		Email:     user.Email,
		Username:  user.Username,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
	if user.FullName != nil && strings.TrimSpace(*user.FullName) != "" {
		resp.FullName = user.FullName
	}
	return resp
}
