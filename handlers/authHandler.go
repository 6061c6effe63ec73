package handlers

import (
	"net/http"

	"RxClinic/services"
	"RxClinic/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	users         *services.UserService
	baseURL       string
	secureCookies bool
	log           zerolog.Logger
}

func NewAuthHandler(users *services.UserService, baseURL string, secureCookies bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:         users,
		baseURL:       baseURL,
		secureCookies: secureCookies,
		log:           log.With().Str("resource", "auth").Logger(),
	}
}

// Register handles patient self-registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req userRequest
	if err := bind(c, &req); err != nil {
		fail(c, h.log, err)
		return
	}
	u, err := h.users.Register(c.Request.Context(), &req.User, req.Password)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, u.View(h.baseURL))
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login authenticates the user and returns tokens along with user info
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		fail(c, h.log, err)
		return
	}
	session, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	utils.SetAuthCookies(c, session.AccessToken, session.RefreshToken, h.secureCookies)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  session.AccessToken,
		"refreshToken": session.RefreshToken,
		"user":         session.User.View(h.baseURL),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

// RefreshToken issues a new access token from the body or the refresh cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if c.Request.ContentLength > 0 {
		if err := bind(c, &req); err != nil {
			fail(c, h.log, err)
			return
		}
	}
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(utils.RefreshTokenCookie)
	}
	if req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token is required"})
		return
	}

	access, err := h.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	utils.SetAuthCookies(c, access, "", h.secureCookies)
	c.JSON(http.StatusOK, gin.H{"accessToken": access})
}

// Logoff logs the user out by clearing cookies
func (h *AuthHandler) Logoff(c *gin.Context) {
	utils.ClearAuthCookies(c, h.secureCookies)
	c.Status(http.StatusOK)
}

type resetRequest struct {
	Email       string `json:"email" form:"email"`
	ResetCode   string `json:"reset_code" form:"reset_code"`
	NewPassword string `json:"password" form:"password"`
}

func (h *AuthHandler) SendResetCode(c *gin.Context) {
	var req resetRequest
	if err := bind(c, &req); err != nil {
		fail(c, h.log, err)
		return
	}
	if err := h.users.SendResetCode(c.Request.Context(), req.Email); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset code has been sent"})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req resetRequest
	if err := bind(c, &req); err != nil {
		fail(c, h.log, err)
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), req.Email, req.ResetCode, req.NewPassword); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// GetUserProfile returns the authenticated user.
func (h *AuthHandler) GetUserProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	u, err := h.users.Profile(c.Request.Context(), a)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u.View(h.baseURL))
}
