package handlers

import (
	"errors"
	"net/http"

	"quizportal/middleware"
	"quizportal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	authService    *services.AuthService
	contactService *services.ContactService
	errs           ErrorResponder
	secureCookie   bool
}

func NewUserHandler(authService *services.AuthService, contactService *services.ContactService, errs ErrorResponder, secureCookie bool) *UserHandler {
	return &UserHandler{
		authService:    authService,
		contactService: contactService,
		errs:           errs,
		secureCookie:   secureCookie,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !h.errs.Bind(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	respond(c, http.StatusCreated, "Account created successfully.", user.Summary())
}

func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !h.errs.Bind(c, &req) {
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	h.setToken(c, token, int(services.TokenTTL.Seconds()))
	respond(c, http.StatusOK, "Welcome back, "+user.FullName, user.Summary())
}

// Verify returns the user behind the session cookie.
func (h *UserHandler) Verify(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	user, err := h.authService.FindByID(c.Request.Context(), userID)
	if err != nil {
		// The token outlived its account.
		if errors.Is(err, services.ErrNotFound) {
			fail(c, http.StatusUnauthorized, "User not authenticated")
			return
		}
		h.errs.Error(c, err)
		return
	}

	respond(c, http.StatusOK, "User verified.", user.Summary())
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.setToken(c, "", -1)
	respond(c, http.StatusOK, "Logged out successfully.", nil)
}

func (h *UserHandler) Contact(c *gin.Context) {
	var req services.ContactRequest
	if !h.errs.Bind(c, &req) {
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), req)
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	respond(c, http.StatusCreated, "Message sent successfully", contact)
}

// setToken writes the session cookie. A negative maxAge clears it.
func (h *UserHandler) setToken(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.secureCookie, true)
}
