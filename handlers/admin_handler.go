package handlers

import (
	"log"
	"net/http"

	"quizportal/middleware"
	"quizportal/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	authService    *services.AuthService
	quizService    *services.QuizService
	resultService  *services.ResultService
	contactService *services.ContactService
	errs           ErrorResponder
}

func NewAdminHandler(
	authService *services.AuthService,
	quizService *services.QuizService,
	resultService *services.ResultService,
	contactService *services.ContactService,
	errs ErrorResponder,
) *AdminHandler {
	return &AdminHandler{
		authService:    authService,
		quizService:    quizService,
		resultService:  resultService,
		contactService: contactService,
		errs:           errs,
	}
}

type deleted struct {
	Deleted int64 `json:"deleted"`
}

func (h *AdminHandler) AddQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if !h.errs.Bind(c, &req) {
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), req)
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	respond(c, http.StatusCreated, "Quiz created successfully", quiz)
}

func (h *AdminHandler) ListContacts(c *gin.Context) {
	contacts, err := h.contactService.List(c.Request.Context())
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	respond(c, http.StatusOK, "Contact messages fetched successfully", contacts)
}

func (h *AdminHandler) DeleteAllResults(c *gin.Context) {
	n, err := h.resultService.DeleteAll(c.Request.Context())
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	adminID, _ := middleware.UserID(c)
	log.Printf("admin %s deleted %d results", adminID, n)
	respond(c, http.StatusOK, "All results deleted successfully", deleted{Deleted: n})
}

func (h *AdminHandler) DeleteAllUsers(c *gin.Context) {
	n, err := h.authService.DeleteAll(c.Request.Context())
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	adminID, _ := middleware.UserID(c)
	log.Printf("admin %s deleted %d users", adminID, n)
	respond(c, http.StatusOK, "All users deleted successfully", deleted{Deleted: n})
}
