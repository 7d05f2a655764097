package handlers

import (
	"net/http"

	"quizportal/middleware"
	"quizportal/services"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quizService   *services.QuizService
	resultService *services.ResultService
	errs          ErrorResponder
}

func NewQuizHandler(quizService *services.QuizService, resultService *services.ResultService, errs ErrorResponder) *QuizHandler {
	return &QuizHandler{
		quizService:   quizService,
		resultService: resultService,
		errs:          errs,
	}
}

func (h *QuizHandler) GetAllQuizzes(c *gin.Context) {
	quizzes, err := h.quizService.FindAll(c.Request.Context())
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	respond(c, http.StatusOK, "Quizzes fetched successfully", quizzes)
}

func (h *QuizHandler) GetQuizByID(c *gin.Context) {
	quiz, err := h.quizService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	respond(c, http.StatusOK, "Quiz fetched successfully", quiz)
}

// GetUserResults lists the results of the user named in the path.
func (h *QuizHandler) GetUserResults(c *gin.Context) {
	results, err := h.resultService.ResultsForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	respond(c, http.StatusOK, "Results fetched successfully", results)
}

func (h *QuizHandler) GetLeaderboard(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	board, err := h.resultService.Leaderboard(c.Request.Context(), c.Param("quizId"), userID)
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	respond(c, http.StatusOK, "Leaderboard fetched successfully", board)
}

func (h *QuizHandler) GetParticipants(c *gin.Context) {
	participants, err := h.resultService.ResultsForQuiz(c.Request.Context(), c.Param("quizId"))
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	respond(c, http.StatusOK, "Participants fetched successfully", participants)
}

func (h *QuizHandler) SubmitResult(c *gin.Context) {
	var req services.SubmitRequest
	if !h.errs.Bind(c, &req) {
		return
	}

	userID, _ := middleware.UserID(c)
	result, err := h.resultService.Submit(c.Request.Context(), userID, req)
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	respond(c, http.StatusCreated, "Result submitted successfully", result)
}

type attemptStatus struct {
	Attempted bool        `json:"attempted"`
	Result    interface{} `json:"result,omitempty"`
}

// CheckAttempt reports whether the caller already submitted a result for the quiz.
func (h *QuizHandler) CheckAttempt(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	result, err := h.resultService.HasAttempted(c.Request.Context(), userID, c.Param("quizId"))
	if err != nil {
		h.errs.Error(c, err)
		return
	}

	status := attemptStatus{Attempted: result != nil}
	if result != nil {
		status.Result = result
	}
	respond(c, http.StatusOK, "Attempt status fetched successfully", status)
}
