package routes

import (
	"fmt"
	"net/http"

	"quizportal/handlers"
	"quizportal/middleware"
	"quizportal/ratelimit"

	"github.com/gin-gonic/gin"
)

// Dependencies is everything the router mounts.
type Dependencies struct {
	Users   *handlers.UserHandler
	Quizzes *handlers.QuizHandler
	Admin   *handlers.AdminHandler
	Live    *handlers.LiveHandler

	Tokens    middleware.TokenVerifier
	Accounts  middleware.UserFinder
	Limiter   ratelimit.Limiter
	Origins   []string
	Responder handlers.ErrorResponder

	// TrustedProxies may set X-Forwarded-For; nil trusts none.
	TrustedProxies []string
	MaxBodyBytes   int64
}

// New builds the gin engine with the global middleware chain and all routes.
func New(deps Dependencies) (*gin.Engine, error) {
	router := gin.New()
	// ClientIP keys the rate limiter, so forwarded headers only count from
	// configured proxies.
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	router.Use(gin.Logger(), gin.CustomRecovery(deps.Responder.Recovery))
	router.Use(middleware.SecureHeaders(), middleware.CORS(deps.Origins))
	if deps.MaxBodyBytes > 0 {
		router.Use(middleware.BodyLimit(deps.MaxBodyBytes))
	}
	if deps.Limiter != nil {
		router.Use(middleware.RateLimit(deps.Limiter))
	}

	SetupRoutes(router, deps)
	return router, nil
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	auth := middleware.AuthMiddleware(deps.Tokens)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, handlers.Response{Success: true, Message: "Server is running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	user := router.Group("/user")
	{
		user.POST("/register", deps.Users.Register)
		user.POST("/login", deps.Users.Login)
		user.POST("/contact", deps.Users.Contact)
		user.GET("/verify", auth, deps.Users.Verify)
		user.GET("/logout", auth, deps.Users.Logout)
	}

	quiz := router.Group("/quiz")
	{
		quiz.GET("/get-all-quizes", deps.Quizzes.GetAllQuizzes)
		quiz.GET("/get-quiz/:id", deps.Quizzes.GetQuizByID)
		quiz.GET("/quiz/:quizId/participants", deps.Quizzes.GetParticipants)
		quiz.GET("/:quizId/participants", deps.Quizzes.GetParticipants)
		quiz.GET("/live/:quizId", deps.Live.Watch)

		quiz.GET("/user/:userId", auth, deps.Quizzes.GetUserResults)
		quiz.GET("/check/:quizId", auth, deps.Quizzes.CheckAttempt)
		quiz.POST("/submit", auth, deps.Quizzes.SubmitResult)
		quiz.GET("/:quizId", auth, deps.Quizzes.GetLeaderboard)
	}

	admin := router.Group("/admin")
	admin.Use(auth, middleware.RequireAdmin(deps.Accounts))
	{
		admin.POST("/addquiz", deps.Admin.AddQuiz)
		admin.GET("/contacts", deps.Admin.ListContacts)
		admin.DELETE("/delete-all-results", deps.Admin.DeleteAllResults)
		admin.DELETE("/delete-all-users", deps.Admin.DeleteAllUsers)
	}

	router.NoRoute(handlers.NotFound)
}
