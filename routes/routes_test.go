package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"quizportal/handlers"
	"quizportal/middleware"
	"quizportal/ratelimit"
	"quizportal/services"
	"quizportal/store/memory"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
)

const adminEmail = "admin@x.com"

type testApp struct {
	router *gin.Engine
	hub    *services.Hub
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, nil)
}

// newTestAppWith lets a test adjust the router dependencies before they are
// mounted.
func newTestAppWith(t *testing.T, adjust func(*Dependencies)) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserStore()
	quizzes := memory.NewQuizStore()
	results := memory.NewResultStore(false)
	contacts := memory.NewContactStore()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := services.NewHub()
	go hub.Run(ctx)

	tokens := services.NewTokenService("test-secret")
	authService := services.NewAuthService(users, tokens, services.AuthOptions{
		BcryptCost: bcrypt.MinCost,
		IsAdmin:    func(email string) bool { return email == adminEmail },
	})
	quizService := services.NewQuizService(quizzes)
	resultService := services.NewResultService(results, users, quizzes, services.ResultOptions{Publisher: hub})
	contactService := services.NewContactService(contacts)
	responder := handlers.ErrorResponder{}
	origins := []string{"http://localhost:5173"}

	deps := Dependencies{
		Users:     handlers.NewUserHandler(authService, contactService, responder, true),
		Quizzes:   handlers.NewQuizHandler(quizService, resultService, responder),
		Admin:     handlers.NewAdminHandler(authService, quizService, resultService, contactService, responder),
		Live:      handlers.NewLiveHandler(hub, middleware.OriginAllowed(origins)),
		Tokens:    tokens,
		Accounts:  authService,
		Limiter:   ratelimit.NewMemoryLimiter(1000, time.Minute),
		Origins:   origins,
		Responder: responder,
	}
	if adjust != nil {
		adjust(&deps)
	}
	router, err := New(deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testApp{router: router, hub: hub}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, env
}

func (a *testApp) register(t *testing.T, name, email, password, number string) {
	t.Helper()
	rec, env := a.do(t, http.MethodPost, "/user/register", gin.H{
		"fullname": name, "email": email, "password": password, "number": number,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, %s", email, rec.Code, env.Message)
	}
}

func (a *testApp) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec, env := a.do(t, http.MethodPost, "/user/login", gin.H{"email": email, "password": password}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, %s", email, rec.Code, env.Message)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	t.Fatalf("login %s: no token cookie", email)
	return nil
}

func (a *testApp) createQuiz(t *testing.T, cookie *http.Cookie, title string) string {
	t.Helper()
	rec, env := a.do(t, http.MethodPost, "/admin/addquiz", gin.H{
		"title": title,
		"questions": []gin.H{
			{"questionText": "2+2?", "options": []string{"3", "4"}, "correctAnswer": "4"},
		},
	}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add quiz: status %d, %s", rec.Code, env.Message)
	}
	var quiz struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &quiz); err != nil || quiz.ID == "" {
		t.Fatalf("add quiz: bad data %s: %v", env.Data, err)
	}
	return quiz.ID
}

func TestEndToEndScenario(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.do(t, http.MethodPost, "/user/register", gin.H{
		"fullname": "A", "email": "a@x.com", "password": "secret1", "number": "1234567890",
	}, nil)
	if rec.Code != http.StatusCreated || !env.Success {
		t.Fatalf("register: status %d, %+v", rec.Code, env)
	}
	if strings.Contains(string(env.Data), "password") {
		t.Fatalf("register response leaks password: %s", env.Data)
	}

	rec, env = app.do(t, http.MethodPost, "/user/login", gin.H{"email": "a@x.com", "password": "wrong"}, nil)
	if rec.Code != http.StatusBadRequest || env.Message != "Incorrect email or password." {
		t.Fatalf("bad login: status %d, %+v", rec.Code, env)
	}

	cookie := app.login(t, "a@x.com", "secret1")
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteNoneMode || cookie.MaxAge != 86400 {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}

	app.register(t, "Admin", adminEmail, "secret1", "0987654321")
	adminCookie := app.login(t, adminEmail, "secret1")
	quizID := app.createQuiz(t, adminCookie, "Math")

	rec, env = app.do(t, http.MethodPost, "/quiz/submit", gin.H{"quizId": quizID, "score": 8, "timeTaken": 30}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: status %d, %s", rec.Code, env.Message)
	}

	rec, env = app.do(t, http.MethodGet, "/quiz/quiz/"+quizID+"/participants", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("participants: status %d, %s", rec.Code, env.Message)
	}
	var participants services.QuizParticipants
	if err := json.Unmarshal(env.Data, &participants); err != nil {
		t.Fatalf("decode participants: %v", err)
	}
	if participants.Quiz != "Math" || participants.TotalParticipants != 1 {
		t.Fatalf("unexpected participants %+v", participants)
	}
	p := participants.Participants[0]
	if p.Name != "A" || p.Email != "a@x.com" || p.Score != 8 || p.TimeTaken != 30 {
		t.Fatalf("unexpected participant %+v", p)
	}

	rec, env = app.do(t, http.MethodGet, "/quiz/check/"+quizID, nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("check: status %d, %s", rec.Code, env.Message)
	}
	var status struct {
		Attempted bool `json:"attempted"`
	}
	if err := json.Unmarshal(env.Data, &status); err != nil || !status.Attempted {
		t.Fatalf("check: expected attempted, got %s", env.Data)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "A", "a@x.com", "secret1", "1234567890")

	rec, env := app.do(t, http.MethodPost, "/user/register", gin.H{
		"fullname": "B", "email": "A@X.com", "password": "secret2", "number": "1111111111",
	}, nil)
	if rec.Code != http.StatusBadRequest || env.Message != "User already exists with this email." {
		t.Fatalf("duplicate: status %d, %+v", rec.Code, env)
	}

	rec, env = app.do(t, http.MethodPost, "/user/register", gin.H{
		"fullname": "C", "email": "c@x.com", "password": "123", "number": "2222222222",
	}, nil)
	if rec.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("short password: status %d, %+v", rec.Code, env)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/user/verify", "/quiz/check/x", "/quiz/user/x", "/quiz/" + uuid.NewString()} {
		rec, env := app.do(t, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusUnauthorized || env.Message != "User not authenticated" {
			t.Errorf("%s: status %d, %+v", path, rec.Code, env)
		}
	}

	rec, env := app.do(t, http.MethodGet, "/user/verify", nil, &http.Cookie{Name: middleware.TokenCookie, Value: "bogus"})
	if rec.Code != http.StatusUnauthorized || env.Message != "Invalid or expired token" {
		t.Fatalf("bogus token: status %d, %+v", rec.Code, env)
	}
}

func TestVerifyAndLogout(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "A", "a@x.com", "secret1", "1234567890")
	cookie := app.login(t, "a@x.com", "secret1")

	rec, env := app.do(t, http.MethodGet, "/user/verify", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: status %d, %s", rec.Code, env.Message)
	}
	var user struct {
		Email string `json:"email"`
	}
	_ = json.Unmarshal(env.Data, &user)
	if user.Email != "a@x.com" {
		t.Fatalf("verify returned %s", env.Data)
	}

	rec, env = app.do(t, http.MethodGet, "/user/logout", nil, cookie)
	if rec.Code != http.StatusOK || env.Message != "Logged out successfully." {
		t.Fatalf("logout: status %d, %+v", rec.Code, env)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("logout did not clear the cookie")
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "A", "a@x.com", "secret1", "1234567890")
	cookie := app.login(t, "a@x.com", "secret1")

	rec, _ := app.do(t, http.MethodPost, "/admin/addquiz", gin.H{"title": "x"}, cookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin add quiz: status %d", rec.Code)
	}
	rec, _ = app.do(t, http.MethodDelete, "/admin/delete-all-users", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous delete: status %d", rec.Code)
	}
}

func TestAdminBulkDelete(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Admin", adminEmail, "secret1", "0987654321")
	admin := app.login(t, adminEmail, "secret1")
	quizID := app.createQuiz(t, admin, "Math")
	app.do(t, http.MethodPost, "/quiz/submit", gin.H{"quizId": quizID, "score": 1}, admin)

	rec, env := app.do(t, http.MethodDelete, "/admin/delete-all-results", nil, admin)
	if rec.Code != http.StatusOK || string(env.Data) != `{"deleted":1}` {
		t.Fatalf("delete results: status %d, %+v", rec.Code, env)
	}
	rec, _ = app.do(t, http.MethodGet, "/quiz/"+quizID+"/participants", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("participants after delete: status %d", rec.Code)
	}
}

func TestQuizRoutes(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Admin", adminEmail, "secret1", "0987654321")
	admin := app.login(t, adminEmail, "secret1")
	quizID := app.createQuiz(t, admin, "Math")

	rec, env := app.do(t, http.MethodGet, "/quiz/get-all-quizes", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("all quizzes: status %d", rec.Code)
	}
	var quizzes []struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(env.Data, &quizzes); err != nil || len(quizzes) != 1 || quizzes[0].Title != "Math" {
		t.Fatalf("all quizzes: %s", env.Data)
	}

	if rec, _ := app.do(t, http.MethodGet, "/quiz/get-quiz/"+quizID, nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("get quiz: status %d", rec.Code)
	}
	rec, env = app.do(t, http.MethodGet, "/quiz/get-quiz/"+uuid.NewString(), nil, nil)
	if rec.Code != http.StatusNotFound || env.Message != "Quiz not found" {
		t.Fatalf("missing quiz: status %d, %+v", rec.Code, env)
	}

	rec, env = app.do(t, http.MethodPost, "/quiz/submit", gin.H{"score": 1}, admin)
	if rec.Code != http.StatusBadRequest || env.Message != "quizId is required" {
		t.Fatalf("submit without quiz: status %d, %+v", rec.Code, env)
	}

	// Results may reference quizzes that do not exist.
	ghost := uuid.NewString()
	if rec, env := app.do(t, http.MethodPost, "/quiz/submit", gin.H{"quizId": ghost, "score": 3}, admin); rec.Code != http.StatusCreated {
		t.Fatalf("submit ghost quiz: status %d, %s", rec.Code, env.Message)
	}
	app.do(t, http.MethodPost, "/quiz/submit", gin.H{"quizId": quizID, "score": 5, "timeTaken": 12}, admin)

	var me struct {
		ID string `json:"id"`
	}
	_, env = app.do(t, http.MethodGet, "/user/verify", nil, admin)
	_ = json.Unmarshal(env.Data, &me)

	rec, env = app.do(t, http.MethodGet, "/quiz/user/"+me.ID, nil, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("user results: status %d", rec.Code)
	}
	var results []services.UserResult
	if err := json.Unmarshal(env.Data, &results); err != nil || len(results) != 2 {
		t.Fatalf("user results: %s", env.Data)
	}
	titles := map[string]string{}
	for _, r := range results {
		titles[r.QuizID] = r.QuizTitle
	}
	if titles[ghost] != services.Unknown || titles[quizID] != "Math" {
		t.Fatalf("unexpected titles %v", titles)
	}

	rec, env = app.do(t, http.MethodGet, "/quiz/"+quizID, nil, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard: status %d", rec.Code)
	}
	var board services.QuizLeaderboard
	if err := json.Unmarshal(env.Data, &board); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(board.Results) != 1 || board.CurrentUser.Email != adminEmail {
		t.Fatalf("unexpected leaderboard %+v", board)
	}
}

func TestContactAndListing(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.do(t, http.MethodPost, "/user/contact", gin.H{"name": "A", "email": "a@x.com"}, nil)
	if rec.Code != http.StatusBadRequest || env.Message != "All fields are required" {
		t.Fatalf("incomplete contact: status %d, %+v", rec.Code, env)
	}
	rec, env = app.do(t, http.MethodPost, "/user/contact", gin.H{"name": "A", "email": "a@x.com", "message": "hi"}, nil)
	if rec.Code != http.StatusCreated || env.Message != "Message sent successfully" {
		t.Fatalf("contact: status %d, %+v", rec.Code, env)
	}

	app.register(t, "Admin", adminEmail, "secret1", "0987654321")
	admin := app.login(t, adminEmail, "secret1")
	rec, env = app.do(t, http.MethodGet, "/admin/contacts", nil, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("contacts: status %d", rec.Code)
	}
	var contacts []struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Data, &contacts); err != nil || len(contacts) != 1 || contacts[0].Message != "hi" {
		t.Fatalf("contacts: %s", env.Data)
	}
}

func TestUnknownRouteAndHealth(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.do(t, http.MethodGet, "/nope/nothing", nil, nil)
	if rec.Code != http.StatusNotFound || env.Message != "Route not found" {
		t.Fatalf("unknown route: status %d, %+v", rec.Code, env)
	}
	if rec, _ := app.do(t, http.MethodGet, "/health", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("health: status %d", rec.Code)
	}
	if rec, env := app.do(t, http.MethodGet, "/", nil, nil); rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("root: status %d", rec.Code)
	}
}

func TestLiveFeedReceivesSubmissions(t *testing.T) {
	app := newTestApp(t)
	server := httptest.NewServer(app.router)
	defer server.Close()

	app.register(t, "A", "a@x.com", "secret1", "1234567890")
	cookie := app.login(t, "a@x.com", "secret1")
	quizID := uuid.NewString()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/quiz/live/" + quizID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for app.hub.ClientCount(quizID) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if rec, env := app.do(t, http.MethodPost, "/quiz/submit", gin.H{"quizId": quizID, "score": 7, "timeTaken": 4}, cookie); rec.Code != http.StatusCreated {
		t.Fatalf("submit: status %d, %s", rec.Code, env.Message)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type    string               `json:"type"`
		Payload services.ResultEvent `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "result_submitted" || msg.Payload.Name != "A" || msg.Payload.Score != 7 {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestLiveFeedRejectsForeignOrigin(t *testing.T) {
	app := newTestApp(t)
	server := httptest.NewServer(app.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/quiz/live/" + uuid.NewString()
	header := http.Header{"Origin": []string{"http://evil.example.com"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatalf("expected handshake from foreign origin to fail")
	}
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.do(t, http.MethodPost, "/user/register", gin.H{
		"fullname": "A", "email": "a@x.com", "password": strings.Repeat("p", 80), "number": "1234567890",
	}, nil)
	if rec.Code != http.StatusBadRequest || env.Message != "password must be at most 72 characters." {
		t.Fatalf("long password: status %d, %+v", rec.Code, env)
	}
	rec, _ = app.do(t, http.MethodPost, "/user/login", gin.H{"email": "a@x.com", "password": strings.Repeat("p", 80)}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("user should not have been stored, login status %d", rec.Code)
	}
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	app := newTestAppWith(t, func(d *Dependencies) {
		d.Limiter = ratelimit.NewMemoryLimiter(2, time.Minute)
	})

	allowed := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", "198.51.100."+strconv.Itoa(i))
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("expected spoofed clients to share one counter, %d requests allowed", allowed)
	}
}

func TestRateLimitHonoursTrustedProxy(t *testing.T) {
	app := newTestAppWith(t, func(d *Dependencies) {
		d.Limiter = ratelimit.NewMemoryLimiter(1, time.Minute)
		d.TrustedProxies = []string{"10.0.0.0/8"}
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.2:4000"
		req.Header.Set("X-Forwarded-For", "198.51.100."+strconv.Itoa(i))
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("client %d behind trusted proxy: status %d", i, rec.Code)
		}
	}
}

func TestNewRejectsInvalidTrustedProxy(t *testing.T) {
	if _, err := New(Dependencies{TrustedProxies: []string{"not-an-ip"}}); err == nil {
		t.Fatalf("expected invalid proxy to be rejected")
	}
}

func TestVerifyAfterAccountDeleted(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "A", "a@x.com", "secret1", "1234567890")
	cookie := app.login(t, "a@x.com", "secret1")
	app.register(t, "Admin", adminEmail, "secret1", "0987654321")
	admin := app.login(t, adminEmail, "secret1")

	if rec, _ := app.do(t, http.MethodDelete, "/admin/delete-all-users", nil, admin); rec.Code != http.StatusOK {
		t.Fatalf("delete users: status %d", rec.Code)
	}
	rec, env := app.do(t, http.MethodGet, "/user/verify", nil, cookie)
	if rec.Code != http.StatusUnauthorized || env.Message != "User not authenticated" {
		t.Fatalf("verify deleted account: status %d, %+v", rec.Code, env)
	}
}

func TestSubmitRejectsMalformedQuizID(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "A", "a@x.com", "secret1", "1234567890")
	cookie := app.login(t, "a@x.com", "secret1")

	rec, env := app.do(t, http.MethodPost, "/quiz/submit", gin.H{"quizId": "not-a-uuid", "score": 1}, cookie)
	if rec.Code != http.StatusBadRequest || env.Message != "quizId is invalid." {
		t.Fatalf("malformed quiz id: status %d, %+v", rec.Code, env)
	}
	rec, env = app.do(t, http.MethodPost, "/quiz/submit", gin.H{"quizId": uuid.NewString(), "score": -1}, cookie)
	if rec.Code != http.StatusBadRequest || env.Message != "score must not be negative." {
		t.Fatalf("negative score: status %d, %+v", rec.Code, env)
	}
}

func TestBodyLimit(t *testing.T) {
	app := newTestAppWith(t, func(d *Dependencies) {
		d.MaxBodyBytes = 1024
	})

	rec, env := app.do(t, http.MethodPost, "/user/contact", gin.H{
		"name": "A", "email": "a@x.com", "message": strings.Repeat("x", 4096),
	}, nil)
	if rec.Code != http.StatusRequestEntityTooLarge || env.Message != "Request body too large" {
		t.Fatalf("oversized body: status %d, %+v", rec.Code, env)
	}
	if rec, _ := app.do(t, http.MethodPost, "/user/contact", gin.H{"name": "A", "email": "a@x.com", "message": "hi"}, nil); rec.Code != http.StatusCreated {
		t.Fatalf("small body: status %d", rec.Code)
	}
}
