package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"quizportal/models"
)

// Unknown stands in for the name, email or title of a record that a result
// references but that no longer exists.
const Unknown = "Unknown"

// ResultPublisher receives every stored result; the websocket hub implements it.
type ResultPublisher interface {
	PublishResult(event ResultEvent)
}

type ResultEvent struct {
	QuizID    string  `json:"quizId"`
	UserID    string  `json:"userId"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	TimeTaken float64 `json:"timeTaken"`
}

type ResultOptions struct {
	// StrictReferences makes Submit reject quiz ids that do not exist.
	StrictReferences bool
	Publisher        ResultPublisher
	Now              func() time.Time
}

type ResultService struct {
	results   ResultRepository
	users     UserRepository
	quizzes   QuizRepository
	strict    bool
	publisher ResultPublisher
	now       func() time.Time
}

func NewResultService(results ResultRepository, users UserRepository, quizzes QuizRepository, opts ResultOptions) *ResultService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ResultService{
		results:   results,
		users:     users,
		quizzes:   quizzes,
		strict:    opts.StrictReferences,
		publisher: opts.Publisher,
		now:       opts.Now,
	}
}

type SubmitRequest struct {
	QuizID    string  `json:"quizId"`
	Score     float64 `json:"score" binding:"gte=0"`
	TimeTaken float64 `json:"timeTaken" binding:"gte=0"`
}

type UserResult struct {
	QuizID      string    `json:"quizId"`
	QuizTitle   string    `json:"quizTitle"`
	Score       float64   `json:"score"`
	TimeTaken   float64   `json:"timeTaken"`
	AttemptedAt time.Time `json:"attemptedAt"`
}

type Participant struct {
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Score       float64   `json:"score"`
	TimeTaken   float64   `json:"timeTaken"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type QuizParticipants struct {
	QuizID            string        `json:"quizId"`
	Quiz              string        `json:"quiz"`
	TotalParticipants int           `json:"totalParticipants"`
	Participants      []Participant `json:"participants"`
}

type LeaderboardEntry struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Score     float64 `json:"score"`
	TimeTaken float64 `json:"timeTaken"`
}

type CurrentUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type QuizLeaderboard struct {
	QuizID      string             `json:"quizId"`
	Results     []LeaderboardEntry `json:"results"`
	CurrentUser CurrentUser        `json:"currentUser"`
}

// Submit stores one attempt. The quiz id is not checked against the quiz
// store unless StrictReferences is set.
func (s *ResultService) Submit(ctx context.Context, userID string, req SubmitRequest) (*models.Result, error) {
	req.QuizID = strings.TrimSpace(req.QuizID)
	if req.QuizID == "" {
		return nil, Errorf(ErrValidation, "quizId is required")
	}
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	if !isID(req.QuizID) {
		return nil, Errorf(ErrValidation, "quizId is invalid.")
	}
	if s.strict {
		if err := s.CheckQuizExists(ctx, req.QuizID); err != nil {
			return nil, err
		}
	}

	result := &models.Result{
		UserID:      userID,
		QuizID:      req.QuizID,
		Score:       req.Score,
		TimeTaken:   req.TimeTaken,
		AttemptedAt: s.now(),
	}
	if err := s.results.Create(ctx, result); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, Errorf(ErrConflict, "You have already attempted this quiz.")
		}
		return nil, fmt.Errorf("store result: %w", err)
	}

	s.publish(ctx, result)
	return result, nil
}

// CheckQuizExists is the optional referential check run before Submit.
func (s *ResultService) CheckQuizExists(ctx context.Context, quizID string) error {
	if _, err := s.quizzes.FindByID(ctx, quizID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Errorf(ErrNotFound, "Quiz not found")
		}
		return fmt.Errorf("check quiz %s: %w", quizID, err)
	}
	return nil
}

func (s *ResultService) publish(ctx context.Context, result *models.Result) {
	if s.publisher == nil {
		return
	}
	name := Unknown
	if user, err := s.users.FindByID(ctx, result.UserID); err == nil {
		name = user.FullName
	} else if !errors.Is(err, ErrNotFound) {
		log.Printf("live feed: lookup user %s: %v", result.UserID, err)
	}
	s.publisher.PublishResult(ResultEvent{
		QuizID:    result.QuizID,
		UserID:    result.UserID,
		Name:      name,
		Score:     result.Score,
		TimeTaken: result.TimeTaken,
	})
}

// HasAttempted returns the user's earliest result for the quiz, or nil when
// there is none. It is advisory: nothing stops a submission racing it.
func (s *ResultService) HasAttempted(ctx context.Context, userID, quizID string) (*models.Result, error) {
	if !isID(quizID) {
		return nil, nil
	}
	result, err := s.results.FindOne(ctx, userID, quizID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("check attempt: %w", err)
	}
	return result, nil
}

// ResultsForUser lists a user's attempts with quiz titles, newest first.
func (s *ResultService) ResultsForUser(ctx context.Context, userID string) ([]UserResult, error) {
	out := []UserResult{}
	if !isID(userID) {
		return out, nil
	}
	results, err := s.results.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("results for user %s: %w", userID, err)
	}
	if len(results) == 0 {
		return out, nil
	}

	titles, err := s.quizTitles(ctx, results)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		title, ok := titles[r.QuizID]
		if !ok {
			title = Unknown
		}
		out = append(out, UserResult{
			QuizID:      r.QuizID,
			QuizTitle:   title,
			Score:       r.Score,
			TimeTaken:   r.TimeTaken,
			AttemptedAt: r.AttemptedAt,
		})
	}
	return out, nil
}

// ResultsForQuiz joins every result of a quiz with its user. A result whose
// user is gone is kept with placeholder name and email.
func (s *ResultService) ResultsForQuiz(ctx context.Context, quizID string) (*QuizParticipants, error) {
	notFound := Errorf(ErrNotFound, "No participants found for this quiz")
	if !isID(quizID) {
		return nil, notFound
	}
	results, err := s.results.FindByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("results for quiz %s: %w", quizID, err)
	}
	if len(results) == 0 {
		return nil, notFound
	}

	users, err := s.usersByID(ctx, userIDs(results))
	if err != nil {
		return nil, err
	}
	title := Unknown
	if quiz, err := s.quizzes.FindByID(ctx, quizID); err == nil {
		title = quiz.Title
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get quiz %s: %w", quizID, err)
	}

	participants := make([]Participant, 0, len(results))
	for _, r := range results {
		name, email := displayUser(users, r.UserID)
		participants = append(participants, Participant{
			UserID:      r.UserID,
			Name:        name,
			Email:       email,
			Score:       r.Score,
			TimeTaken:   r.TimeTaken,
			SubmittedAt: r.AttemptedAt,
		})
	}
	return &QuizParticipants{
		QuizID:            quizID,
		Quiz:              title,
		TotalParticipants: len(participants),
		Participants:      participants,
	}, nil
}

// Leaderboard ranks a quiz's results by score, then time taken, then
// submission time, and reports who is asking.
func (s *ResultService) Leaderboard(ctx context.Context, quizID, currentUserID string) (*QuizLeaderboard, error) {
	var results []models.Result
	if isID(quizID) {
		var err error
		if results, err = s.results.FindByQuiz(ctx, quizID); err != nil {
			return nil, fmt.Errorf("results for quiz %s: %w", quizID, err)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.TimeTaken != b.TimeTaken {
			return a.TimeTaken < b.TimeTaken
		}
		return a.AttemptedAt.Before(b.AttemptedAt)
	})

	users, err := s.usersByID(ctx, append(userIDs(results), currentUserID))
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for _, r := range results {
		name, email := displayUser(users, r.UserID)
		entries = append(entries, LeaderboardEntry{
			Name:      name,
			Email:     email,
			Score:     r.Score,
			TimeTaken: r.TimeTaken,
		})
	}
	name, email := displayUser(users, currentUserID)
	return &QuizLeaderboard{
		QuizID:      quizID,
		Results:     entries,
		CurrentUser: CurrentUser{ID: currentUserID, Name: name, Email: email},
	}, nil
}

func (s *ResultService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.results.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete results: %w", err)
	}
	return n, nil
}

// usersByID loads the referenced users in one batch.
func (s *ResultService) usersByID(ctx context.Context, ids []string) (map[string]models.User, error) {
	ids = distinctIDs(ids)
	byID := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func (s *ResultService) quizTitles(ctx context.Context, results []models.Result) (map[string]string, error) {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.QuizID)
	}
	ids = distinctIDs(ids)
	titles := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}
	quizzes, err := s.quizzes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	for _, q := range quizzes {
		titles[q.ID] = q.Title
	}
	return titles, nil
}

func userIDs(results []models.Result) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.UserID)
	}
	return ids
}

// distinctIDs drops duplicates and anything that cannot be a stored id.
func distinctIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || !isID(id) {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func displayUser(users map[string]models.User, id string) (string, string) {
	u, ok := users[id]
	if !ok {
		return Unknown, Unknown
	}
	return u.FullName, u.Email
}
