package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quizportal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const incorrectCredentials = "Incorrect email or password."

type AuthService struct {
	users  UserRepository
	tokens *TokenService
	cost   int
	admins func(email string) bool
}

type AuthOptions struct {
	// BcryptCost is passed to bcrypt.GenerateFromPassword.
	BcryptCost int
	// IsAdmin decides whether a newly registered email gets the admin role.
	IsAdmin func(email string) bool
}

func NewAuthService(users UserRepository, tokens *TokenService, opts AuthOptions) *AuthService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.IsAdmin == nil {
		opts.IsAdmin = func(string) bool { return false }
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		cost:   opts.BcryptCost,
		admins: opts.IsAdmin,
	}
}

type RegisterRequest struct {
	FullName string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Number   string `json:"number" binding:"required,len=10,number"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Number = strings.TrimSpace(r.Number)
}

// Register validates the request, rejects duplicate email or phone and stores
// a new user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.normalize()
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, Errorf(ErrConflict, "User already exists with this email.")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if _, err := s.users.FindByNumber(ctx, req.Number); err == nil {
		return nil, Errorf(ErrConflict, "User already exists with this phone number.")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup user by number: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, Errorf(ErrValidation, "password must be at most 72 bytes.")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := models.RoleUser
	if s.admins(req.Email) {
		role = models.RoleAdmin
	}
	user := &models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Number:   req.Number,
		Password: string(hash),
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrConflict) {
			// Lost a race with a concurrent registration.
			return nil, Errorf(ErrConflict, "User already exists with this email or phone number.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks the credentials and returns the user with a fresh session token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", Errorf(ErrValidation, "Email and password are required.")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", Errorf(ErrValidation, incorrectCredentials)
		}
		return nil, "", fmt.Errorf("lookup user by email: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, "", Errorf(ErrValidation, incorrectCredentials)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return nil, Errorf(ErrNotFound, "User not found.")
	}
	return user, err
}

func (s *AuthService) FindByID(ctx context.Context, id string) (*models.User, error) {
	if !isID(id) {
		return nil, Errorf(ErrNotFound, "User not found.")
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, Errorf(ErrNotFound, "User not found.")
	}
	return user, err
}

func (s *AuthService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.users.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete users: %w", err)
	}
	return n, nil
}

// isID reports whether id has the shape of a store-generated identifier.
func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
