package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository"
)

type UserService struct {
	repo     repository.UserRepository
	sessions repository.SessionStore
	tokens   *pkg.TokenIssuer
}

func NewUserService(repo repository.UserRepository, sessions repository.SessionStore, tokens *pkg.TokenIssuer) *UserService {
	return &UserService{repo: repo, sessions: sessions, tokens: tokens}
}

// Signup validates f and creates the account
func (s *UserService) Signup(ctx context.Context, f *form.SignupForm) (*model.User, form.Errors, error) {
	errs := form.Validate(f)
	if errs != nil {
		return nil, errs, nil
	}
	if _, err := s.repo.FindByUsername(ctx, f.Username); err == nil {
		errs.Add("username", "A user with that username already exists.")
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, nil, err
	}
	if _, err := s.repo.FindByEmail(ctx, f.Email); err == nil {
		errs.Add("email", "A user with that email already exists.")
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, nil, err
	}
	if errs != nil {
		return nil, errs, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(f.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	user := &model.User{Username: f.Username, Email: f.Email, Password: string(hash)}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			errs.Add("username", "A user with that username already exists.")
			return nil, errs, nil
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil, nil
}

// Login checks the password and opens a session, replacing any older one
func (s *UserService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.StartSession(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// StartSession issues a token for userID and records it as the live one
func (s *UserService) StartSession(ctx context.Context, userID uint64) (string, error) {
	token, err := s.tokens.Generate(userID)
	if err != nil {
		return "", err
	}
	if err := s.sessions.AddUserToken(ctx, userID, token); err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) Logout(ctx context.Context, userID uint64) error {
	return s.sessions.DeleteUserToken(ctx, userID)
}

// Authenticate resolves a session token to its user and slides its expiry
func (s *UserService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	live, err := s.sessions.GetUserToken(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	if live != token {
		return nil, ErrSessionExpired
	}
	if err := s.sessions.ExtendUserToken(ctx, claims.UserID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, claims.UserID)
}

func (s *UserService) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}
