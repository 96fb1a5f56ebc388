/**
 * @description
 * This file contains user registration, login and token refresh. Passwords
 * are hashed with bcrypt; sessions use a short-lived HS256 access token plus
 * a longer-lived refresh token signed with a separate secret.
 */

package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/finwell/finance-service/internal/domain"
	"github.com/finwell/finance-service/internal/store"
)

const bcryptCost = 12

// TokenPair is the access/refresh token pair issued on register, login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a new user and issues their first token pair.
func (s *Service) Register(ctx context.Context, email, password, name string) (*domain.User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, TokenPair{}, &InvalidInputError{Field: "email", Reason: "email is required"}
	}
	if password == "" {
		return nil, TokenPair{}, &InvalidInputError{Field: "password", Reason: "password is required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, TokenPair{}, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, TokenPair{}, err
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	log.Printf("level=info component=auth msg=\"user registered\" user_id=%s", user.ID)
	return user, tokens, nil
}

// Login verifies credentials and issues a fresh token pair. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidRefreshToken
		}
		return s.refreshSecret, nil
	})
	if err != nil || !token.Valid {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	// Reject tokens for users that no longer exist.
	if _, err := s.repo.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}

	return s.issueTokens(userID)
}

func (s *Service) issueTokens(userID uuid.UUID) (TokenPair, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
	})
	accessToken, err := access.SignedString(s.jwtSecret)
	if err != nil {
		return TokenPair{}, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTokenTTL)),
	})
	refreshToken, err := refresh.SignedString(s.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
