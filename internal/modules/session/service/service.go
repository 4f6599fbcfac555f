package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/internal/modules/session/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// Service starts, resolves and ends login sessions. Tokens are HS256 JWTs
// whose jti names a server-side session, so ending the session revokes the
// token before it expires.
type Service interface {
	Start(ctx context.Context, userID uint) (token string, expiresAt time.Time, err error)
	// Resolve returns the user behind token. Any failure yields ok == false.
	Resolve(ctx context.Context, token string) (userID uint, ok bool)
	End(ctx context.Context, token string) error
}

type service struct {
	store  repository.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(store repository.Store, secret string, ttl time.Duration) Service {
	return &service{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *service) Start(ctx context.Context, userID uint) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	session := &entity.Session{UserID: userID, ExpiresAt: expiresAt}
	if err := s.store.Save(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to save session: %w", err)
	}

	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, expiresAt, nil
}

func (s *service) Resolve(ctx context.Context, token string) (uint, bool) {
	claims, err := s.parse(token)
	if err != nil {
		return 0, false
	}

	session, err := s.store.Find(ctx, claims.ID)
	if err != nil {
		return 0, false
	}

	if strconv.FormatUint(uint64(session.UserID), 10) != claims.Subject {
		log.Warn().Str("session", claims.ID).Msg("session subject mismatch")
		return 0, false
	}

	return session.UserID, true
}

func (s *service) End(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, claims.ID)
}

func (s *service) parse(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	if claims.ID == "" {
		return nil, errors.New("session token without id")
	}
	return claims, nil
}
