package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatherly/gatherly/internal/models"
)

const (
	bcryptCost       = 12
	sessionDuration  = 30 * 24 * time.Hour
	sessionKeyPrefix = "session:"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

// AuthService manages password hashing and Redis-backed sessions.
// Sessions are stored as sha256(token) -> user id with a TTL.
type AuthService struct {
	users UserServiceInterface
	redis *redis.Client
}

func NewAuthService(users UserServiceInterface, redisClient *redis.Client) *AuthService {
	return &AuthService{
		users: users,
		redis: redisClient,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *AuthService) GenerateSessionToken() (token string, hash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("generating random bytes: %w", err)
	}

	token = hex.EncodeToString(bytes)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func (s *AuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	token, tokenHash, err := s.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	err = s.redis.Set(ctx, sessionKeyPrefix+tokenHash, userID.String(), sessionDuration).Err()
	if err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}

	return token, nil
}

func (s *AuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	raw, err := s.redis.Get(ctx, sessionKeyPrefix+hashToken(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing session user id: %w", err)
	}

	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, sessionKeyPrefix+hashToken(token)).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
