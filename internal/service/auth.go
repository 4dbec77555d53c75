package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already exists")
	ErrBanned             = errors.New("account is banned")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingToken       = errors.New("no token provided")
	ErrInvalidUser        = errors.New("unknown or banned user")
	ErrInvalidPayload     = errors.New("invalid request payload")
)

const (
	accessTokenDuration  = 15 * time.Minute
	refreshTokenDuration = 30 * 24 * time.Hour // 30 days
	socketTokenDuration  = 60 * time.Second
)

// UserStore is the slice of the user directory the auth service needs.
// *repository.UserRepository satisfies it.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// TokenStore persists hashed refresh tokens.
// *repository.SessionRepository satisfies it.
type TokenStore interface {
	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (string, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

type AuthService struct {
	users     UserStore
	sessions  TokenStore
	jwtSecret []byte
	validate  *validator.Validate
}

func NewAuthService(users UserStore, sessions TokenStore, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		validate:  validator.New(),
	}
}

func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Username, req.Email, string(hash))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique") {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.generateTokenPair(ctx, user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &model.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.IsBanned {
		return nil, ErrBanned
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokenPair(ctx, user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &model.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	tokenHash := hashToken(refreshToken)

	userID, err := s.sessions.ValidateRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Rotation: the presented token is spent either way
	_ = s.sessions.RevokeRefreshToken(ctx, tokenHash)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.IsBanned {
		return nil, ErrBanned
	}

	return s.generateTokenPair(ctx, userID, user.Username)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.RevokeRefreshToken(ctx, hashToken(refreshToken))
}

// ValidateAccessToken parses a session access token and returns the
// subject id and username claims.
func (s *AuthService) ValidateAccessToken(tokenString string) (string, string, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return "", "", err
	}

	userID, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	if userID == "" {
		return "", "", ErrInvalidToken
	}

	return userID, username, nil
}

// MintSocketToken issues the short-lived credential used to authenticate
// the realtime handshake. It carries only the bearer's user id and is
// valid for 60 seconds from issuance.
func (s *AuthService) MintSocketToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(socketTokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign socket token: %w", err)
	}
	return signed, nil
}

// ResolveSocketIdentity authenticates a realtime connection attempt. It
// verifies the socket token and resolves the bearer against the user
// directory, returning the identity snapshot the session is bound to.
// Errors map to handshake rejection reasons: ErrMissingToken,
// ErrInvalidToken (bad signature or expired), ErrInvalidUser (unknown or
// banned identity).
func (s *AuthService) ResolveSocketIdentity(ctx context.Context, tokenString string) (model.Identity, error) {
	if tokenString == "" {
		return model.Identity{}, ErrMissingToken
	}

	claims, err := s.parseToken(tokenString)
	if err != nil {
		return model.Identity{}, err
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return model.Identity{}, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.Identity{}, ErrInvalidUser
	}
	if user.IsBanned {
		return model.Identity{}, ErrInvalidUser
	}

	return user.Identity(), nil
}

func (s *AuthService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, userID, username string) (*model.TokenPair, error) {
	now := time.Now()
	accessClaims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(accessTokenDuration).Unix(),
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessStr, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshBytes := make([]byte, 32)
	if _, err := rand.Read(refreshBytes); err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	refreshStr := hex.EncodeToString(refreshBytes)

	tokenHash := hashToken(refreshStr)
	expiresAt := now.Add(refreshTokenDuration)
	if err := s.sessions.StoreRefreshToken(ctx, userID, tokenHash, expiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessStr,
		RefreshToken: refreshStr,
	}, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
