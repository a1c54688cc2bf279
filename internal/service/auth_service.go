//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"shopcompare/backend/internal/model"
	"shopcompare/backend/internal/repository"
	"shopcompare/backend/pkg/logger"
)

const (
	minPasswordLength = 6
	// bcrypt only accepts inputs up to 72 bytes.
	maxPasswordBytes = 72
	defaultTokenTTL  = 30 * time.Minute
	TokenTypeBearer  = "bearer"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{2,31}$`)

var (
	ErrUsernameRequired = fmt.Errorf("%w: username is required", ErrInvalid)
	ErrInvalidUsername  = fmt.Errorf("%w: username must be 3-32 letters, digits or underscores and start with a letter", ErrInvalid)
	ErrEmailRequired    = fmt.Errorf("%w: email is required", ErrInvalid)
	ErrInvalidEmail     = fmt.Errorf("%w: email is not valid", ErrInvalid)
	ErrPasswordRequired = fmt.Errorf("%w: password is required", ErrInvalid)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("%w: password must be at most %d bytes", ErrInvalid, maxPasswordBytes)
	ErrUserExists       = fmt.Errorf("%w: email or username already registered", ErrConflict)
	ErrBadCredentials   = fmt.Errorf("%w: incorrect username or password", ErrUnauthorized)
	ErrInactiveUser     = fmt.Errorf("%w: user is inactive", ErrUnauthorized)
	ErrInvalidToken     = fmt.Errorf("%w: could not validate credentials", ErrUnauthorized)
)

type SignupInput struct {
	Email    string
	Username string
	Password string
	FullName *string
}

// AuthToken is returned by Login.
type AuthToken struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        *model.User
}

// TokenClaims is the validated content of an access token.
type TokenClaims struct {
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	// Login accepts a username or an email address.
	Login(ctx context.Context, login, password string) (*AuthToken, error)
	ValidateToken(token string) (*TokenClaims, error)
	GetUser(ctx context.Context, userID int64) (*model.User, error)
	TokenTTL() time.Duration
}

type accessClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type authService struct {
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type AuthOption func(*authService)

func WithAuthClock(now func() time.Time) AuthOption {
	return func(s *authService) { s.now = now }
}

// NewAuthService creates the service. An empty secret is replaced by a random
// one, which invalidates issued tokens on restart.
func NewAuthService(users repository.UserRepository, secret string, ttl time.Duration, opts ...AuthOption) AuthService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	key := []byte(secret)
	if secret == "" {
		key = randomSecret()
		logger.Warn("jwt secret not configured, using a random one", "module", "service", "action", "init", "resource", "auth")
	}
	s := &authService{users: users, secret: key, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return []byte(hex.EncodeToString(buf))
}

func (s *authService) TokenTTL() time.Duration {
	return s.ttl
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" {
		return nil, ErrUsernameRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var fullName *string
	if in.FullName != nil {
		if trimmed := strings.TrimSpace(*in.FullName); trimmed != "" {
			fullName = &trimmed
		}
	}

	user := &model.User{
		Email:          email,
		Username:       username,
		HashedPassword: string(hash),
		FullName:       fullName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent signup for the same name
		if exists, checkErr := s.users.ExistsByEmailOrUsername(ctx, email, username); checkErr == nil && exists {
			return nil, ErrUserExists
		}
		logger.Error("user create failed", "module", "service", "action", "signup", "resource", "user", "result", "failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	logger.Info("user registered", "module", "service", "action", "signup", "resource", "user", "result", "ok", "user_id", user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, login, password string) (*AuthToken, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if user == nil {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	token, expiresAt, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthToken{AccessToken: token, TokenType: TokenTypeBearer, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) issueToken(user *model.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := accessClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *authService) ValidateToken(token string) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, ErrInvalidToken
	}
	return &TokenClaims{UserID: userID, Username: claims.Username, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *authService) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrNotFound
	}
	return user, nil
}
