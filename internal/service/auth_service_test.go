package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"shopcompare/backend/internal/model"
	"shopcompare/backend/internal/repository"
	repomock "shopcompare/backend/internal/repository/mock"
	"shopcompare/backend/internal/repository/testutil"
	"shopcompare/backend/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthService(t *testing.T, opts ...service.AuthOption) service.AuthService {
	t.Helper()
	db := testutil.NewTestDB(t)
	return service.NewAuthService(repository.NewUserRepository(db, time.Second), testSecret, 30*time.Minute, opts...)
}

func TestAuthService_SignupAndLogin_Success(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	fullName := "  Alice Nguyen "

	user, err := svc.Signup(ctx, service.SignupInput{
		Email:    "Alice@Example.com",
		Username: "alice1",
		Password: "secret1",
		FullName: &fullName,
	})
	require.NoError(t, err, "signup should not fail")
	require.NotZero(t, user.ID)
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, "Alice Nguyen", *user.FullName)
	require.NotEqual(t, "secret1", user.HashedPassword)

	token, err := svc.Login(ctx, "alice1", "secret1")
	require.NoError(t, err, "login should not fail")
	require.Equal(t, "bearer", token.TokenType)
	require.NotEmpty(t, token.AccessToken)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, "alice1", claims.Username)

	byEmail, err := svc.Login(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err, "login by email should not fail")
	require.Equal(t, user.ID, byEmail.User.ID)

	me, err := svc.GetUser(ctx, claims.UserID)
	require.NoError(t, err)
	require.Equal(t, "alice1", me.Username)
}

func TestAuthService_Signup_ValidationErrors(t *testing.T) {
	cases := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{name: "missing username", username: "", email: "a@b.com", password: "secret", wantErr: service.ErrUsernameRequired},
		{name: "username starts with digit", username: "1alice", email: "a@b.com", password: "secret", wantErr: service.ErrInvalidUsername},
		{name: "username too short", username: "al", email: "a@b.com", password: "secret", wantErr: service.ErrInvalidUsername},
		{name: "username with dash", username: "al-ice", email: "a@b.com", password: "secret", wantErr: service.ErrInvalidUsername},
		{name: "missing email", username: "alice", email: "", password: "secret", wantErr: service.ErrEmailRequired},
		{name: "bad email", username: "alice", email: "not-an-email", password: "secret", wantErr: service.ErrInvalidEmail},
		{name: "display name email", username: "alice", email: "Alice <a@b.com>", password: "secret", wantErr: service.ErrInvalidEmail},
		{name: "missing password", username: "alice", email: "a@b.com", password: "", wantErr: service.ErrPasswordRequired},
		{name: "short password", username: "alice", email: "a@b.com", password: "123", wantErr: service.ErrPasswordTooShort},
		{name: "password over 72 bytes", username: "alice", email: "a@b.com", password: strings.Repeat("p", 80), wantErr: service.ErrPasswordTooLong},
		{name: "multibyte password over 72 bytes", username: "alice", email: "a@b.com", password: strings.Repeat("ư", 37), wantErr: service.ErrPasswordTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := repomock.NewMockUserRepository(ctrl)
			svc := service.NewAuthService(repo, testSecret, 0)

			_, err := svc.Signup(context.Background(), service.SignupInput{Username: tc.username, Email: tc.email, Password: tc.password})
			require.ErrorIs(t, err, tc.wantErr)
			require.ErrorIs(t, err, service.ErrInvalid)
		})
	}
}

func TestAuthService_Signup_PasswordAtBcryptLimit(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	password := strings.Repeat("p", 72)

	_, err := svc.Signup(ctx, service.SignupInput{Email: "max@example.com", Username: "maxlen", Password: password})
	require.NoError(t, err)

	token, err := svc.Login(ctx, "maxlen", password)
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestAuthService_Signup_UserExists(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, service.SignupInput{Email: "bob@example.com", Username: "bob", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, service.SignupInput{Email: "BOB@example.com", Username: "bobby", Password: "secret1"})
	require.ErrorIs(t, err, service.ErrUserExists)
	require.ErrorIs(t, err, service.ErrConflict)

	_, err = svc.Signup(ctx, service.SignupInput{Email: "other@example.com", Username: "bob", Password: "secret1"})
	require.ErrorIs(t, err, service.ErrUserExists)
}

func TestAuthService_Signup_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockUserRepository(ctrl)
	svc := service.NewAuthService(repo, testSecret, 0)

	repo.EXPECT().ExistsByEmailOrUsername(gomock.Any(), "c@example.com", "carol").Return(false, errors.New("database is locked"))

	_, err := svc.Signup(context.Background(), service.SignupInput{Email: "c@example.com", Username: "carol", Password: "secret1"})
	require.ErrorIs(t, err, service.ErrStorageUnavailable)
}

func TestAuthService_Signup_LostRaceIsConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockUserRepository(ctrl)
	svc := service.NewAuthService(repo, testSecret, 0)

	gomock.InOrder(
		repo.EXPECT().ExistsByEmailOrUsername(gomock.Any(), "d@example.com", "dave").Return(false, nil),
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("UNIQUE constraint failed: users.username")),
		repo.EXPECT().ExistsByEmailOrUsername(gomock.Any(), "d@example.com", "dave").Return(true, nil),
	)

	_, err := svc.Signup(context.Background(), service.SignupInput{Email: "d@example.com", Username: "dave", Password: "secret1"})
	require.ErrorIs(t, err, service.ErrUserExists)
}

func TestAuthService_Login_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockUserRepository(ctrl)
	svc := service.NewAuthService(repo, testSecret, 0)
	ctx := context.Background()

	_, err := svc.Login(ctx, "", "secret")
	require.ErrorIs(t, err, service.ErrUsernameRequired)

	_, err = svc.Login(ctx, "alice", "")
	require.ErrorIs(t, err, service.ErrPasswordRequired)

	repo.EXPECT().FindByLogin(gomock.Any(), "ghost").Return(nil, nil)
	_, err = svc.Login(ctx, "ghost", "secret")
	require.ErrorIs(t, err, service.ErrBadCredentials)
	require.ErrorIs(t, err, service.ErrUnauthorized)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err, "failed to hash password")

	repo.EXPECT().FindByLogin(gomock.Any(), "alice").Return(&model.User{ID: 1, Username: "alice", HashedPassword: string(hash), IsActive: true}, nil)
	_, err = svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, service.ErrBadCredentials)

	repo.EXPECT().FindByLogin(gomock.Any(), "frozen").Return(&model.User{ID: 2, Username: "frozen", HashedPassword: string(hash)}, nil)
	_, err = svc.Login(ctx, "frozen", "secret1")
	require.ErrorIs(t, err, service.ErrInactiveUser)
}

func TestAuthService_ValidateToken(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := &testClock{now: now}
	svc := newAuthService(t, service.WithAuthClock(clock.Now))
	ctx := context.Background()

	_, err := svc.Signup(ctx, service.SignupInput{Email: "e@example.com", Username: "erin", Password: "secret1"})
	require.NoError(t, err)
	token, err := svc.Login(ctx, "erin", "secret1")
	require.NoError(t, err)
	require.Equal(t, now.Add(30*time.Minute), token.ExpiresAt)

	t.Run("valid before expiry", func(t *testing.T) {
		clock.Set(now.Add(29 * time.Minute))
		_, err := svc.ValidateToken(token.AccessToken)
		require.NoError(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		clock.Set(now.Add(31 * time.Minute))
		_, err := svc.ValidateToken(token.AccessToken)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("garbage and empty", func(t *testing.T) {
		clock.Set(now)
		for _, raw := range []string{"", "invalid", token.AccessToken + "x"} {
			_, err := svc.ValidateToken(raw)
			require.ErrorIs(t, err, service.ErrInvalidToken)
		}
	})

	t.Run("signed with another secret", func(t *testing.T) {
		clock.Set(now)
		other := service.NewAuthService(nil, strings.Repeat("z", 32), 0, service.WithAuthClock(clock.Now))
		_, err := other.ValidateToken(token.AccessToken)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("rejects none algorithm", func(t *testing.T) {
		clock.Set(now)
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateToken(raw)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})
}

func TestAuthService_GetUser_NotFound(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.GetUser(context.Background(), 987654321)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestAuthService_TokenTTLDefault(t *testing.T) {
	svc := service.NewAuthService(nil, "", 0)
	require.Equal(t, 30*time.Minute, svc.TokenTTL())
}
