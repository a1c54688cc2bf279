package handler_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"shopcompare/backend/internal/handler"
	"shopcompare/backend/internal/model"
	"shopcompare/backend/internal/service"
	"shopcompare/backend/internal/service/mock"
)

func testUser() *model.User {
	fullName := "Alice Nguyen"
	return &model.User{
		ID:        1234567890123,
		Email:     "alice@example.com",
		Username:  "alice",
		FullName:  &fullName,
		IsActive:  true,
		CreatedAt: time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC),
	}
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockAuthService(ctrl)
	h := handler.NewAuthHandler(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodPost, "/api/auth/signup", map[string]interface{}{
		"email":     "alice@example.com",
		"username":  "alice",
		"password":  "secret123",
		"full_name": "Alice Nguyen",
	})
	c, rec := newTestContext(e, req)

	mockService.EXPECT().
		Signup(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in service.SignupInput) (*model.User, error) {
			require.Equal(t, "alice@example.com", in.Email)
			require.Equal(t, "alice", in.Username)
			require.Equal(t, "secret123", in.Password)
			require.NotNil(t, in.FullName)
			require.Equal(t, "Alice Nguyen", *in.FullName)
			return testUser(), nil
		})

	require.NoError(t, h.Signup(c))

	var resp handler.UserResponse
	assertJSONResponse(t, rec, http.StatusCreated, &resp)
	require.Equal(t, "1234567890123", resp.ID)
	require.Equal(t, "alice", resp.Username)
	require.Equal(t, "Alice Nguyen", *resp.FullName)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestAuthHandler_Signup_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "duplicate", err: service.ErrUserExists, status: http.StatusConflict},
		{name: "short password", err: service.ErrPasswordTooShort, status: http.StatusBadRequest},
		{name: "bad email", err: service.ErrInvalidEmail, status: http.StatusBadRequest},
		{name: "long password", err: service.ErrPasswordTooLong, status: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mock.NewMockAuthService(ctrl)
			h := handler.NewAuthHandler(mockService)

			e := newTestEcho()
			req := newJSONRequest(http.MethodPost, "/api/auth/signup", map[string]string{"email": "x", "username": "alice", "password": "1"})
			c, rec := newTestContext(e, req)

			mockService.EXPECT().Signup(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			require.NoError(t, h.Signup(c))
			require.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestAuthHandler_Signup_MalformedBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := handler.NewAuthHandler(mock.NewMockAuthService(ctrl))

	e := newTestEcho()
	c, rec := newTestContext(e, newJSONRequestRaw(http.MethodPost, "/api/auth/signup", `{"email":`))

	require.NoError(t, h.Signup(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Token_Form(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockAuthService(ctrl)
	h := handler.NewAuthHandler(mockService)

	e := newTestEcho()
	req := newFormRequest(http.MethodPost, "/api/auth/token", url.Values{
		"username": {"alice"},
		"password": {"secret123"},
	})
	c, rec := newTestContext(e, req)

	expiresAt := time.Now().Add(30 * time.Minute)
	mockService.EXPECT().
		Login(gomock.Any(), "alice", "secret123").
		Return(&service.AuthToken{AccessToken: "test-token", TokenType: service.TokenTypeBearer, ExpiresAt: expiresAt, User: testUser()}, nil)
	mockService.EXPECT().TokenTTL().Return(30 * time.Minute)

	require.NoError(t, h.Token(c))

	var resp handler.TokenResponse
	assertJSONResponse(t, rec, http.StatusOK, &resp)
	require.Equal(t, "test-token", resp.AccessToken)
	require.Equal(t, "bearer", resp.TokenType)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, handler.AuthCookieName, cookies[0].Name)
	require.Equal(t, "test-token", cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, 1800, cookies[0].MaxAge)
}

func TestAuthHandler_Token_JSONBadCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockAuthService(ctrl)
	h := handler.NewAuthHandler(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodPost, "/api/auth/token", map[string]string{
		"username": "alice@example.com",
		"password": "wrong",
	})
	c, rec := newTestContext(e, req)

	mockService.EXPECT().
		Login(gomock.Any(), "alice@example.com", "wrong").
		Return(nil, service.ErrBadCredentials)

	require.NoError(t, h.Token(c))

	var resp map[string]string
	assertJSONResponse(t, rec, http.StatusUnauthorized, &resp)
	require.Equal(t, "incorrect username or password", resp["error"])
	require.Empty(t, rec.Result().Cookies())
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	h := handler.NewAuthHandler(nil)

	e := newTestEcho()
	c, rec := newTestContext(e, newJSONRequest(http.MethodPost, "/api/auth/logout", nil))

	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, handler.AuthCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestAuthHandler_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockAuthService(ctrl)
	h := handler.NewAuthHandler(mockService)

	e := newTestEcho()
	c, rec := newTestContext(e, newJSONRequest(http.MethodGet, "/api/auth/me", nil))
	asUser(c, 1234567890123)

	mockService.EXPECT().GetUser(gomock.Any(), int64(1234567890123)).Return(testUser(), nil)

	require.NoError(t, h.Me(c))

	var resp handler.UserResponse
	assertJSONResponse(t, rec, http.StatusOK, &resp)
	require.Equal(t, "alice@example.com", resp.Email)
	require.True(t, resp.IsActive)
}

func TestAuthHandler_Me_Anonymous(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := handler.NewAuthHandler(mock.NewMockAuthService(ctrl))

	e := newTestEcho()
	c, rec := newTestContext(e, newJSONRequest(http.MethodGet, "/api/auth/me", nil))

	require.NoError(t, h.Me(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
