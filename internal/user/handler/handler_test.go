package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace-auth/internal/config"
	"marketplace-auth/internal/logger"
	"marketplace-auth/internal/middleware"
	"marketplace-auth/internal/token"
	"marketplace-auth/internal/user/model"
	"marketplace-auth/internal/user/service"
	apperrors "marketplace-auth/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	byEmail map[string]*model.User
	byID    map[uuid.UUID]*model.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byEmail: make(map[string]*model.User),
		byID:    make(map[uuid.UUID]*model.User),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return apperrors.ErrUserAlreadyExists
	}
	user.ID = uuid.New()
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, userID uuid.UUID) (*model.User, error) {
	user, ok := f.byID[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeStore) UpdateRefreshToken(_ context.Context, userID uuid.UUID, refreshToken string) error {
	user, ok := f.byID[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.RefreshToken = &refreshToken
	return nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, updated *model.User) error {
	if _, ok := f.byID[updated.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	f.byID[updated.ID] = updated
	return nil
}

func setupRouter(t *testing.T) (*gin.Engine, *fakeStore, *token.Service) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	require.NoError(t, logger.Init("production"))

	tokens := token.NewService(config.JWTConfig{
		AccessSecret:        "handler-test-access-secret",
		RefreshSecret:       "handler-test-refresh-secret",
		AccessExpiryMinutes: 15,
		RefreshExpiryHours:  24,
	})
	store := newFakeStore()
	h := NewHandler(service.NewService(store, tokens))

	router := gin.New()
	auth := router.Group("/api/auth")
	h.RegisterRoutes(auth)

	protected := auth.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))
	h.RegisterProfileRoutes(protected)

	return router, store, tokens
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func registerBody(email string) gin.H {
	return gin.H{
		"username": "alice",
		"email":    email,
		"password": "password1",
		"fullname": "Alice Example",
		"role":     "Customer",
		"phone":    "+12025550123",
	}
}

func TestRegisterLoginScenario(t *testing.T) {
	router, _, _ := setupRouter(t)

	// register → 200
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", registerBody("a@x.com"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User created successfully", decodeBody(t, w)["message"])

	// register again → 409
	w = doJSON(t, router, http.MethodPost, "/api/auth/register", registerBody("a@x.com"), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// login → 200 with tokens
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "a@x.com",
		"password": "password1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])
	assert.NotNil(t, data["user"])

	// login with wrong password → 400
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "a@x.com",
		"password": "wrongpassword",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// login with unknown email → 404
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "ghost@x.com",
		"password": "password1",
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterValidationFailure(t *testing.T) {
	router, store, _ := setupRouter(t)

	body := registerBody("a@x.com")
	body["role"] = "Admin"

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", body, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.byEmail)
}

func TestGoogleLogin(t *testing.T) {
	router, store, _ := setupRouter(t)

	body := gin.H{
		"displayName":   "Bob Builder",
		"email":         "bob@gmail.com",
		"emailVerified": true,
		"photoURL":      "https://example.com/bob.png",
	}

	w := doJSON(t, router, http.MethodPost, "/api/auth/google-login", body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "User", user["role"])
	assert.NotEmpty(t, data["access_token"])

	// Same email again is a login, not a conflict.
	w = doJSON(t, router, http.MethodPost, "/api/auth/google-login", body, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, store.byEmail, 1)
}

func TestWhoami(t *testing.T) {
	router, store, tokens := setupRouter(t)

	// Establish a session.
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", registerBody("a@x.com"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "a@x.com",
		"password": "password1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	login := decodeBody(t, w)["data"].(map[string]interface{})

	// Valid access token → identity, no rotation.
	w = doJSON(t, router, http.MethodPost, "/api/auth/whoami", gin.H{
		"accessToken":  login["access_token"],
		"refreshToken": login["refresh_token"],
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Token is valid", body["message"])

	// Missing tokens → 401.
	w = doJSON(t, router, http.MethodPost, "/api/auth/whoami", gin.H{}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage access token → 401.
	w = doJSON(t, router, http.MethodPost, "/api/auth/whoami", gin.H{
		"accessToken":  "garbage",
		"refreshToken": login["refresh_token"],
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Expired access token with the stored refresh token → rotated pair.
	user := store.byEmail["a@x.com"]
	expired, err := token.NewService(config.JWTConfig{
		AccessSecret:        "handler-test-access-secret",
		RefreshSecret:       "handler-test-refresh-secret",
		AccessExpiryMinutes: -1,
		RefreshExpiryHours:  -1,
	}).IssuePair(user.ID)
	require.NoError(t, err)

	w = doJSON(t, router, http.MethodPost, "/api/auth/whoami", gin.H{
		"accessToken":  expired.AccessToken,
		"refreshToken": login["refresh_token"],
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, "Token refreshed successfully", body["message"])

	rotated := body["data"].(map[string]interface{})
	require.NotEmpty(t, rotated["access_token"])
	claims, err := tokens.VerifyAccess(rotated["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// The old refresh token was invalidated by the rotation.
	w = doJSON(t, router, http.MethodPost, "/api/auth/whoami", gin.H{
		"accessToken":  expired.AccessToken,
		"refreshToken": login["refresh_token"],
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileRoutes(t *testing.T) {
	router, store, tokens := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", registerBody("a@x.com"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := store.byEmail["a@x.com"]

	pair, err := tokens.IssuePair(user.ID)
	require.NoError(t, err)
	authHeader := map[string]string{"Authorization": "Bearer " + pair.AccessToken}

	// No token → 401.
	w = doJSON(t, router, http.MethodGet, "/api/auth/profile", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Bad token → 401.
	w = doJSON(t, router, http.MethodGet, "/api/auth/profile", nil, map[string]string{
		"Authorization": "Bearer garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token → profile.
	w = doJSON(t, router, http.MethodGet, "/api/auth/profile", nil, authHeader)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "a@x.com", profile["email"])

	// Update.
	w = doJSON(t, router, http.MethodPut, "/api/auth/profile", gin.H{
		"full_name": "Alice Renamed",
		"location":  "Lisbon",
	}, authHeader)
	require.Equal(t, http.StatusOK, w.Code)
	profile = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Alice Renamed", profile["full_name"])
	assert.Equal(t, "Lisbon", profile["location"])
}
