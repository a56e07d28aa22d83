package handlers_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/bookticket/user-service/internal/api/http"
	"github.com/bookticket/user-service/internal/api/http/handlers"
	"github.com/bookticket/user-service/internal/auth"
	"github.com/bookticket/user-service/internal/observability"
	"github.com/bookticket/user-service/internal/persistence"
	"github.com/bookticket/user-service/internal/repository"
	"github.com/bookticket/user-service/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	tokens, err := auth.NewTokenManager(key, time.Hour)
	require.NoError(t, err)

	logger := zap.NewNop()
	accounts := service.NewAccountService(repository.NewMemoryAccountRepository(), nil, logger, 4)
	authService := service.NewAuthService(accounts, tokens, nil, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Accounts:       handlers.NewAccountsHandler(authService, accounts),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func registerAlice(t *testing.T, app *fiber.App) (accountID, token string) {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"handle": "alice", "email": "Alice@Example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := body["data"].(map[string]any)
	account := data["account"].(map[string]any)
	authData := data["auth"].(map[string]any)
	return account["id"].(string), authData["token"].(string)
}

func TestRegister_NormalizesEmailAndIssuesToken(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"handle": "alice", "email": "Alice@Example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := body["data"].(map[string]any)
	account := data["account"].(map[string]any)
	require.Equal(t, "alice@example.com", account["email"])
	require.NotContains(t, account, "password_hash")

	authData := data["auth"].(map[string]any)
	require.NotEmpty(t, authData["token"])
	require.Greater(t, authData["expires_at"].(float64), float64(time.Now().UnixMilli()))
}

func TestRegister_DuplicateConflicts(t *testing.T) {
	app := newTestApp(t)
	registerAlice(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"handle": "alice", "email": "another@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "DUPLICATE_HANDLE", body["error"].(map[string]any)["code"])

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"handle": "bob", "email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "DUPLICATE_EMAIL", body["error"].(map[string]any)["code"])
}

func TestLogin_Scenarios(t *testing.T) {
	app := newTestApp(t)
	accountID, _ := registerAlice(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)

	// the login token resolves to the registered account
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, accountID, body["data"].(map[string]any)["account"].(map[string]any)["id"])

	// wrong secret and unknown email produce the same answer
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	knownCode := body["error"].(map[string]any)["code"]

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, knownCode, body["error"].(map[string]any)["code"])
	require.Equal(t, "BAD_CREDENTIALS", knownCode)
}

func TestMe_RequiresToken(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/users/me", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "BAD_SIGNATURE", body["error"].(map[string]any)["code"])
}

func TestUpdate_ReturnsFreshToken(t *testing.T) {
	app := newTestApp(t)
	accountID, token := registerAlice(t, app)

	resp, body := doJSON(t, app, http.MethodPut, "/api/v1/users/me", token, map[string]string{
		"handle": "alice2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	require.Equal(t, "alice2", data["account"].(map[string]any)["handle"])
	require.Equal(t, accountID, data["account"].(map[string]any)["id"])
	require.NotEmpty(t, data["auth"].(map[string]any)["token"])
}

func TestDelete_RemovesAccount(t *testing.T) {
	app := newTestApp(t)
	_, token := registerAlice(t, app)

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
