package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"demo_wallet/internal/blacklist"
	"demo_wallet/internal/db/dbtest"
	"demo_wallet/internal/domain"
	"demo_wallet/internal/metrics"
	"demo_wallet/internal/service"
	"demo_wallet/internal/store"
	"demo_wallet/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	authToken = "your-faux-token"
	jwtSecret = "router-test-secret"
	password  = "Secret123"
)

func init() { gin.SetMode(gin.TestMode) }

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T, checker blacklist.Checker) *testServer {
	t.Helper()
	log, _ := test.NewNullLogger()
	st := store.New(dbtest.Open(t))
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)
	issue := func(userID string) (string, error) { return utils.GenerateJWT(userID, jwtSecret) }
	reg := prometheus.NewRegistry()
	return &testServer{router: NewRouter(RouterConfig{
		Users:       service.NewUserService(st, checker, hasher, issue, log, 5*time.Second),
		Wallets:     service.NewWalletService(st, hasher, log, 5*time.Second, service.WithMetrics(metrics.NewPrometheus(reg))),
		AuthToken:   authToken,
		JWTSecret:   jwtSecret,
		CORSOrigins: []string{"*"},
		Gatherer:    reg,
		Log:         log,
	})}
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Errors  []string        `json:"errors"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var resp response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func (s *testServer) createAccount(t *testing.T, email, phone string) domain.User {
	t.Helper()
	code, resp := s.do(t, http.MethodPost, "/api/users/create-account", "", gin.H{
		"name": "Ada Lovelace", "email": email, "phone": phone, "password": password,
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var user domain.User
	require.NoError(t, json.Unmarshal(resp.Data, &user))
	require.NotNil(t, user.WalletID)
	return user
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, blacklist.AllowAll{})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, HealthMessage, w.Body.String())

	user := s.createAccount(t, "ada@example.com", "+2348000000001")
	code, _ := s.do(t, http.MethodPost, "/api/wallets/fund-wallet", authToken, gin.H{"userId": user.ID, "amount": 10, "password": password})
	require.Equal(t, http.StatusOK, code)

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `wallet_operations_total{op="fund",outcome="committed"} 1`)
}

func TestCreateAccount(t *testing.T) {
	s := newTestServer(t, blacklist.AllowAll{})
	user := s.createAccount(t, "ada@example.com", "+2348000000001")
	assert.Empty(t, user.Password)

	code, resp := s.do(t, http.MethodPost, "/api/users/create-account", "", gin.H{
		"name": "Eve", "email": "ada@example.com", "phone": "+2348000000002", "password": password,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "ConflictError", resp.Error)

	code, resp = s.do(t, http.MethodPost, "/api/users/create-account", "", gin.H{"name": "E"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", resp.Error)
	assert.Len(t, resp.Errors, 4)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users/create-account", strings.NewReader("{"))
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAccountCollaboratorFailures(t *testing.T) {
	listed := newTestServer(t, blacklist.Func(func(context.Context, string) (blacklist.Status, error) {
		return blacklist.StatusListed, nil
	}))
	code, resp := listed.do(t, http.MethodPost, "/api/users/create-account", "", gin.H{
		"name": "Ada", "email": "ada@example.com", "phone": "+2348000000001", "password": password,
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "BlacklistError", resp.Error)

	down := newTestServer(t, blacklist.Func(func(context.Context, string) (blacklist.Status, error) {
		return blacklist.StatusClear, errors.New("dial tcp: connection refused")
	}))
	code, resp = down.do(t, http.MethodPost, "/api/users/create-account", "", gin.H{
		"name": "Ada", "email": "ada@example.com", "phone": "+2348000000001", "password": password,
	})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "ExternalServiceError", resp.Error)
	assert.NotContains(t, resp.Message, "connection refused")
}

func TestWalletFlowWithStaticToken(t *testing.T) {
	s := newTestServer(t, blacklist.AllowAll{})
	alice := s.createAccount(t, "alice@example.com", "+2348000000001")
	bob := s.createAccount(t, "bob@example.com", "+2348000000002")

	code, _ := s.do(t, http.MethodPost, "/api/wallets/fund-wallet", "", gin.H{"userId": alice.ID, "amount": 100, "password": password})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp := s.do(t, http.MethodPost, "/api/wallets/fund-wallet", authToken, gin.H{"userId": alice.ID, "amount": "100.00", "password": password})
	require.Equal(t, http.StatusOK, code, resp.Message)
	var res service.WalletResult
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	assert.Equal(t, "100", res.NewBalance.String())

	code, resp = s.do(t, http.MethodPost, "/api/wallets/withdraw-funds", authToken, gin.H{"userId": alice.ID, "amount": 150, "password": password})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "InsufficientFundsError", resp.Error)

	code, resp = s.do(t, http.MethodPost, "/api/wallets/transfer-funds", authToken, gin.H{
		"userId": alice.ID, "recipient_wallet_Id": *alice.WalletID, "amount": 10, "password": password,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", resp.Error)

	code, resp = s.do(t, http.MethodPost, "/api/wallets/transfer-funds", authToken, gin.H{
		"userId": alice.ID, "recipient_wallet_id": *bob.WalletID, "amount": 40, "password": "Wrong1234",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AuthenticationError", resp.Error)

	code, resp = s.do(t, http.MethodPost, "/api/wallets/transfer-funds", authToken, gin.H{
		"userId": alice.ID, "recipient_wallet_id": *bob.WalletID, "amount": 40, "password": password,
	})
	require.Equal(t, http.StatusOK, code, resp.Message)
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	assert.Equal(t, "60", res.NewBalance.String())

	code, resp = s.do(t, http.MethodGet, "/api/wallets/"+*bob.WalletID, authToken, nil)
	require.Equal(t, http.StatusOK, code)
	var wallet domain.Wallet
	require.NoError(t, json.Unmarshal(resp.Data, &wallet))
	assert.Equal(t, "40", wallet.Balance.String())

	code, resp = s.do(t, http.MethodGet, "/api/wallets/"+*alice.WalletID+"/transactions?page=1&page_size=1", authToken, nil)
	require.Equal(t, http.StatusOK, code)
	var history service.History
	require.NoError(t, json.Unmarshal(resp.Data, &history))
	assert.EqualValues(t, 2, history.Total)
	assert.Equal(t, 2, history.TotalPages)
	require.Len(t, history.Transactions, 1)
	assert.Equal(t, domain.TxTransfer, history.Transactions[0].Type)

	code, resp = s.do(t, http.MethodGet, "/api/wallets/not-a-uuid", authToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", resp.Error)
}

func TestWalletFlowWithLoginToken(t *testing.T) {
	s := newTestServer(t, blacklist.AllowAll{})
	alice := s.createAccount(t, "alice@example.com", "+2348000000001")
	bob := s.createAccount(t, "bob@example.com", "+2348000000002")

	code, resp := s.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "alice@example.com", "password": "Wrong1234"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AuthenticationError", resp.Error)

	code, resp = s.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "alice@example.com", "password": password})
	require.Equal(t, http.StatusOK, code)
	var login service.LoginResult
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	require.NotEmpty(t, login.Token)

	code, resp = s.do(t, http.MethodPost, "/api/wallets/fund-wallet", login.Token, gin.H{"amount": 25, "password": password})
	require.Equal(t, http.StatusOK, code, resp.Message)

	code, resp = s.do(t, http.MethodPost, "/api/wallets/fund-wallet", login.Token, gin.H{"userId": bob.ID, "amount": 25, "password": password})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AuthenticationError", resp.Error)

	code, resp = s.do(t, http.MethodGet, "/api/wallets/"+*alice.WalletID, login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var wallet domain.Wallet
	require.NoError(t, json.Unmarshal(resp.Data, &wallet))
	assert.Equal(t, "25", wallet.Balance.String())
}

func TestLoginTokenCannotReadOtherWallets(t *testing.T) {
	s := newTestServer(t, blacklist.AllowAll{})
	alice := s.createAccount(t, "alice@example.com", "+2348000000001")
	s.createAccount(t, "bob@example.com", "+2348000000002")

	code, resp := s.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "bob@example.com", "password": password})
	require.Equal(t, http.StatusOK, code)
	var login service.LoginResult
	require.NoError(t, json.Unmarshal(resp.Data, &login))

	for _, path := range []string{
		"/api/wallets/" + *alice.WalletID,
		"/api/wallets/" + *alice.WalletID + "/transactions",
	} {
		code, resp = s.do(t, http.MethodGet, path, login.Token, nil)
		assert.Equal(t, http.StatusNotFound, code, path)
		assert.Equal(t, "NotFoundError", resp.Error)
		assert.Empty(t, resp.Data)

		code, _ = s.do(t, http.MethodGet, path, authToken, nil)
		assert.Equal(t, http.StatusOK, code, path)
	}
}

func TestFailHidesDatabaseCauses(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := gin.New()
	r.GET("/raw", func(c *gin.Context) { fail(c, log, errors.New("dial tcp 10.0.0.5:3306: i/o timeout")) })
	r.GET("/timeout", func(c *gin.Context) { fail(c, log, domain.Database("unit of work failed", context.DeadlineExceeded)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Contains(t, w.Body.String(), `"error":"DatabaseError"`)
	assert.Empty(t, w.Header().Get("Retry-After"))
	require.Len(t, hook.Entries, 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/timeout", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
