package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJSONContext(t *testing.T, method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func authed(c *gin.Context, accountID uuid.UUID) {
	c.Set(middleware.CtxAccountID, accountID)
}

// decodeBody returns a success body. Payload fields sit at the top level beside request_id.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp, "request_id", "body: %s", w.Body.String())
	require.NotContains(t, resp, "error", "body: %s", w.Body.String())
	return resp
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
	return resp["error_code"].(string)
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	accountID := uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
		Pin:      "1234",
	}).Return(accountID, nil)

	c, w := newJSONContext(t, http.MethodPost, "/auth/register", dto.RegisterRequest{
		Email:    "  alice@example.com ",
		Password: "password123",
		Pin:      "1234",
	})

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)
	assert.Equal(t, accountID.String(), data["accountId"])
	assert.NotEmpty(t, data["message"])
	assert.Equal(t, accountID.String(), c.GetString(middleware.CtxAuditResourceID))
}

func TestRegister_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{"empty body", "{}"},
		{"malformed json", "{"},
		{"short password", dto.RegisterRequest{Email: "a@example.com", Password: "short", Pin: "1234"}},
		{"short pin", dto.RegisterRequest{Email: "a@example.com", Password: "password123", Pin: "12"}},
		{"non-digit pin", dto.RegisterRequest{Email: "a@example.com", Password: "password123", Pin: "12ab"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockAuth := mocks.NewMockAuthService(ctrl)
			h := NewAuthHandler(mockAuth)

			c, w := newJSONContext(t, http.MethodPost, "/auth/register", tc.body)
			h.Register(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VAL_001", decodeErrorCode(t, w))
		})
	}
}

func TestRegister_MalformedEmailRejectedAfterTrim(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Email:    "nope",
		Password: "password123",
		Pin:      "1234",
	}).Return(uuid.Nil, apperror.ErrInvalidInput("email is malformed"))

	c, w := newJSONContext(t, http.MethodPost, "/auth/register", dto.RegisterRequest{
		Email:    " nope ",
		Password: "password123",
		Pin:      "1234",
	})
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", decodeErrorCode(t, w))
}

func TestRegister_Conflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), gomock.Any()).Return(uuid.Nil, apperror.ErrEmailExists())

	c, w := newJSONContext(t, http.MethodPost, "/auth/register", dto.RegisterRequest{
		Email:    "taken@example.com",
		Password: "password123",
		Pin:      "1234",
	})

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "AUTH_002", decodeErrorCode(t, w))
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "alice@example.com", "password123").Return(nil)

	c, w := newJSONContext(t, http.MethodPost, "/auth/login", dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)
	assert.Equal(t, "OTP sent", data["message"])
	assert.NotContains(t, data, "token")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(apperror.ErrInvalidCredentials())

	c, w := newJSONContext(t, http.MethodPost, "/auth/login", dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_001", decodeErrorCode(t, w))
}

func TestVerifyOTP_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(time.Hour)
	mockAuth.EXPECT().VerifyLoginOTP(gomock.Any(), "alice@example.com", "123456").Return("jwt.token.here", expiry, nil)

	c, w := newJSONContext(t, http.MethodPost, "/auth/verify-otp", dto.VerifyOTPRequest{
		Email: "alice@example.com",
		OTP:   "123456",
	})

	h.VerifyOTP(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)
	assert.Equal(t, "jwt.token.here", data["token"])
	assert.Equal(t, float64(expiry.Unix()), data["expiry"])
}

func TestVerifyOTP_MalformedCodeIsInvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	c, w := newJSONContext(t, http.MethodPost, "/auth/verify-otp", dto.VerifyOTPRequest{
		Email: "alice@example.com",
		OTP:   "abc",
	})

	h.VerifyOTP(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_001", decodeErrorCode(t, w))
}

// --- Wallet Handler Tests ---

func TestBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	accountID := uuid.New()
	mockLedger.EXPECT().GetBalance(gomock.Any(), accountID).Return(int64(100), nil)

	c, w := newJSONContext(t, http.MethodPost, "/wallet/balance", nil)
	authed(c, accountID)

	h.Balance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), decodeBody(t, w)["balance"])
}

func TestBalance_MissingAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewWalletHandler(mocks.NewMockLedgerService(ctrl))

	c, w := newJSONContext(t, http.MethodPost, "/wallet/balance", nil)
	h.Balance(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_003", decodeErrorCode(t, w))
}

func TestSend_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	accountID := uuid.New()
	mockLedger.EXPECT().Transfer(gomock.Any(), ports.TransferRequest{
		SenderID:      accountID,
		ReceiverEmail: "bob@example.com",
		Amount:        40,
		Pin:           "1234",
		Message:       "hi <3",
	}).Return(&domain.Transaction{ID: 7}, nil)

	c, w := newJSONContext(t, http.MethodPost, "/wallet/send", dto.SendRequest{
		ReceiverEmail: " bob@example.com ",
		Amount:        40,
		Pin:           "1234",
		Message:       "hi <3",
	})
	authed(c, accountID)

	h.Send(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)
	assert.Equal(t, float64(7), data["transactionId"])
	assert.Equal(t, "7", c.GetString(middleware.CtxAuditResourceID))
}

func TestSend_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"insufficient funds", apperror.ErrInsufficientFunds(), http.StatusUnprocessableEntity, "WAL_001"},
		{"invalid pin", apperror.ErrInvalidPin(), http.StatusForbidden, "WAL_002"},
		{"unknown recipient", apperror.ErrUnknownRecipient(), http.StatusNotFound, "WAL_003"},
		{"invalid input", apperror.ErrInvalidInput("Cannot transfer to yourself"), http.StatusBadRequest, "VAL_001"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "SYS_001"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockLedger := mocks.NewMockLedgerService(ctrl)
			h := NewWalletHandler(mockLedger)
			mockLedger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			c, w := newJSONContext(t, http.MethodPost, "/wallet/send", dto.SendRequest{
				ReceiverEmail: "bob@example.com",
				Amount:        40,
				Pin:           "1234",
			})
			authed(c, uuid.New())

			h.Send(c)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decodeErrorCode(t, w))
		})
	}
}

func TestSend_NonPositiveAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewWalletHandler(mocks.NewMockLedgerService(ctrl))

	c, w := newJSONContext(t, http.MethodPost, "/wallet/send", `{"receiverEmail":"bob@example.com","amount":-3,"pin":"1234"}`)
	authed(c, uuid.New())

	h.Send(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", decodeErrorCode(t, w))
}

// --- History Handler Tests ---

func TestHistory_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHistory := mocks.NewMockHistoryService(ctrl)
	h := NewHistoryHandler(mockHistory)

	accountID := uuid.New()
	settled := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mockHistory.EXPECT().History(gomock.Any(), accountID).Return(&ports.History{
		Sent: []domain.TransferRecord{{
			Transaction: domain.Transaction{
				ID:              3,
				AmountEnvelope:  "v1.aa",
				MessageEnvelope: "v1.bb",
				SettledAt:       settled,
			},
			CounterpartEmail: "bob@example.com",
		}},
	}, nil)

	c, w := newJSONContext(t, http.MethodPost, "/history", nil)
	authed(c, accountID)
	c.Set(middleware.CtxEmail, "alice@example.com")

	h.History(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)

	sent := data["sent"].([]interface{})
	require.Len(t, sent, 1)
	entry := sent[0].(map[string]interface{})
	assert.Equal(t, float64(3), entry["_id"])
	assert.Equal(t, "alice@example.com", entry["senderEmail"])
	assert.Equal(t, "bob@example.com", entry["receiverEmail"])
	assert.Equal(t, "v1.aa", entry["encryptedAmount"])
	assert.Equal(t, "v1.bb", entry["encryptedMessage"])
	assert.Equal(t, settled.Format(time.RFC3339), entry["settledAt"])

	// Empty sides encode as [] rather than null
	assert.Equal(t, []interface{}{}, data["received"])
}

func TestHistory_ReceivedRowsNameTheSender(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHistory := mocks.NewMockHistoryService(ctrl)
	h := NewHistoryHandler(mockHistory)

	accountID := uuid.New()
	mockHistory.EXPECT().History(gomock.Any(), accountID).Return(&ports.History{
		Received: []domain.TransferRecord{{
			Transaction:      domain.Transaction{ID: 9, AmountEnvelope: "v1.cc", MessageEnvelope: "v1.dd"},
			CounterpartEmail: "carol@example.com",
		}},
	}, nil)

	c, w := newJSONContext(t, http.MethodPost, "/history", nil)
	authed(c, accountID)
	c.Set(middleware.CtxEmail, "alice@example.com")

	h.History(c)

	require.Equal(t, http.StatusOK, w.Code)
	received := decodeBody(t, w)["received"].([]interface{})
	require.Len(t, received, 1)
	entry := received[0].(map[string]interface{})
	assert.Equal(t, float64(9), entry["_id"])
	assert.Equal(t, "carol@example.com", entry["senderEmail"])
	assert.Equal(t, "alice@example.com", entry["receiverEmail"])
	assert.Equal(t, "v1.cc", entry["encryptedAmount"])
	assert.Equal(t, "v1.dd", entry["encryptedMessage"])
}

func TestRequestDecryptOTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHistory := mocks.NewMockHistoryService(ctrl)
	h := NewHistoryHandler(mockHistory)

	accountID := uuid.New()
	mockHistory.EXPECT().RequestDecryptOTP(gomock.Any(), accountID).Return(nil)

	c, w := newJSONContext(t, http.MethodPost, "/history/request-decrypt-otp", nil)
	authed(c, accountID)

	h.RequestDecryptOTP(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OTP sent", decodeBody(t, w)["message"])
}

func TestDecrypt_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHistory := mocks.NewMockHistoryService(ctrl)
	h := NewHistoryHandler(mockHistory)

	accountID := uuid.New()
	mockHistory.EXPECT().Decrypt(gomock.Any(), accountID, int64(3), "654321").
		Return(&ports.DecryptedTransfer{TransactionID: 3, Amount: 40, Message: "hi"}, nil)

	c, w := newJSONContext(t, http.MethodPost, "/history/decrypt", dto.DecryptRequest{TransactionID: 3, OTP: "654321"})
	authed(c, accountID)

	h.Decrypt(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)
	assert.Equal(t, float64(40), data["amount"])
	assert.Equal(t, "hi", data["message"])
}

func TestDecrypt_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthorized", apperror.ErrUnauthorized(), http.StatusForbidden, "DEC_001"},
		{"corrupt", apperror.ErrCorrupt(errors.New("auth tag mismatch")), http.StatusInternalServerError, "DEC_002"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockHistory := mocks.NewMockHistoryService(ctrl)
			h := NewHistoryHandler(mockHistory)
			mockHistory.EXPECT().Decrypt(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.err)

			c, w := newJSONContext(t, http.MethodPost, "/history/decrypt", dto.DecryptRequest{TransactionID: 3, OTP: "000000"})
			authed(c, uuid.New())

			h.Decrypt(c)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decodeErrorCode(t, w))
			assert.NotContains(t, w.Body.String(), "auth tag")
		})
	}
}

// --- Chain Handler Tests ---

func TestChainList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockChain := mocks.NewMockChainService(ctrl)
	h := NewChainHandler(mockChain)

	stamped := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	genesis := domain.NewGenesisBlock()
	genesis.CreatedAt = stamped
	next := domain.NextBlock(genesis, 1)
	next.CreatedAt = stamped.Add(time.Minute)
	mockChain.EXPECT().ListChain(gomock.Any(), int64(0), defaultChainPage).Return([]domain.ChainBlock{genesis, next}, nil)

	c, w := newJSONContext(t, http.MethodGet, "/chain", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	blocks := decodeBody(t, w)["blocks"].([]interface{})
	require.Len(t, blocks, 2)
	first := blocks[0].(map[string]interface{})
	second := blocks[1].(map[string]interface{})

	assert.Nil(t, first["transactionId"])
	assert.Equal(t, "genesis", first["data"])
	assert.Equal(t, "2026-03-01T10:00:00Z", first["timestamp"])

	assert.Equal(t, float64(1), second["index"])
	assert.Equal(t, float64(1), second["transactionId"])
	assert.Equal(t, "1", second["data"])
	assert.Equal(t, "2026-03-01T10:01:00Z", second["timestamp"])
	assert.Equal(t, genesis.Hash, second["prevHash"])
	assert.Equal(t, next.Hash, second["hash"])
}

func TestChainList_Paging(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockChain := mocks.NewMockChainService(ctrl)
	h := NewChainHandler(mockChain)
	mockChain.EXPECT().ListChain(gomock.Any(), int64(5), 10).Return(nil, nil)

	c, w := newJSONContext(t, http.MethodGet, "/chain?from=5&limit=10", nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decodeBody(t, w)["blocks"])
}

func TestChainList_BadQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewChainHandler(mocks.NewMockChainService(ctrl))

	for _, q := range []string{"from=-1", "limit=5000", "from=abc"} {
		c, w := newJSONContext(t, http.MethodGet, "/chain?"+q, nil)
		h.List(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestChainVerify(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockChain := mocks.NewMockChainService(ctrl)
	h := NewChainHandler(mockChain)

	mockChain.EXPECT().VerifyIntegrity(gomock.Any()).Return(&domain.IntegrityReport{Valid: true, Length: 4, FirstBadIndex: -1}, nil)
	c, w := newJSONContext(t, http.MethodGet, "/chain/verify", nil)
	h.Verify(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, float64(4), data["length"])
	assert.NotContains(t, data, "firstBadIndex")

	mockChain.EXPECT().VerifyIntegrity(gomock.Any()).Return(&domain.IntegrityReport{Valid: false, Length: 4, FirstBadIndex: 2, Reason: "hash mismatch"}, nil)
	c, w = newJSONContext(t, http.MethodGet, "/chain/verify", nil)
	h.Verify(c)

	data = decodeBody(t, w)
	assert.Equal(t, false, data["valid"])
	assert.Equal(t, float64(2), data["firstBadIndex"])
}

// --- Health Check Tests ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck(t *testing.T) {
	c, w := newJSONContext(t, http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgres"})(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	c, w := newJSONContext(t, http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgres"}, stubChecker{name: "redis", err: errors.New("dial tcp: refused")})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]interface{})
	assert.Equal(t, "unhealthy", deps["redis"].(map[string]interface{})["status"])
	assert.Equal(t, "healthy", deps["postgres"].(map[string]interface{})["status"])
}

// --- Swagger Tests ---

func TestSwaggerUI(t *testing.T) {
	c, w := newJSONContext(t, http.MethodGet, "/swagger", nil)

	SwaggerUI(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "swagger-ui")
	assert.Contains(t, w.Body.String(), "/swagger/spec")
}

func TestSwaggerSpec(t *testing.T) {
	c, w := newJSONContext(t, http.MethodGet, "/swagger/spec", nil)

	SwaggerSpec(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
	assert.Contains(t, w.Body.String(), "/history/decrypt")
}
