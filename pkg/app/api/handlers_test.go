package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	apperrors "github.com/tokenforge/asset-gateway/pkg/app/errors"
	"github.com/tokenforge/asset-gateway/pkg/authz"
	"github.com/tokenforge/asset-gateway/pkg/config"
	"github.com/tokenforge/asset-gateway/pkg/confirm"
	"github.com/tokenforge/asset-gateway/pkg/identity"
	"github.com/tokenforge/asset-gateway/pkg/portal"
	"github.com/tokenforge/asset-gateway/pkg/verification"
)

// TODO: remove the mock impl and use mockery to generate mock

type mockAuthenticator struct {
	authenticateFunc func(ctx context.Context, token string) (common.Address, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (common.Address, error) {
	if m.authenticateFunc != nil {
		return m.authenticateFunc(ctx, token)
	}
	return common.Address{}, nil
}

type mockVerifier struct {
	verifyFunc func(ctx context.Context, wallet common.Address, method verification.Method, code string, req *portal.TransactionRequest) (common.Hash, error)
}

func (m *mockVerifier) VerifyAndSubmit(ctx context.Context, wallet common.Address, method verification.Method, code string, req *portal.TransactionRequest) (common.Hash, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, wallet, method, code, req)
	}
	return common.Hash{}, nil
}

type mockReceiptSource struct {
	getConfirmationFunc func(ctx context.Context, txHash common.Hash) (*portal.Confirmation, error)
}

func (m *mockReceiptSource) GetConfirmation(ctx context.Context, txHash common.Hash) (*portal.Confirmation, error) {
	if m.getConfirmationFunc != nil {
		return m.getConfirmationFunc(ctx, txHash)
	}
	return nil, nil
}

type staticReader struct {
	roles []string
}

func (r *staticReader) Snapshot(_ context.Context, account common.Address) (*identity.Snapshot, error) {
	return &identity.Snapshot{
		Roles:    identity.NewRoleSet(r.roles...),
		Identity: identity.UserIdentity{Address: account},
	}, nil
}

type staticRegistry struct{}

func (r *staticRegistry) TrustedIssuers(_ context.Context, _ uint64) ([]common.Address, error) {
	return nil, nil
}

var (
	testCaller = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testTarget = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testHash   = common.HexToHash("0xabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcd")
)

type testDeps struct {
	verifier    *mockVerifier
	receipts    *mockReceiptSource
	callerRoles []string
}

func newTestRouter(t *testing.T, deps testDeps) http.Handler {
	t.Helper()

	authn := &mockAuthenticator{
		authenticateFunc: func(_ context.Context, token string) (common.Address, error) {
			if token != "valid-token" {
				return common.Address{}, apperrors.UnauthenticatedError(nil, "invalid session token")
			}
			return testCaller, nil
		},
	}
	if deps.verifier == nil {
		deps.verifier = &mockVerifier{
			verifyFunc: func(_ context.Context, _ common.Address, _ verification.Method, _ string, _ *portal.TransactionRequest) (common.Hash, error) {
				return testHash, nil
			},
		}
	}
	if deps.receipts == nil {
		deps.receipts = &mockReceiptSource{}
	}
	if deps.callerRoles == nil {
		deps.callerRoles = []string{"admin"}
	}

	policy, err := authz.NewPolicy(map[string]authz.Strategy{
		"mint": authz.RoleStrategy(authz.Role("admin")),
	})
	if err != nil {
		t.Fatalf("NewPolicy() failed: %v", err)
	}

	logger := zap.NewNop()
	reader := &staticReader{roles: deps.callerRoles}
	chain := authz.NewChain(
		authn,
		authz.NewStaticResolver("ledger-1", 31337),
		reader,
		authz.NewService(policy, reader, &staticRegistry{}, logger),
		logger,
	)

	h := &handler{
		chain:    chain,
		verifier: deps.verifier,
		miner:    confirm.NewMiningWaiter(deps.receipts, time.Millisecond, 50*time.Millisecond, logger),
		indexer:  confirm.NewIndexWaiter(3, time.Millisecond, logger),
		logger:   logger,
	}

	srv := &Server{cfg: &config.Config{}}
	return srv.setupRouter(h)
}

func postJSON(t *testing.T, router http.Handler, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validMutationBody() map[string]any {
	return map[string]any{
		"to":                 testTarget.Hex(),
		"value":              "100",
		"verificationMethod": "PINCODE",
		"code":               "123456",
	}
}

func TestSubmitMutation(t *testing.T) {
	var gotWallet common.Address
	var gotMethod verification.Method
	verifier := &mockVerifier{
		verifyFunc: func(_ context.Context, wallet common.Address, method verification.Method, code string, req *portal.TransactionRequest) (common.Hash, error) {
			gotWallet = wallet
			gotMethod = method
			if code != "123456" {
				t.Errorf("code = %q", code)
			}
			if req.Address != testTarget || req.From != testCaller {
				t.Errorf("transaction request = %+v", req)
			}
			return testHash, nil
		},
	}
	router := newTestRouter(t, testDeps{verifier: verifier})

	rec := postJSON(t, router, "/api/v1/mutations/mint", "valid-token", validMutationBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TransactionHash != testHash.Hex() {
		t.Errorf("transactionHash = %q", resp.TransactionHash)
	}
	if gotWallet != testCaller {
		t.Errorf("verified wallet = %s, want authenticated caller", gotWallet.Hex())
	}
	if gotMethod != verification.MethodPincode {
		t.Errorf("method = %v, want PINCODE", gotMethod)
	}
}

func TestSubmitMutation_Unauthenticated(t *testing.T) {
	called := false
	verifier := &mockVerifier{
		verifyFunc: func(_ context.Context, _ common.Address, _ verification.Method, _ string, _ *portal.TransactionRequest) (common.Hash, error) {
			called = true
			return testHash, nil
		},
	}
	router := newTestRouter(t, testDeps{verifier: verifier})

	rec := postJSON(t, router, "/api/v1/mutations/mint", "bad-token", validMutationBody())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if called {
		t.Error("nothing should be verified without a session")
	}
}

func TestSubmitMutation_Denied(t *testing.T) {
	called := false
	verifier := &mockVerifier{
		verifyFunc: func(_ context.Context, _ common.Address, _ verification.Method, _ string, _ *portal.TransactionRequest) (common.Hash, error) {
			called = true
			return testHash, nil
		},
	}
	router := newTestRouter(t, testDeps{verifier: verifier, callerRoles: []string{"viewer"}})

	rec := postJSON(t, router, "/api/v1/mutations/mint", "valid-token", validMutationBody())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if called {
		t.Error("denied mutation must not reach verification")
	}

	var payload struct {
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Details["requirement"] != "admin" {
		t.Errorf("details = %v, want the unmet requirement", payload.Details)
	}
}

func TestSubmitMutation_UnknownMutation(t *testing.T) {
	router := newTestRouter(t, testDeps{})

	rec := postJSON(t, router, "/api/v1/mutations/selfDestruct", "valid-token", validMutationBody())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 for unregistered mutation", rec.Code)
	}
}

func TestSubmitMutation_BadInput(t *testing.T) {
	router := newTestRouter(t, testDeps{})

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing code", map[string]any{"to": testTarget.Hex(), "verificationMethod": "PINCODE"}},
		{"unknown method", map[string]any{"to": testTarget.Hex(), "verificationMethod": "FACE_ID", "code": "1"}},
		{"invalid target", map[string]any{"to": "nope", "verificationMethod": "PINCODE", "code": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/api/v1/mutations/mint", "valid-token", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSubmitMutation_WaitForMining(t *testing.T) {
	receipts := &mockReceiptSource{
		getConfirmationFunc: func(_ context.Context, txHash common.Hash) (*portal.Confirmation, error) {
			return &portal.Confirmation{
				Receipt: &portal.Receipt{
					Status:          portal.StatusSuccess,
					BlockNumber:     42,
					TransactionHash: txHash,
				},
			}, nil
		},
	}
	router := newTestRouter(t, testDeps{receipts: receipts})

	body := validMutationBody()
	body["waitForMining"] = true
	rec := postJSON(t, router, "/api/v1/mutations/mint", "valid-token", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != portal.StatusSuccess || resp.BlockNumber != 42 {
		t.Errorf("response = %+v", resp)
	}
}

func TestSubmitMutation_RevertSurfaces(t *testing.T) {
	receipts := &mockReceiptSource{
		getConfirmationFunc: func(_ context.Context, txHash common.Hash) (*portal.Confirmation, error) {
			return &portal.Confirmation{
				Receipt: &portal.Receipt{
					Status:          portal.StatusReverted,
					RevertReason:    "cap exceeded",
					BlockNumber:     42,
					TransactionHash: txHash,
				},
			}, nil
		},
	}
	router := newTestRouter(t, testDeps{receipts: receipts})

	body := validMutationBody()
	body["waitForMining"] = true
	rec := postJSON(t, router, "/api/v1/mutations/mint", "valid-token", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 for revert", rec.Code)
	}
}

func TestSubmitTransaction(t *testing.T) {
	router := newTestRouter(t, testDeps{})

	rec := postJSON(t, router, "/api/v1/transactions", "valid-token", map[string]any{
		"to":                 testTarget.Hex(),
		"verificationMethod": "OTP",
		"code":               "654321",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TransactionHash != testHash.Hex() {
		t.Errorf("transactionHash = %q", resp.TransactionHash)
	}
}

func TestWaitForTransaction(t *testing.T) {
	receipts := &mockReceiptSource{
		getConfirmationFunc: func(_ context.Context, txHash common.Hash) (*portal.Confirmation, error) {
			return &portal.Confirmation{
				Receipt: &portal.Receipt{
					Status:          portal.StatusSuccess,
					BlockNumber:     7,
					TransactionHash: txHash,
				},
			}, nil
		},
	}
	router := newTestRouter(t, testDeps{receipts: receipts})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/"+testHash.Hex()+"/wait", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.BlockNumber != 7 || resp.Status != portal.StatusSuccess {
		t.Errorf("response = %+v", resp)
	}
}

func TestWaitForTransaction_Timeout(t *testing.T) {
	router := newTestRouter(t, testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/"+testHash.Hex()+"/wait", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
