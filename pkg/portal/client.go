// Package portal implements the HTTP client for the ledger portal service:
// challenge issuance, privileged transaction submission, and receipt lookup.
// The portal is the consensus-facing collaborator; this client holds no state
// beyond its connection settings.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tokenforge/asset-gateway/internal/metrics"
	apperrors "github.com/tokenforge/asset-gateway/pkg/app/errors"
)

// Client is the portal HTTP API client.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a portal client from config and options.
func NewClient(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil portal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Portal error codes with a dedicated category mapping.
const (
	codeVerificationFailed = "VERIFICATION_FAILED"
	codeChallengeRejected  = "CHALLENGE_REJECTED"
)

// CreateChallenges requests one challenge per configured verification method
// for the wallet. Every call issues fresh challenges; the previous ones are
// invalidated portal-side.
func (c *Client) CreateChallenges(ctx context.Context, wallet common.Address) ([]Challenge, error) {
	reqBody := map[string]string{"walletAddress": wallet.Hex()}

	var resp struct {
		Challenges []Challenge `json:"challenges"`
	}
	if err := c.post(ctx, "/api/challenges", reqBody, &resp); err != nil {
		return nil, err
	}
	return resp.Challenges, nil
}

// SubmitTransaction submits a privileged transaction, with its challenge
// response when verification applies. Submission is not idempotent and is
// never retried here.
func (c *Client) SubmitTransaction(ctx context.Context, req *TransactionRequest) (common.Hash, error) {
	if req == nil {
		return common.Hash{}, apperrors.BadRequestError(nil, "nil transaction request")
	}

	var resp struct {
		TransactionHash common.Hash `json:"transactionHash"`
	}
	if err := c.post(ctx, "/api/transactions", req, &resp); err != nil {
		return common.Hash{}, err
	}

	c.logger.Info("Transaction submitted",
		zap.String("tx_hash", resp.TransactionHash.Hex()),
		zap.String("from", req.From.Hex()),
		zap.String("to", req.Address.Hex()),
	)
	return resp.TransactionHash, nil
}

// GetConfirmation fetches the receipt and indexer metadata for a transaction.
// Returns (nil, nil) while the transaction is not yet mined.
func (c *Client) GetConfirmation(ctx context.Context, txHash common.Hash) (*Confirmation, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, "/api/transactions/"+txHash.Hex(), nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.PortalRequests.WithLabelValues("get_confirmation", "unreachable").Inc()
		return nil, apperrors.UnavailableError(err, "portal unreachable")
	}
	defer httpResp.Body.Close()
	metrics.PortalRequests.WithLabelValues("get_confirmation", strconv.Itoa(httpResp.StatusCode)).Inc()

	if httpResp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, c.mapError(httpResp)
	}

	var conf Confirmation
	if err := json.NewDecoder(httpResp.Body).Decode(&conf); err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to decode confirmation: %w", err))
	}
	return &conf, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperrors.GeneralError(fmt.Errorf("failed to encode request: %w", err))
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.PortalRequests.WithLabelValues(path, "unreachable").Inc()
		return apperrors.UnavailableError(err, "portal unreachable")
	}
	defer httpResp.Body.Close()
	metrics.PortalRequests.WithLabelValues(path, strconv.Itoa(httpResp.StatusCode)).Inc()

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		return c.mapError(httpResp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return apperrors.GeneralError(fmt.Errorf("failed to decode portal response: %w", err))
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to build portal request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	return req, nil
}

// mapError converts a non-2xx portal response to the canonical taxonomy. The
// response body is read but never echoed verbatim into user-facing messages.
func (c *Client) mapError(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &body)

	cause := fmt.Errorf("portal returned status %d: %s", resp.StatusCode, body.Error)

	switch {
	case body.Code == codeVerificationFailed || body.Code == codeChallengeRejected:
		return apperrors.VerificationFailedError(cause, "challenge response rejected")
	case resp.StatusCode >= http.StatusInternalServerError:
		return apperrors.UnavailableError(cause, "portal error")
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.BadRequestError(cause, "portal rejected request")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperrors.UnauthenticatedError(cause, "portal rejected credentials")
	default:
		return apperrors.GeneralError(cause)
	}
}
