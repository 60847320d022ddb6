package verification

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/tokenforge/asset-gateway/internal/metrics"
	apperrors "github.com/tokenforge/asset-gateway/pkg/app/errors"
	"github.com/tokenforge/asset-gateway/pkg/portal"
)

// PortalClient is the narrow portal surface the verification service needs.
//
//go:generate mockery --name PortalClient --output mocks --outpkg mocks --filename mock_portal_client.go --with-expecter
type PortalClient interface {
	CreateChallenges(ctx context.Context, wallet common.Address) ([]portal.Challenge, error)
	SubmitTransaction(ctx context.Context, req *portal.TransactionRequest) (common.Hash, error)
}

// Service binds a secondary factor to one transaction and submits it.
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	VerifyAndSubmit(ctx context.Context, wallet common.Address, method Method, code string, req *portal.TransactionRequest) (common.Hash, error)
}

type verificationService struct {
	client PortalClient
	logger *zap.Logger
}

// NewService creates the verification service.
func NewService(client PortalClient, logger *zap.Logger) Service {
	return &verificationService{
		client: client,
		logger: logger,
	}
}

// VerifyAndSubmit requests a fresh challenge for the wallet, derives the
// challenge response from the user-supplied code, and submits the transaction
// with the response attached.
//
// Challenges are single-use. A rejected response surfaces as a verification
// failure the caller may retry with a corrected code, but every retry goes
// through this method again to obtain a new challenge; the old secret and
// salt are dead after one use. The code never leaves this process: only the
// derived digest is transmitted, and neither is ever logged.
func (s *verificationService) VerifyAndSubmit(
	ctx context.Context,
	wallet common.Address,
	method Method,
	code string,
	req *portal.TransactionRequest,
) (common.Hash, error) {
	if req == nil {
		return common.Hash{}, apperrors.BadRequestError(nil, "nil transaction request")
	}
	if code == "" {
		return common.Hash{}, apperrors.BadRequestError(nil, "verification code is required")
	}

	challenges, err := s.client.CreateChallenges(ctx, wallet)
	if err != nil {
		metrics.VerificationAttempts.WithLabelValues(method.String(), "challenge_error").Inc()
		return common.Hash{}, fmt.Errorf("failed to request challenges: %w", err)
	}

	challenge, err := selectChallenge(challenges, method)
	if err != nil {
		metrics.VerificationAttempts.WithLabelValues(method.String(), "malformed").Inc()
		return common.Hash{}, err
	}

	// Bind the response to this transaction submission. The request is not
	// mutated on behalf of the caller beyond the challenge fields.
	submission := *req
	submission.ChallengeID = challenge.ID
	submission.ChallengeResponse = DeriveResponse(challenge.Salt, code, challenge.Secret)

	txHash, err := s.client.SubmitTransaction(ctx, &submission)
	if err != nil {
		outcome := "error"
		if apperrors.Is(err, apperrors.CategoryVerificationFailed) {
			outcome = "rejected"
		}
		metrics.VerificationAttempts.WithLabelValues(method.String(), outcome).Inc()
		return common.Hash{}, err
	}

	metrics.VerificationAttempts.WithLabelValues(method.String(), "accepted").Inc()
	return txHash, nil
}
