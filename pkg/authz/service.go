package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/tokenforge/asset-gateway/internal/metrics"
	apperrors "github.com/tokenforge/asset-gateway/pkg/app/errors"
	"github.com/tokenforge/asset-gateway/pkg/identity"
)

// ErrUnknownMutation is returned when a mutation has no entry in the policy
// table. The table is validated exhaustively at startup, so hitting this at
// request time is a wiring bug, not a user error.
var ErrUnknownMutation = errors.New("mutation has no registered authorization strategy")

// Service decides whether a caller may execute a privileged mutation.
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	Authorize(ctx context.Context, mutation string, caller common.Address) error
}

type authorizer struct {
	policy   *Policy
	reader   identity.Reader
	registry identity.IssuerRegistry
	logger   *zap.Logger
}

// NewService creates the authorization service. Snapshots are read fresh from
// the indexed ledger view on every call; nothing is cached across decisions.
func NewService(policy *Policy, reader identity.Reader, registry identity.IssuerRegistry, logger *zap.Logger) Service {
	return &authorizer{
		policy:   policy,
		reader:   reader,
		registry: registry,
		logger:   logger,
	}
}

// Authorize evaluates the mutation's declared strategy against the caller's
// current roles or claims. It returns nil when the caller is authorized, a
// NotAuthorized error naming the unmet requirement otherwise.
func (a *authorizer) Authorize(ctx context.Context, mutation string, caller common.Address) error {
	strat, ok := a.policy.Strategy(mutation)
	if !ok {
		metrics.AuthzDecisions.WithLabelValues(mutation, "error").Inc()
		return apperrors.GeneralError(fmt.Errorf("%w: %s", ErrUnknownMutation, mutation))
	}

	var err error
	switch strat.Kind {
	case StrategyRole:
		err = a.authorizeRoles(ctx, mutation, caller, strat.Requirement)
	case StrategyClaimTopic:
		err = a.authorizeIssuer(ctx, caller, strat.ClaimTopic)
	}

	outcome := "allowed"
	if err != nil {
		outcome = "denied"
		if !apperrors.Is(err, apperrors.CategoryNotAuthorized) {
			outcome = "error"
		}
	}
	metrics.AuthzDecisions.WithLabelValues(mutation, outcome).Inc()
	return err
}

func (a *authorizer) authorizeRoles(ctx context.Context, mutation string, caller common.Address, req Requirement) error {
	snapshot, err := a.reader.Snapshot(ctx, caller)
	if err != nil {
		return fmt.Errorf("failed to read access control snapshot: %w", err)
	}

	if !Satisfies(snapshot.Roles, req) {
		a.logger.Debug("role requirement not met",
			zap.String("mutation", mutation),
			zap.String("caller", caller.Hex()),
			zap.String("requirement", req.String()),
		)
		return apperrors.NotAuthorizedError(nil,
			fmt.Sprintf("caller does not satisfy role requirement %q", req.String()),
			req.String(),
		)
	}
	return nil
}

// authorizeIssuer gates trust-sensitive mutations on the caller being a
// registered trusted issuer for the topic. Roles are deliberately not
// consulted here: issuer authority does not derive from role assignment.
func (a *authorizer) authorizeIssuer(ctx context.Context, caller common.Address, topic uint64) error {
	issuers, err := a.registry.TrustedIssuers(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to read trusted issuer registry: %w", err)
	}

	for _, issuer := range issuers {
		if issuer == caller {
			return nil
		}
	}

	return apperrors.NotAuthorizedError(nil,
		fmt.Sprintf("caller is not a trusted issuer for claim topic %d", topic),
		fmt.Sprintf("trustedIssuer(topic=%d)", topic),
	)
}
