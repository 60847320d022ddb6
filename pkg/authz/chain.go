package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "github.com/tokenforge/asset-gateway/pkg/app/errors"
	"github.com/tokenforge/asset-gateway/pkg/identity"
)

// Request carries a mutation invocation through the middleware chain. Stages
// fill in fields as they run; later stages may rely on earlier ones having
// completed because the chain short-circuits on the first failure.
type Request struct {
	Mutation string
	Token    string
	SystemID string
	Input    map[string]any

	// Resolved by the chain.
	Caller   common.Address
	System   *System
	Snapshot *identity.Snapshot
}

// System is the resolved tenant context a mutation executes against.
type System struct {
	ID      string
	ChainID uint64
}

// Authenticator resolves a caller session token to a wallet address.
//
//go:generate mockery --name Authenticator --output mocks --outpkg mocks --filename mock_authenticator.go --with-expecter
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (common.Address, error)
}

// SystemResolver resolves the tenant/system a request addresses.
//
//go:generate mockery --name SystemResolver --output mocks --outpkg mocks --filename mock_system_resolver.go --with-expecter
type SystemResolver interface {
	Resolve(ctx context.Context, systemID string) (*System, error)
}

// Handler is the terminal stage of a chain.
type Handler func(ctx context.Context, req *Request) error

// Stage is one link of the middleware chain. A non-nil error stops the chain;
// no later stage runs.
type Stage func(ctx context.Context, req *Request) error

// Chain composes the fixed authorization pipeline:
// authenticate -> resolve system -> resolve identity -> evaluate strategy.
type Chain struct {
	authn  Authenticator
	stages []Stage
	logger *zap.Logger
}

// NewChain builds the standard chain around the given collaborators.
func NewChain(
	authn Authenticator,
	systems SystemResolver,
	reader identity.Reader,
	authorizer Service,
	logger *zap.Logger,
) *Chain {
	return &Chain{
		authn:  authn,
		logger: logger,
		stages: []Stage{
			authenticateStage(authn),
			resolveSystemStage(systems),
			resolveIdentityStage(reader),
			authorizeStage(authorizer),
		},
	}
}

// Execute runs every stage in order, then the handler. The first failure
// short-circuits and is normalized to the canonical error taxonomy.
func (c *Chain) Execute(ctx context.Context, req *Request, handler Handler) error {
	for _, stage := range c.stages {
		if err := stage(ctx, req); err != nil {
			return Normalize(err)
		}
	}
	if handler == nil {
		return nil
	}
	return Normalize(handler(ctx, req))
}

// Authenticate runs only the authentication stage, for operations that need a
// verified caller but carry no mutation to authorize.
func (c *Chain) Authenticate(ctx context.Context, req *Request) error {
	return Normalize(authenticateStage(c.authn)(ctx, req))
}

func authenticateStage(authn Authenticator) Stage {
	return func(ctx context.Context, req *Request) error {
		caller, err := authn.Authenticate(ctx, req.Token)
		if err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		req.Caller = caller
		return nil
	}
}

func resolveSystemStage(systems SystemResolver) Stage {
	return func(ctx context.Context, req *Request) error {
		system, err := systems.Resolve(ctx, req.SystemID)
		if err != nil {
			return fmt.Errorf("failed to resolve system %q: %w", req.SystemID, err)
		}
		req.System = system
		return nil
	}
}

func resolveIdentityStage(reader identity.Reader) Stage {
	return func(ctx context.Context, req *Request) error {
		snapshot, err := reader.Snapshot(ctx, req.Caller)
		if err != nil {
			return fmt.Errorf("failed to resolve caller identity: %w", err)
		}
		req.Snapshot = snapshot
		return nil
	}
}

func authorizeStage(authorizer Service) Stage {
	return func(ctx context.Context, req *Request) error {
		return authorizer.Authorize(ctx, req.Mutation, req.Caller)
	}
}

// Normalize remaps an error to the canonical taxonomy. Errors that already
// carry a ServiceError anywhere in their cause chain pass through unchanged;
// known sentinel causes are remapped with the original error preserved for
// diagnostics; anything else becomes a general error.
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		return err
	}

	switch {
	case errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrSignatureInvalid),
		errors.Is(err, jwt.ErrTokenNotValidYet):
		return apperrors.UnauthenticatedError(err, "invalid session token")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.UnavailableError(err, "request canceled or timed out")
	default:
		return apperrors.GeneralError(err)
	}
}
