package authz

// TODO: remove the mock impl and use mockery to generate mock

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenforge/asset-gateway/pkg/identity"
)

// MockReader is a mock implementation of identity.Reader
type MockReader struct {
	SnapshotFunc func(ctx context.Context, account common.Address) (*identity.Snapshot, error)
}

func (m *MockReader) Snapshot(ctx context.Context, account common.Address) (*identity.Snapshot, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx, account)
	}
	return &identity.Snapshot{Roles: identity.NewRoleSet()}, nil
}

// MockIssuerRegistry is a mock implementation of identity.IssuerRegistry
type MockIssuerRegistry struct {
	TrustedIssuersFunc func(ctx context.Context, topic uint64) ([]common.Address, error)
}

func (m *MockIssuerRegistry) TrustedIssuers(ctx context.Context, topic uint64) ([]common.Address, error) {
	if m.TrustedIssuersFunc != nil {
		return m.TrustedIssuersFunc(ctx, topic)
	}
	return nil, nil
}

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, token string) (common.Address, error)
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (common.Address, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	return common.Address{}, nil
}

// MockSystemResolver is a mock implementation of SystemResolver
type MockSystemResolver struct {
	ResolveFunc func(ctx context.Context, systemID string) (*System, error)
}

func (m *MockSystemResolver) Resolve(ctx context.Context, systemID string) (*System, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, systemID)
	}
	return &System{ID: systemID}, nil
}

// MockService is a mock implementation of Service
type MockService struct {
	AuthorizeFunc func(ctx context.Context, mutation string, caller common.Address) error
}

func (m *MockService) Authorize(ctx context.Context, mutation string, caller common.Address) error {
	if m.AuthorizeFunc != nil {
		return m.AuthorizeFunc(ctx, mutation, caller)
	}
	return nil
}
