package authz

import (
	"context"
	"fmt"

	apperrors "github.com/tokenforge/asset-gateway/pkg/app/errors"
)

// StaticResolver resolves the single system this gateway fronts. Requests may
// omit the system id; naming any other system is rejected.
type StaticResolver struct {
	system System
}

// NewStaticResolver creates a resolver pinned to the configured system.
func NewStaticResolver(id string, chainID uint64) *StaticResolver {
	return &StaticResolver{
		system: System{ID: id, ChainID: chainID},
	}
}

// Resolve returns the configured system. An empty id defaults to it.
func (r *StaticResolver) Resolve(_ context.Context, systemID string) (*System, error) {
	if systemID != "" && systemID != r.system.ID {
		return nil, apperrors.BadRequestError(
			fmt.Errorf("unknown system %q", systemID),
			"unknown system")
	}
	system := r.system
	return &system, nil
}
