// Package indexstore reads the indexed ledger view (roles, claims, trusted
// issuers) from Postgres. It is strictly read-only from the gateway's side:
// the indexer owns the writes. Results are never cached here — authorization
// is consensus-critical and must see revocations on the next request.
package indexstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/uptrace/bun"

	apperrors "github.com/tokenforge/asset-gateway/pkg/app/errors"
	"github.com/tokenforge/asset-gateway/pkg/identity"
)

// Store is the Postgres implementation of identity.Reader and
// identity.IssuerRegistry.
type Store struct {
	db *bun.DB
}

// NewStore creates a read-model store over an open bun connection.
func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// normalizeAddr lowercases an address for storage-format comparison.
func normalizeAddr(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// Snapshot returns the account's current role set and claims as of the latest
// indexed block. An account with no rows yields an empty snapshot; only
// infrastructure failures are errors.
func (s *Store) Snapshot(ctx context.Context, account common.Address) (*identity.Snapshot, error) {
	addr := normalizeAddr(account)

	var roleDaos []RoleAssignmentDao
	err := s.db.NewSelect().
		Model(&roleDaos).
		Where("lower(account_address) = ?", addr).
		Scan(ctx)
	if err != nil {
		return nil, apperrors.UnavailableError(
			fmt.Errorf("failed to read role assignments: %w", err), "index store unavailable")
	}

	var claimDaos []ClaimDao
	err = s.db.NewSelect().
		Model(&claimDaos).
		Where("lower(account_address) = ?", addr).
		Where("revoked = false").
		Scan(ctx)
	if err != nil {
		return nil, apperrors.UnavailableError(
			fmt.Errorf("failed to read identity claims: %w", err), "index store unavailable")
	}

	roles := make(identity.RoleSet, len(roleDaos))
	for _, dao := range roleDaos {
		roles[dao.Role] = struct{}{}
	}

	claims := make([]identity.Claim, 0, len(claimDaos))
	for _, dao := range claimDaos {
		claim := identity.Claim{
			Topic:     uint64(dao.Topic),
			Issuer:    common.HexToAddress(dao.IssuerAddress),
			Signature: dao.Signature,
			Data:      dao.Data,
		}
		if dao.URI != nil {
			claim.URI = *dao.URI
		}
		claims = append(claims, claim)
	}

	return &identity.Snapshot{
		Roles: roles,
		Identity: identity.UserIdentity{
			Address: account,
			Claims:  claims,
		},
	}, nil
}

// TrustedIssuers returns the issuer addresses registered for a claim topic.
// A topic with no registered issuers yields an empty list.
func (s *Store) TrustedIssuers(ctx context.Context, topic uint64) ([]common.Address, error) {
	var daos []TrustedIssuerDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("topic = ?", int64(topic)).
		Scan(ctx)
	if err != nil {
		return nil, apperrors.UnavailableError(
			fmt.Errorf("failed to read trusted issuers: %w", err), "index store unavailable")
	}

	issuers := make([]common.Address, 0, len(daos))
	for _, dao := range daos {
		issuers = append(issuers, common.HexToAddress(dao.IssuerAddress))
	}
	return issuers, nil
}

// HasRoleAssignments reports whether any role assignment rows exist for the
// account. Used with the index waiter to confirm freshly granted roles have
// been indexed.
func (s *Store) HasRoleAssignments(ctx context.Context, account common.Address) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*RoleAssignmentDao)(nil)).
		Where("lower(account_address) = ?", normalizeAddr(account)).
		Exists(ctx)
	if err != nil {
		return false, apperrors.UnavailableError(
			fmt.Errorf("failed to check role assignments: %w", err), "index store unavailable")
	}
	return exists, nil
}
