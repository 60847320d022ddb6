// Package identity defines the on-chain identity and access-control types
// observed through the indexed read model.
package identity

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Claim is a signed attestation about an identity, issued by a trusted issuer
// and scoped to a topic (KYC, collateral, ...). Claims are issued and revoked
// externally; this subsystem only reads them.
type Claim struct {
	Topic     uint64
	Issuer    common.Address
	Signature string
	Data      string
	URI       string
}

// UserIdentity is an account together with the claims issued about it.
type UserIdentity struct {
	Address common.Address
	Claims  []Claim
}

// ClaimsForTopic returns the identity's claims scoped to the given topic.
func (u *UserIdentity) ClaimsForTopic(topic uint64) []Claim {
	var out []Claim
	for _, c := range u.Claims {
		if c.Topic == topic {
			out = append(out, c)
		}
	}
	return out
}

// RoleSet is the set of role names held by an account.
type RoleSet map[string]struct{}

// NewRoleSet builds a RoleSet from role names.
func NewRoleSet(roles ...string) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether the role is in the set.
func (s RoleSet) Has(role string) bool {
	_, ok := s[role]
	return ok
}

// Snapshot is the point-in-time view of an account used for a single
// authorization decision. It is fetched fresh per request and must not be
// cached: role revocation takes effect on the very next decision.
type Snapshot struct {
	Roles    RoleSet
	Identity UserIdentity
}

// Reader obtains account snapshots from the indexed ledger view.
//
// An account with no on-chain presence yields an empty snapshot, not an
// error. Infrastructure failures surface as SERVICE_UNAVAILABLE.
//
//go:generate mockery --name Reader --output mocks --outpkg mocks --filename mock_reader.go --with-expecter
type Reader interface {
	Snapshot(ctx context.Context, account common.Address) (*Snapshot, error)
}

// IssuerRegistry looks up the trusted issuers registered for a claim topic.
//
//go:generate mockery --name IssuerRegistry --output mocks --outpkg mocks --filename mock_issuer_registry.go --with-expecter
type IssuerRegistry interface {
	TrustedIssuers(ctx context.Context, topic uint64) ([]common.Address, error)
}
