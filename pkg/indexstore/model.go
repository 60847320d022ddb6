package indexstore

import (
	"time"

	"github.com/uptrace/bun"
)

// RoleAssignmentDao maps to the 'role_assignments' table populated by the
// ledger indexer. One row per (role, account) grant currently in effect.
type RoleAssignmentDao struct {
	bun.BaseModel  `bun:"table:role_assignments,alias:ra"`
	ID             int64     `bun:"id,pk,autoincrement"`
	Role           string    `bun:"role,notnull,type:varchar(64)"`
	AccountAddress string    `bun:"account_address,notnull,type:varchar(42)"`
	BlockNumber    int64     `bun:"block_number,notnull"`
	IndexedAt      time.Time `bun:"indexed_at,nullzero,default:current_timestamp"`
}

// ClaimDao maps to the 'identity_claims' table: claims issued about an
// identity, as observed on chain.
type ClaimDao struct {
	bun.BaseModel  `bun:"table:identity_claims,alias:ic"`
	ID             int64     `bun:"id,pk,autoincrement"`
	AccountAddress string    `bun:"account_address,notnull,type:varchar(42)"`
	Topic          int64     `bun:"topic,notnull"`
	IssuerAddress  string    `bun:"issuer_address,notnull,type:varchar(42)"`
	Signature      string    `bun:"signature,type:text"`
	Data           string    `bun:"data,type:text"`
	URI            *string   `bun:"uri,type:varchar(500)"`
	Revoked        bool      `bun:"revoked,notnull,default:false"`
	IndexedAt      time.Time `bun:"indexed_at,nullzero,default:current_timestamp"`
}

// TrustedIssuerDao maps to the 'trusted_issuers' table: the registry of
// issuers authorized for a claim topic.
type TrustedIssuerDao struct {
	bun.BaseModel `bun:"table:trusted_issuers,alias:ti"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Topic         int64     `bun:"topic,notnull"`
	IssuerAddress string    `bun:"issuer_address,notnull,type:varchar(42)"`
	IndexedAt     time.Time `bun:"indexed_at,nullzero,default:current_timestamp"`
}
