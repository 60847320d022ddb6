package indexstore

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenforge/asset-gateway/pkg/pgutil"
	mghelper "github.com/tokenforge/asset-gateway/pkg/pgutil/migrations"
)

var (
	testAccount = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testIssuer  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	otherIssuer = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, cleanup := pgutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	err := mghelper.CreateSchema(ctx, db, &RoleAssignmentDao{}, &ClaimDao{}, &TrustedIssuerDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	return NewStore(db)
}

func TestSnapshot(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := mghelper.InsertEntry(ctx, store.db,
		&RoleAssignmentDao{Role: "admin", AccountAddress: testAccount.Hex(), BlockNumber: 10},
		&RoleAssignmentDao{Role: "supplyManagement", AccountAddress: testAccount.Hex(), BlockNumber: 11},
		&ClaimDao{AccountAddress: testAccount.Hex(), Topic: 5, IssuerAddress: testIssuer.Hex(), Data: "kyc-ok"},
		&ClaimDao{AccountAddress: testAccount.Hex(), Topic: 7, IssuerAddress: testIssuer.Hex(), Revoked: true},
	)
	if err != nil {
		t.Fatalf("InsertEntry() failed: %v", err)
	}

	snap, err := store.Snapshot(ctx, testAccount)
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}

	if !snap.Roles.Has("admin") || !snap.Roles.Has("supplyManagement") {
		t.Errorf("roles = %v, want admin and supplyManagement", snap.Roles)
	}
	if len(snap.Identity.Claims) != 1 {
		t.Fatalf("claims = %d, want 1 (revoked claim excluded)", len(snap.Identity.Claims))
	}
	claim := snap.Identity.Claims[0]
	if claim.Topic != 5 || claim.Issuer != testIssuer || claim.Data != "kyc-ok" {
		t.Errorf("claim = %+v", claim)
	}
}

func TestSnapshot_AddressCaseInsensitive(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	// the indexer may store lowercase addresses; lookups use checksum casing
	account := common.HexToAddress("0xdeadbeefcafebabedeadbeefcafebabedeadbeef")
	err := mghelper.InsertEntry(ctx, store.db,
		&RoleAssignmentDao{Role: "admin", AccountAddress: "0xdeadbeefcafebabedeadbeefcafebabedeadbeef", BlockNumber: 1},
	)
	if err != nil {
		t.Fatalf("InsertEntry() failed: %v", err)
	}

	snap, err := store.Snapshot(ctx, account)
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	if !snap.Roles.Has("admin") {
		t.Error("lookup should match regardless of address casing")
	}
}

func TestSnapshot_UnknownAccountIsEmptyNotError(t *testing.T) {
	store := setupStore(t)

	snap, err := store.Snapshot(context.Background(), otherIssuer)
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	if len(snap.Roles) != 0 || len(snap.Identity.Claims) != 0 {
		t.Errorf("unknown account should yield an empty snapshot, got %+v", snap)
	}
}

func TestTrustedIssuers(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := mghelper.InsertEntry(ctx, store.db,
		&TrustedIssuerDao{Topic: 5, IssuerAddress: testIssuer.Hex()},
		&TrustedIssuerDao{Topic: 5, IssuerAddress: otherIssuer.Hex()},
		&TrustedIssuerDao{Topic: 9, IssuerAddress: testIssuer.Hex()},
	)
	if err != nil {
		t.Fatalf("InsertEntry() failed: %v", err)
	}

	issuers, err := store.TrustedIssuers(ctx, 5)
	if err != nil {
		t.Fatalf("TrustedIssuers() failed: %v", err)
	}
	if len(issuers) != 2 {
		t.Fatalf("issuers for topic 5 = %d, want 2", len(issuers))
	}

	issuers, err = store.TrustedIssuers(ctx, 1)
	if err != nil {
		t.Fatalf("TrustedIssuers() failed: %v", err)
	}
	if len(issuers) != 0 {
		t.Errorf("issuers for unregistered topic = %d, want 0", len(issuers))
	}
}

func TestHasRoleAssignments(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	has, err := store.HasRoleAssignments(ctx, testAccount)
	if err != nil {
		t.Fatalf("HasRoleAssignments() failed: %v", err)
	}
	if has {
		t.Error("no rows yet, want false")
	}

	err = mghelper.InsertEntry(ctx, store.db,
		&RoleAssignmentDao{Role: "minter", AccountAddress: testAccount.Hex(), BlockNumber: 3},
	)
	if err != nil {
		t.Fatalf("InsertEntry() failed: %v", err)
	}

	has, err = store.HasRoleAssignments(ctx, testAccount)
	if err != nil {
		t.Fatalf("HasRoleAssignments() failed: %v", err)
	}
	if !has {
		t.Error("row inserted, want true")
	}
}
