package indexdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/tokenforge/asset-gateway/pkg/indexstore"
	mghelper "github.com/tokenforge/asset-gateway/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating identity_claims table...")
		if err := mghelper.CreateSchema(ctx, db, &indexstore.ClaimDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &indexstore.ClaimDao{}, "account_address", "topic")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping identity_claims table...")
		return mghelper.DropTables(ctx, db, &indexstore.ClaimDao{})
	})
}
