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
		log.Println("creating trusted_issuers table...")
		if err := mghelper.CreateSchema(ctx, db, &indexstore.TrustedIssuerDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &indexstore.TrustedIssuerDao{}, "topic")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping trusted_issuers table...")
		return mghelper.DropTables(ctx, db, &indexstore.TrustedIssuerDao{})
	})
}
