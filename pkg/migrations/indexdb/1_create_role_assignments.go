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
		log.Println("creating role_assignments table...")
		if err := mghelper.CreateSchema(ctx, db, &indexstore.RoleAssignmentDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &indexstore.RoleAssignmentDao{}, "account_address", "role")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping role_assignments table...")
		return mghelper.DropTables(ctx, db, &indexstore.RoleAssignmentDao{})
	})
}
