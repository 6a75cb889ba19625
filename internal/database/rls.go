package database

import (
	"context"
	"fmt"

	"timetracker-backend/internal/tenancy"

	"gorm.io/gorm"
)

// tenantScopedTables lists every table carrying an organization_id that
// row policies guard. The organizations table itself is excluded: it is
// the tenant registry, not tenant data.
var tenantScopedTables = []string{
	"memberships",
	"projects",
	"time_entries",
}

// systemOrgSetting is the session value that bypasses row policies.
// Only RunTenantScoped sets it, and only for system contexts.
const systemOrgSetting = "system"

// SetupRowPolicies enables row-level security on every tenant-scoped
// table and installs a policy comparing the row's organization_id with
// the per-transaction app.current_org_id setting. FORCE is applied so
// the policy also binds the table owner, which is what the application
// role typically is.
func SetupRowPolicies(db *gorm.DB) error {
	for _, table := range tenantScopedTables {
		stmts := []string{
			fmt.Sprintf(`ALTER TABLE %s ENABLE ROW LEVEL SECURITY`, table),
			fmt.Sprintf(`ALTER TABLE %s FORCE ROW LEVEL SECURITY`, table),
			fmt.Sprintf(`DROP POLICY IF EXISTS tenant_isolation ON %s`, table),
			fmt.Sprintf(
				`CREATE POLICY tenant_isolation ON %s USING (
					current_setting('app.current_org_id', true) = '%s'
					OR organization_id::text = current_setting('app.current_org_id', true)
				)`, table, systemOrgSetting),
		}
		for _, stmt := range stmts {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("policy on %s: %w", table, err)
			}
		}
	}
	return nil
}

// RunTenantScoped runs fn inside a transaction whose connection carries
// the active organization in app.current_org_id, so row policies can
// compare it against each row. The setting is transaction-local
// (set_config with is_local=true); it cannot leak onto a pooled
// connection after commit or rollback. Without an active organization it
// fails closed before touching the database.
func RunTenantScoped(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	setting := systemOrgSetting
	if !tenancy.IsSystem(ctx) {
		orgID, err := tenancy.OrganizationID(ctx)
		if err != nil {
			return err
		}
		setting = orgID.String()
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`SELECT set_config('app.current_org_id', ?, true)`, setting).Error; err != nil {
			return fmt.Errorf("set tenant session variable: %w", err)
		}
		return fn(tx)
	})
}
