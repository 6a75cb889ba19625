package repository

import (
	"context"
	"strings"
	"testing"

	"timetracker-backend/internal/database"
	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/tenancy"
	"timetracker-backend/internal/testutils"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RowPolicyTestSuite exercises the database-native row policies beneath
// the application scope layer. The shared container connects as the
// superuser, which Postgres exempts from row security, so this suite
// opens a second connection under a plain application role and reads
// through it.
type RowPolicyTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	appDB         *gorm.DB
	orgRepo       *OrganizationRepository
	userRepo      *UserRepository
	memberRepo    *MembershipRepository
	factories     *testutils.FactorySet
	orgA          *models.Organization
	orgB          *models.Organization
}

// SetupSuite runs before all tests in the suite
func (suite *RowPolicyTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())
	suite.orgRepo = NewOrganizationRepository(suite.baseTestSuite.DB)
	suite.userRepo = NewUserRepository(suite.baseTestSuite.DB)
	suite.memberRepo = NewMembershipRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()

	owner := suite.baseTestSuite.DB
	suite.NoError(owner.Exec(`DO $$ BEGIN
		CREATE ROLE app_user LOGIN PASSWORD 'apppass';
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`).Error)
	suite.NoError(owner.Exec(`GRANT USAGE ON SCHEMA public TO app_user`).Error)
	suite.NoError(owner.Exec(`GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA public TO app_user`).Error)

	suite.NoError(database.SetupRowPolicies(owner))

	dsn := strings.Replace(suite.baseTestSuite.DSN(), "testuser:testpass", "app_user:apppass", 1)
	appDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	suite.Require().NoError(err)
	suite.appDB = appDB
}

// TearDownSuite runs after all tests in the suite
func (suite *RowPolicyTestSuite) TearDownSuite() {
	if suite.appDB != nil {
		if sqlDB, err := suite.appDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	// Leave the shared container the way the other suites expect it.
	owner := suite.baseTestSuite.DB
	for _, table := range []string{"memberships", "projects", "time_entries"} {
		owner.Exec(`DROP POLICY IF EXISTS tenant_isolation ON ` + table)
		owner.Exec(`ALTER TABLE ` + table + ` NO FORCE ROW LEVEL SECURITY`)
		owner.Exec(`ALTER TABLE ` + table + ` DISABLE ROW LEVEL SECURITY`)
	}
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *RowPolicyTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()

	// Seed one membership per organization through the owner connection,
	// which row security does not bind.
	suite.orgA = suite.factories.Organizations.Create()
	suite.orgB = suite.factories.Organizations.Create()
	suite.NoError(suite.orgRepo.Create(suite.orgA))
	suite.NoError(suite.orgRepo.Create(suite.orgB))
	for _, org := range []*models.Organization{suite.orgA, suite.orgB} {
		user := suite.factories.Users.Create()
		suite.NoError(suite.userRepo.Create(user))
		suite.NoError(suite.memberRepo.Create(suite.factories.Memberships.Create(org.ID, user.ID)))
	}
}

// TearDownTest runs after each test
func (suite *RowPolicyTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

func (suite *RowPolicyTestSuite) countMemberships(ctx context.Context) int64 {
	var count int64
	err := database.RunTenantScoped(ctx, suite.appDB, func(tx *gorm.DB) error {
		return tx.Model(&models.Membership{}).Count(&count).Error
	})
	suite.NoError(err)
	return count
}

// TestTenantSeesOnlyOwnRows tests that the policy filters by the active organization
func (suite *RowPolicyTestSuite) TestTenantSeesOnlyOwnRows() {
	ctxA := tenancy.WithOrganization(context.Background(), suite.orgA.ID)
	suite.Equal(int64(1), suite.countMemberships(ctxA))

	var memberships []models.Membership
	err := database.RunTenantScoped(ctxA, suite.appDB, func(tx *gorm.DB) error {
		return tx.Find(&memberships).Error
	})
	suite.NoError(err)
	suite.Len(memberships, 1)
	suite.Equal(suite.orgA.ID, memberships[0].OrganizationID)

	ctxB := tenancy.WithOrganization(context.Background(), suite.orgB.ID)
	suite.Equal(int64(1), suite.countMemberships(ctxB))
}

// TestSystemContextSeesAllRows tests the maintenance bypass
func (suite *RowPolicyTestSuite) TestSystemContextSeesAllRows() {
	ctx := tenancy.WithSystem(context.Background())
	suite.Equal(int64(2), suite.countMemberships(ctx))
}

// TestFailsClosedWithoutOrganization tests that no session variable means no query
func (suite *RowPolicyTestSuite) TestFailsClosedWithoutOrganization() {
	err := database.RunTenantScoped(context.Background(), suite.appDB, func(tx *gorm.DB) error {
		return tx.Model(&models.Membership{}).Count(new(int64)).Error
	})
	suite.ErrorIs(err, apperrors.ErrNoActiveOrganization)
}

// TestUnscopedConnectionSeesNothing tests that the policy alone hides every
// row when the session variable is absent, independent of the scope layer
func (suite *RowPolicyTestSuite) TestUnscopedConnectionSeesNothing() {
	var count int64
	suite.NoError(suite.appDB.Model(&models.Membership{}).Count(&count).Error)
	suite.Equal(int64(0), count)
}

// TestCrossTenantWriteRejected tests that the policy blocks writes into another tenant
func (suite *RowPolicyTestSuite) TestCrossTenantWriteRejected() {
	user := suite.factories.Users.Create()
	suite.NoError(suite.userRepo.Create(user))

	ctxA := tenancy.WithOrganization(context.Background(), suite.orgA.ID)
	foreign := suite.factories.Memberships.Create(suite.orgB.ID, user.ID)
	err := database.RunTenantScoped(ctxA, suite.appDB, func(tx *gorm.DB) error {
		return tx.Create(foreign).Error
	})
	suite.Error(err)
}

// TestRowPolicyTestSuite runs the test suite
func TestRowPolicyTestSuite(t *testing.T) {
	suite.Run(t, new(RowPolicyTestSuite))
}
