package repository

import (
	"context"
	"testing"
	"time"

	"timetracker-backend/internal/database/models"
	"timetracker-backend/internal/tenancy"
	"timetracker-backend/internal/testutils"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// TimeEntryRepositoryTestSuite tests the TimeEntryRepository
type TimeEntryRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *TimeEntryRepository
	orgRepo       *OrganizationRepository
	userRepo      *UserRepository
	memberRepo    *MembershipRepository
	projectRepo   *ProjectRepository
	factories     *testutils.FactorySet
}

// SetupSuite runs before all tests in the suite
func (suite *TimeEntryRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())
	suite.repo = NewTimeEntryRepository(suite.baseTestSuite.DB)
	suite.orgRepo = NewOrganizationRepository(suite.baseTestSuite.DB)
	suite.userRepo = NewUserRepository(suite.baseTestSuite.DB)
	suite.memberRepo = NewMembershipRepository(suite.baseTestSuite.DB)
	suite.projectRepo = NewProjectRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *TimeEntryRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *TimeEntryRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
}

// TearDownTest runs after each test
func (suite *TimeEntryRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

type timeEntryFixture struct {
	ctx        context.Context
	org        *models.Organization
	membership *models.Membership
	project    *models.Project
}

func (suite *TimeEntryRepositoryTestSuite) createFixture() *timeEntryFixture {
	org := suite.factories.Organizations.Create()
	suite.NoError(suite.orgRepo.Create(org))

	user := suite.factories.Users.Create()
	suite.NoError(suite.userRepo.Create(user))

	membership := suite.factories.Memberships.Create(org.ID, user.ID)
	suite.NoError(suite.memberRepo.Create(membership))

	ctx := tenancy.WithOrganization(context.Background(), org.ID)
	project := suite.factories.Projects.Create(org.ID)
	suite.NoError(suite.projectRepo.Create(ctx, project))

	return &timeEntryFixture{ctx: ctx, org: org, membership: membership, project: project}
}

// TestCreateAndGetByID tests entry creation and attribution
func (suite *TimeEntryRepositoryTestSuite) TestCreateAndGetByID() {
	fx := suite.createFixture()
	entry := suite.factories.TimeEntries.Create(fx.org.ID, fx.project.ID, fx.membership.ID)
	suite.NoError(suite.repo.Create(fx.ctx, entry))

	retrieved, err := suite.repo.GetByID(fx.ctx, entry.ID)
	suite.NoError(err)
	suite.Equal(fx.membership.ID, retrieved.MembershipID)
	suite.Equal(fx.project.ID, retrieved.ProjectID)
	suite.Equal(fx.org.ID, retrieved.OrganizationID)
}

// TestEntriesInvisibleAcrossTenants tests that lookups never cross organizations
func (suite *TimeEntryRepositoryTestSuite) TestEntriesInvisibleAcrossTenants() {
	fxA := suite.createFixture()
	fxB := suite.createFixture()

	entry := suite.factories.TimeEntries.Create(fxB.org.ID, fxB.project.ID, fxB.membership.ID)
	suite.NoError(suite.repo.Create(fxB.ctx, entry))

	_, err := suite.repo.GetByID(fxA.ctx, entry.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	entries, total, err := suite.repo.ListByProject(fxA.ctx, fxB.project.ID, 10, 0)
	suite.NoError(err)
	suite.Equal(int64(0), total)
	suite.Empty(entries)
}

// TestListByProject tests pagination and ordering by start time
func (suite *TimeEntryRepositoryTestSuite) TestListByProject() {
	fx := suite.createFixture()

	older := suite.factories.TimeEntries.Create(fx.org.ID, fx.project.ID, fx.membership.ID)
	older.StartedAt = time.Now().UTC().Add(-3 * time.Hour)
	newer := suite.factories.TimeEntries.Create(fx.org.ID, fx.project.ID, fx.membership.ID)
	newer.StartedAt = time.Now().UTC().Add(-time.Hour)
	suite.NoError(suite.repo.Create(fx.ctx, older))
	suite.NoError(suite.repo.Create(fx.ctx, newer))

	// Entries from another project in the same organization stay out.
	other := suite.factories.Projects.Create(fx.org.ID)
	suite.NoError(suite.projectRepo.Create(fx.ctx, other))
	stray := suite.factories.TimeEntries.Create(fx.org.ID, other.ID, fx.membership.ID)
	suite.NoError(suite.repo.Create(fx.ctx, stray))

	entries, total, err := suite.repo.ListByProject(fx.ctx, fx.project.ID, 1, 0)
	suite.NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(entries, 1)
	suite.Equal(newer.ID, entries[0].ID)
}

// TestUpdateAndDelete tests the remaining scoped write paths
func (suite *TimeEntryRepositoryTestSuite) TestUpdateAndDelete() {
	fx := suite.createFixture()
	entry := suite.factories.TimeEntries.Create(fx.org.ID, fx.project.ID, fx.membership.ID)
	suite.NoError(suite.repo.Create(fx.ctx, entry))

	entry.Minutes = 95
	entry.Description = "pairing session"
	suite.NoError(suite.repo.Update(fx.ctx, entry))

	retrieved, err := suite.repo.GetByID(fx.ctx, entry.ID)
	suite.NoError(err)
	suite.Equal(95, retrieved.Minutes)

	suite.NoError(suite.repo.Delete(fx.ctx, entry.ID))
	_, err = suite.repo.GetByID(fx.ctx, entry.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestTimeEntryRepositoryTestSuite runs the test suite
func TestTimeEntryRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TimeEntryRepositoryTestSuite))
}
