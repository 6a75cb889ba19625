package repository

import (
	"context"
	"testing"

	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/tenancy"
	"timetracker-backend/internal/testutils"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// ProjectRepositoryTestSuite tests the ProjectRepository
type ProjectRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *ProjectRepository
	orgRepo       *OrganizationRepository
	factories     *testutils.FactorySet
	orgA          *models.Organization
	orgB          *models.Organization
	ctxA          context.Context
	ctxB          context.Context
}

// SetupSuite runs before all tests in the suite
func (suite *ProjectRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())
	suite.repo = NewProjectRepository(suite.baseTestSuite.DB)
	suite.orgRepo = NewOrganizationRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *ProjectRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *ProjectRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()

	suite.orgA = suite.factories.Organizations.Create()
	suite.orgB = suite.factories.Organizations.Create()
	suite.NoError(suite.orgRepo.Create(suite.orgA))
	suite.NoError(suite.orgRepo.Create(suite.orgB))
	suite.ctxA = tenancy.WithOrganization(context.Background(), suite.orgA.ID)
	suite.ctxB = tenancy.WithOrganization(context.Background(), suite.orgB.ID)
}

// TearDownTest runs after each test
func (suite *ProjectRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

// TestCreateAndGetByID tests basic creation within an organization
func (suite *ProjectRepositoryTestSuite) TestCreateAndGetByID() {
	project := suite.factories.Projects.Create(suite.orgA.ID)
	suite.NoError(suite.repo.Create(suite.ctxA, project))

	retrieved, err := suite.repo.GetByID(suite.ctxA, project.ID)
	suite.NoError(err)
	suite.Equal(project.Name, retrieved.Name)
	suite.Equal(suite.orgA.ID, retrieved.OrganizationID)
}

// TestCreateFailsClosedWithoutOrganization tests that writes need an active organization
func (suite *ProjectRepositoryTestSuite) TestCreateFailsClosedWithoutOrganization() {
	project := suite.factories.Projects.Create(suite.orgA.ID)

	err := suite.repo.Create(context.Background(), project)
	suite.ErrorIs(err, apperrors.ErrNoActiveOrganization)
}

// TestCreateRejectsForeignOrganization tests that a row cannot be written into another tenant
func (suite *ProjectRepositoryTestSuite) TestCreateRejectsForeignOrganization() {
	project := suite.factories.Projects.Create(suite.orgB.ID)

	err := suite.repo.Create(suite.ctxA, project)
	suite.ErrorIs(err, apperrors.ErrCrossTenantReference)
}

// TestGetByIDInvisibleAcrossTenants tests that lookups never cross organizations
func (suite *ProjectRepositoryTestSuite) TestGetByIDInvisibleAcrossTenants() {
	project := suite.factories.Projects.Create(suite.orgB.ID)
	suite.NoError(suite.repo.Create(suite.ctxB, project))

	_, err := suite.repo.GetByID(suite.ctxA, project.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestGetByNameScopedToOrganization tests name lookups within the active organization
func (suite *ProjectRepositoryTestSuite) TestGetByNameScopedToOrganization() {
	project := suite.factories.Projects.Create(suite.orgA.ID)
	suite.NoError(suite.repo.Create(suite.ctxA, project))

	retrieved, err := suite.repo.GetByName(suite.ctxA, project.Name)
	suite.NoError(err)
	suite.Equal(project.ID, retrieved.ID)

	_, err = suite.repo.GetByName(suite.ctxB, project.Name)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestSameNameAcrossOrganizations tests that the name constraint is per tenant
func (suite *ProjectRepositoryTestSuite) TestSameNameAcrossOrganizations() {
	first := suite.factories.Projects.Create(suite.orgA.ID)
	first.Name = "Website Redesign"
	suite.NoError(suite.repo.Create(suite.ctxA, first))

	second := suite.factories.Projects.Create(suite.orgB.ID)
	second.Name = "Website Redesign"
	suite.NoError(suite.repo.Create(suite.ctxB, second))

	duplicate := suite.factories.Projects.Create(suite.orgA.ID)
	duplicate.Name = "Website Redesign"
	suite.Error(suite.repo.Create(suite.ctxA, duplicate))
}

// TestListReturnsOnlyOwnProjects tests listing isolation and pagination totals
func (suite *ProjectRepositoryTestSuite) TestListReturnsOnlyOwnProjects() {
	for i := 0; i < 3; i++ {
		suite.NoError(suite.repo.Create(suite.ctxA, suite.factories.Projects.Create(suite.orgA.ID)))
	}
	suite.NoError(suite.repo.Create(suite.ctxB, suite.factories.Projects.Create(suite.orgB.ID)))

	projects, total, err := suite.repo.List(suite.ctxA, 2, 0)
	suite.NoError(err)
	suite.Equal(int64(3), total)
	suite.Len(projects, 2)
	for _, p := range projects {
		suite.Equal(suite.orgA.ID, p.OrganizationID)
	}
}

// TestDeleteScopedToOrganization tests that deletes cannot reach other tenants
func (suite *ProjectRepositoryTestSuite) TestDeleteScopedToOrganization() {
	project := suite.factories.Projects.Create(suite.orgB.ID)
	suite.NoError(suite.repo.Create(suite.ctxB, project))

	// Delete from the wrong tenant is a no-op.
	suite.NoError(suite.repo.Delete(suite.ctxA, project.ID))
	retrieved, err := suite.repo.GetByID(suite.ctxB, project.ID)
	suite.NoError(err)
	suite.Equal(project.ID, retrieved.ID)

	suite.NoError(suite.repo.Delete(suite.ctxB, project.ID))
	_, err = suite.repo.GetByID(suite.ctxB, project.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestUpdateRejectsForeignRow tests that updates verify row ownership
func (suite *ProjectRepositoryTestSuite) TestUpdateRejectsForeignRow() {
	project := suite.factories.Projects.Create(suite.orgB.ID)
	suite.NoError(suite.repo.Create(suite.ctxB, project))

	project.Name = "Hijacked"
	err := suite.repo.Update(suite.ctxA, project)
	suite.ErrorIs(err, apperrors.ErrCrossTenantReference)
}

// TestProjectRepositoryTestSuite runs the test suite
func TestProjectRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectRepositoryTestSuite))
}
