package service_test

import (
	"context"
	"testing"

	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/mocks"
	"timetracker-backend/internal/service"
	"timetracker-backend/internal/tenancy"
	"timetracker-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// ProjectServiceTestSuite defines the test suite for ProjectService
type ProjectServiceTestSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	mockProjects   *mocks.MockProjectRepositoryInterface
	projectService *service.ProjectService
	factories      *testutils.FactorySet
	ctx            context.Context
	orgID          uuid.UUID
}

// SetupTest sets up the test suite
func (suite *ProjectServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProjects = mocks.NewMockProjectRepositoryInterface(suite.ctrl)
	suite.factories = testutils.NewFactorySet()
	suite.orgID = uuid.New()
	suite.ctx = tenancy.WithOrganization(context.Background(), suite.orgID)

	suite.projectService = service.NewProjectService(suite.mockProjects)
}

// TearDownTest cleans up after each test
func (suite *ProjectServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// TestCreateProject tests creating a project
func (suite *ProjectServiceTestSuite) TestCreateProject() {
	req := &service.CreateProjectRequest{Name: "website-relaunch", Description: "Marketing site rebuild"}

	suite.mockProjects.EXPECT().
		GetByName(suite.ctx, "website-relaunch").
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)
	suite.mockProjects.EXPECT().Create(suite.ctx, gomock.Any()).Return(nil).Times(1)

	project, err := suite.projectService.Create(suite.ctx, req)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "website-relaunch", project.Name)
}

// TestCreateProjectDuplicateName tests that names are unique per organization
func (suite *ProjectServiceTestSuite) TestCreateProjectDuplicateName() {
	existing := suite.factories.Projects.Create(suite.orgID)
	req := &service.CreateProjectRequest{Name: existing.Name}

	suite.mockProjects.EXPECT().
		GetByName(suite.ctx, existing.Name).
		Return(existing, nil).
		Times(1)

	_, err := suite.projectService.Create(suite.ctx, req)

	assert.ErrorIs(suite.T(), err, apperrors.ErrProjectExists)
}

// TestCreateProjectInvalidRequest tests request validation
func (suite *ProjectServiceTestSuite) TestCreateProjectInvalidRequest() {
	req := &service.CreateProjectRequest{Name: ""}

	_, err := suite.projectService.Create(suite.ctx, req)

	assert.True(suite.T(), apperrors.IsValidation(err))
}

// TestGetProjectNotFound tests fetching a missing project
func (suite *ProjectServiceTestSuite) TestGetProjectNotFound() {
	projectID := uuid.New()

	suite.mockProjects.EXPECT().
		GetByID(suite.ctx, projectID).
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)

	_, err := suite.projectService.Get(suite.ctx, projectID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrProjectNotFound)
}

// TestUpdateProject tests updating a project's fields
func (suite *ProjectServiceTestSuite) TestUpdateProject() {
	project := suite.factories.Projects.Create(suite.orgID)
	req := &service.UpdateProjectRequest{Name: "renamed", Description: "new scope", Archived: true}

	suite.mockProjects.EXPECT().GetByID(suite.ctx, project.ID).Return(project, nil).Times(1)
	suite.mockProjects.EXPECT().Update(suite.ctx, project).Return(nil).Times(1)

	updated, err := suite.projectService.Update(suite.ctx, project.ID, req)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "renamed", updated.Name)
	assert.True(suite.T(), updated.Archived)
}

// TestDeleteProject tests deleting a project
func (suite *ProjectServiceTestSuite) TestDeleteProject() {
	project := suite.factories.Projects.Create(suite.orgID)

	suite.mockProjects.EXPECT().GetByID(suite.ctx, project.ID).Return(project, nil).Times(1)
	suite.mockProjects.EXPECT().Delete(suite.ctx, project.ID).Return(nil).Times(1)

	err := suite.projectService.Delete(suite.ctx, project.ID)

	assert.NoError(suite.T(), err)
}

// TestListInvalidPagination tests rejecting out-of-range pagination
func (suite *ProjectServiceTestSuite) TestListInvalidPagination() {
	_, _, err := suite.projectService.List(suite.ctx, -5, 0)

	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidPaginationParams)
}

// TestProjectServiceTestSuite runs the test suite
func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}
