package service_test

import (
	"context"
	"testing"

	"timetracker-backend/internal/config"
	"timetracker-backend/internal/database/models"
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

// OrganizationServiceTestSuite defines the test suite for OrganizationService
type OrganizationServiceTestSuite struct {
	suite.Suite
	ctrl                *gomock.Controller
	mockOrgs            *mocks.MockOrganizationRepositoryInterface
	mockMemberships     *mocks.MockMembershipRepositoryInterface
	mockEvents          *mocks.MockSubscriptionEventRepositoryInterface
	organizationService *service.OrganizationService
	factories           *testutils.FactorySet
}

// SetupTest sets up the test suite
func (suite *OrganizationServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockOrgs = mocks.NewMockOrganizationRepositoryInterface(suite.ctrl)
	suite.mockMemberships = mocks.NewMockMembershipRepositoryInterface(suite.ctrl)
	suite.mockEvents = mocks.NewMockSubscriptionEventRepositoryInterface(suite.ctrl)
	suite.factories = testutils.NewFactorySet()

	plans := config.NewPlanCatalog(
		config.Plan{Name: "free", SeatAllowance: 3},
		config.Plan{Name: "team", SeatAllowance: 10, TrialDays: 14},
	)
	suite.organizationService = service.NewOrganizationService(
		suite.mockOrgs, suite.mockMemberships, suite.mockEvents, plans,
	)
}

// TearDownTest cleans up after each test
func (suite *OrganizationServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// TestCreateBootstrapsAdmin tests that the creating user becomes the first active admin
func (suite *OrganizationServiceTestSuite) TestCreateBootstrapsAdmin() {
	userID := uuid.New()
	ctx := tenancy.WithUser(context.Background(), userID)
	req := &service.CreateOrganizationRequest{Slug: "acme-inc", DisplayName: "Acme Inc"}

	suite.mockOrgs.EXPECT().
		GetBySlug("acme-inc").
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)
	suite.mockOrgs.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	var bootstrap *models.Membership
	suite.mockMemberships.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(m *models.Membership) error {
			bootstrap = m
			return nil
		}).
		Times(1)

	org, err := suite.organizationService.Create(ctx, req)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "free", org.Plan)
	assert.Equal(suite.T(), models.SubscriptionStatusNone, org.SubscriptionStatus)
	assert.Equal(suite.T(), 1, org.SeatQuantity)
	assert.Equal(suite.T(), userID, bootstrap.UserID)
	assert.Equal(suite.T(), models.MembershipRoleAdmin, bootstrap.Role)
	assert.Equal(suite.T(), models.MembershipStatusActive, bootstrap.Status)
}

// TestCreateTrialPlanStartsTrialing tests that a plan with trial days starts in trialing
func (suite *OrganizationServiceTestSuite) TestCreateTrialPlanStartsTrialing() {
	ctx := tenancy.WithUser(context.Background(), uuid.New())
	req := &service.CreateOrganizationRequest{Slug: "acme-inc", DisplayName: "Acme Inc", Plan: "team"}

	suite.mockOrgs.EXPECT().GetBySlug("acme-inc").Return(nil, gorm.ErrRecordNotFound).Times(1)
	suite.mockOrgs.EXPECT().Create(gomock.Any()).Return(nil).Times(1)
	suite.mockMemberships.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	org, err := suite.organizationService.Create(ctx, req)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.SubscriptionStatusTrialing, org.SubscriptionStatus)
	assert.NotNil(suite.T(), org.TrialEndsAt)
}

// TestCreateDuplicateSlug tests rejecting a taken slug
func (suite *OrganizationServiceTestSuite) TestCreateDuplicateSlug() {
	ctx := tenancy.WithUser(context.Background(), uuid.New())
	existing := suite.factories.Organizations.WithSlug("acme-inc")
	req := &service.CreateOrganizationRequest{Slug: "acme-inc", DisplayName: "Acme Inc"}

	suite.mockOrgs.EXPECT().GetBySlug("acme-inc").Return(existing, nil).Times(1)

	_, err := suite.organizationService.Create(ctx, req)

	assert.ErrorIs(suite.T(), err, apperrors.ErrOrganizationExists)
}

// TestCreateInvalidSlug tests slug format validation
func (suite *OrganizationServiceTestSuite) TestCreateInvalidSlug() {
	ctx := tenancy.WithUser(context.Background(), uuid.New())
	req := &service.CreateOrganizationRequest{Slug: "Acme_Inc", DisplayName: "Acme Inc"}

	_, err := suite.organizationService.Create(ctx, req)

	assert.True(suite.T(), apperrors.IsValidation(err))
}

// TestGetReturnsActiveOrganization tests fetching the context's organization
func (suite *OrganizationServiceTestSuite) TestGetReturnsActiveOrganization() {
	org := suite.factories.Organizations.Create()
	ctx := tenancy.WithOrganization(context.Background(), org.ID)

	suite.mockOrgs.EXPECT().GetByID(org.ID).Return(org, nil).Times(1)

	got, err := suite.organizationService.Get(ctx)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), org.ID, got.ID)
}

// TestGetFailsClosedWithoutOrganization tests fail-closed behavior without tenancy
func (suite *OrganizationServiceTestSuite) TestGetFailsClosedWithoutOrganization() {
	_, err := suite.organizationService.Get(context.Background())

	assert.ErrorIs(suite.T(), err, apperrors.ErrNoActiveOrganization)
}

// TestOffboardDetachesEventsFirst tests that offboarding preserves the billing audit trail
func (suite *OrganizationServiceTestSuite) TestOffboardDetachesEventsFirst() {
	org := suite.factories.Organizations.Create()
	ctx := tenancy.WithRole(tenancy.WithOrganization(context.Background(), org.ID), models.MembershipRoleAdmin)

	gomock.InOrder(
		suite.mockEvents.EXPECT().DetachOrganization(org.ID).Return(nil).Times(1),
		suite.mockOrgs.EXPECT().SoftDelete(org.ID).Return(nil).Times(1),
	)

	err := suite.organizationService.Offboard(ctx, org.ID)

	assert.NoError(suite.T(), err)
}

// TestOffboardOtherOrganizationDenied tests that an admin cannot offboard a foreign tenant
func (suite *OrganizationServiceTestSuite) TestOffboardOtherOrganizationDenied() {
	org := suite.factories.Organizations.Create()
	ctx := tenancy.WithRole(tenancy.WithOrganization(context.Background(), org.ID), models.MembershipRoleAdmin)

	err := suite.organizationService.Offboard(ctx, uuid.New())

	assert.ErrorIs(suite.T(), err, apperrors.ErrAccessDenied)
}

// TestListAllRequiresSystem tests that the tenant registry listing is system only
func (suite *OrganizationServiceTestSuite) TestListAllRequiresSystem() {
	_, _, err := suite.organizationService.ListAll(context.Background(), 20, 0)
	assert.ErrorIs(suite.T(), err, apperrors.ErrAccessDenied)

	suite.mockOrgs.EXPECT().GetAll(20, 0).Return([]models.Organization{}, int64(0), nil).Times(1)
	_, _, err = suite.organizationService.ListAll(tenancy.WithSystem(context.Background()), 20, 0)
	assert.NoError(suite.T(), err)
}

// TestListEvents tests paging the organization's billing event log
func (suite *OrganizationServiceTestSuite) TestListEvents() {
	org := suite.factories.Organizations.Create()
	event := suite.factories.Events.Create(org.ID, models.EventPaymentSucceeded)
	ctx := tenancy.WithOrganization(context.Background(), org.ID)

	suite.mockEvents.EXPECT().
		GetByOrganizationID(org.ID, 20, 0).
		Return([]models.SubscriptionEvent{*event}, int64(1), nil).
		Times(1)

	events, total, err := suite.organizationService.ListEvents(ctx, 20, 0)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), total)
	assert.Len(suite.T(), events, 1)
}

// TestListEventsInvalidPagination tests rejecting out-of-range pagination
func (suite *OrganizationServiceTestSuite) TestListEventsInvalidPagination() {
	org := suite.factories.Organizations.Create()
	ctx := tenancy.WithOrganization(context.Background(), org.ID)

	_, _, err := suite.organizationService.ListEvents(ctx, 500, 0)

	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidPaginationParams)
}

// TestOrganizationServiceTestSuite runs the test suite
func TestOrganizationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrganizationServiceTestSuite))
}
