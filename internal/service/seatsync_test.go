package service_test

import (
	"context"
	"errors"
	"testing"

	"timetracker-backend/internal/config"
	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/mocks"
	"timetracker-backend/internal/service"
	"timetracker-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// SeatSyncServiceTestSuite defines the test suite for SeatSyncService
type SeatSyncServiceTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	mockOrgs        *mocks.MockOrganizationRepositoryInterface
	mockMemberships *mocks.MockMembershipRepositoryInterface
	mockEvents      *mocks.MockSubscriptionEventRepositoryInterface
	mockProvider    *mocks.MockBillingProvider
	seatSyncService *service.SeatSyncService
	factories       *testutils.FactorySet
	ctx             context.Context
}

// SetupTest sets up the test suite
func (suite *SeatSyncServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockOrgs = mocks.NewMockOrganizationRepositoryInterface(suite.ctrl)
	suite.mockMemberships = mocks.NewMockMembershipRepositoryInterface(suite.ctrl)
	suite.mockEvents = mocks.NewMockSubscriptionEventRepositoryInterface(suite.ctrl)
	suite.mockProvider = mocks.NewMockBillingProvider(suite.ctrl)
	suite.factories = testutils.NewFactorySet()
	suite.ctx = context.Background()

	plans := config.NewPlanCatalog(
		config.Plan{Name: "free", SeatAllowance: 3},
		config.Plan{Name: "team", SeatAllowance: 5, TrialDays: 14},
	)
	suite.seatSyncService = service.NewSeatSyncService(
		suite.mockOrgs, suite.mockMemberships, suite.mockEvents, suite.mockProvider, plans, true,
	)
}

// TearDownTest cleans up after each test
func (suite *SeatSyncServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// TestHasAvailableSeatUnderLimit tests that a seat is available below the plan allowance
func (suite *SeatSyncServiceTestSuite) TestHasAvailableSeatUnderLimit() {
	org := suite.factories.Organizations.WithPlan("team")

	suite.mockMemberships.EXPECT().
		CountActiveByOrganization(org.ID).
		Return(int64(4), nil).
		Times(1)

	err := suite.seatSyncService.HasAvailableSeat(suite.ctx, org)

	assert.NoError(suite.T(), err)
}

// TestHasAvailableSeatAtLimit tests that the allowance boundary is exclusive
func (suite *SeatSyncServiceTestSuite) TestHasAvailableSeatAtLimit() {
	org := suite.factories.Organizations.WithPlan("team")

	suite.mockMemberships.EXPECT().
		CountActiveByOrganization(org.ID).
		Return(int64(5), nil).
		Times(1)

	err := suite.seatSyncService.HasAvailableSeat(suite.ctx, org)

	assert.ErrorIs(suite.T(), err, apperrors.ErrSeatLimitExceeded)
}

// TestHasAvailableSeatUnknownPlan tests that an unknown plan tag falls back to the free allowance
func (suite *SeatSyncServiceTestSuite) TestHasAvailableSeatUnknownPlan() {
	org := suite.factories.Organizations.WithPlan("nonexistent")

	suite.mockMemberships.EXPECT().
		CountActiveByOrganization(org.ID).
		Return(int64(3), nil).
		Times(1)

	err := suite.seatSyncService.HasAvailableSeat(suite.ctx, org)

	assert.ErrorIs(suite.T(), err, apperrors.ErrSeatLimitExceeded)
}

// TestSyncSeatsPushesQuantity tests pushing the recomputed count to the provider
func (suite *SeatSyncServiceTestSuite) TestSyncSeatsPushesQuantity() {
	org := suite.factories.Organizations.WithSubscription("cus_1", "sub_1", models.SubscriptionStatusActive)

	suite.mockOrgs.EXPECT().GetByID(org.ID).Return(org, nil).Times(1)
	suite.mockMemberships.EXPECT().
		CountActiveByOrganization(org.ID).
		Return(int64(4), nil).
		Times(1)
	suite.mockProvider.EXPECT().
		UpdateSubscriptionQuantity(gomock.Any(), "sub_1", 4, true).
		Return(nil).
		Times(1)
	suite.mockOrgs.EXPECT().
		ApplyBillingUpdate(org.ID, org.BillingVersion, gomock.Any()).
		Return(int64(1), nil).
		Times(1)

	quantity, err := suite.seatSyncService.SyncSeats(suite.ctx, org.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4, quantity)
	assert.Equal(suite.T(), 4, org.SeatQuantity)
}

// TestSyncSeatsWithoutProviderSubscription tests that unlinked organizations only update the mirror
func (suite *SeatSyncServiceTestSuite) TestSyncSeatsWithoutProviderSubscription() {
	org := suite.factories.Organizations.Create()

	suite.mockOrgs.EXPECT().GetByID(org.ID).Return(org, nil).Times(1)
	suite.mockMemberships.EXPECT().
		CountActiveByOrganization(org.ID).
		Return(int64(2), nil).
		Times(1)
	// No provider call expected without a linked subscription.
	suite.mockOrgs.EXPECT().
		ApplyBillingUpdate(org.ID, org.BillingVersion, gomock.Any()).
		Return(int64(1), nil).
		Times(1)

	quantity, err := suite.seatSyncService.SyncSeats(suite.ctx, org.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, quantity)
}

// TestSyncSeatsProviderFailureRecordsEvent tests that a failed push is recorded as an internal
// event and surfaced as a sync failure, leaving membership state untouched
func (suite *SeatSyncServiceTestSuite) TestSyncSeatsProviderFailureRecordsEvent() {
	org := suite.factories.Organizations.WithSubscription("cus_1", "sub_1", models.SubscriptionStatusActive)
	org.SeatQuantity = 2

	suite.mockOrgs.EXPECT().GetByID(org.ID).Return(org, nil).Times(1)
	suite.mockMemberships.EXPECT().
		CountActiveByOrganization(org.ID).
		Return(int64(3), nil).
		Times(1)
	suite.mockProvider.EXPECT().
		UpdateSubscriptionQuantity(gomock.Any(), "sub_1", 3, true).
		Return(errors.New("provider unavailable")).
		Times(1)

	var recorded *models.SubscriptionEvent
	suite.mockEvents.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(event *models.SubscriptionEvent) error {
			recorded = event
			return nil
		}).
		Times(1)

	quantity, err := suite.seatSyncService.SyncSeats(suite.ctx, org.ID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrSyncFailure)
	assert.Equal(suite.T(), 3, quantity)
	assert.Equal(suite.T(), models.EventSeatSyncFailed, recorded.Type)
	assert.Equal(suite.T(), 2, recorded.PreviousSeats)
	assert.Equal(suite.T(), 3, recorded.NewSeats)
	assert.NotNil(suite.T(), recorded.Error)
	assert.True(suite.T(), recorded.IsManual())
}

// TestSyncSeatsStoresUnderVersionGuard tests that a lost compare-and-set is retried
func (suite *SeatSyncServiceTestSuite) TestSyncSeatsStoresUnderVersionGuard() {
	org := suite.factories.Organizations.Create()
	org.BillingVersion = 0

	fresh := *org
	fresh.BillingVersion = 1

	suite.mockOrgs.EXPECT().GetByID(org.ID).Return(org, nil).Times(1)
	suite.mockMemberships.EXPECT().
		CountActiveByOrganization(org.ID).
		Return(int64(2), nil).
		Times(1)
	suite.mockOrgs.EXPECT().
		ApplyBillingUpdate(org.ID, 0, gomock.Any()).
		Return(int64(0), nil).
		Times(1)
	suite.mockOrgs.EXPECT().GetByID(org.ID).Return(&fresh, nil).Times(1)
	suite.mockOrgs.EXPECT().
		ApplyBillingUpdate(org.ID, 1, gomock.Any()).
		Return(int64(1), nil).
		Times(1)

	quantity, err := suite.seatSyncService.SyncSeats(suite.ctx, org.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, quantity)
}

// TestSyncSeatsOrganizationMissing tests syncing an unknown organization
func (suite *SeatSyncServiceTestSuite) TestSyncSeatsOrganizationMissing() {
	orgID := uuid.New()

	suite.mockOrgs.EXPECT().
		GetByID(orgID).
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)

	_, err := suite.seatSyncService.SyncSeats(suite.ctx, orgID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrOrganizationNotFound)
}

// TestSeatSyncServiceTestSuite runs the test suite
func TestSeatSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SeatSyncServiceTestSuite))
}
