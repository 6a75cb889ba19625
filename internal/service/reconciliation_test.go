package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

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

// ReconciliationServiceTestSuite defines the test suite for ReconciliationService
type ReconciliationServiceTestSuite struct {
	suite.Suite
	ctrl                  *gomock.Controller
	mockOrgs              *mocks.MockOrganizationRepositoryInterface
	mockProvider          *mocks.MockBillingProvider
	reconciliationService *service.ReconciliationService
	factories             *testutils.FactorySet
	ctx                   context.Context
}

// SetupTest sets up the test suite
func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockOrgs = mocks.NewMockOrganizationRepositoryInterface(suite.ctrl)
	suite.mockProvider = mocks.NewMockBillingProvider(suite.ctrl)
	suite.factories = testutils.NewFactorySet()
	suite.ctx = context.Background()

	suite.reconciliationService = service.NewReconciliationService(suite.mockOrgs, suite.mockProvider)
}

// TearDownTest cleans up after each test
func (suite *ReconciliationServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// TestReconcileAllInSync tests a run where the mirror already matches the provider
func (suite *ReconciliationServiceTestSuite) TestReconcileAllInSync() {
	org := suite.factories.Organizations.WithSubscription("cus_1", "sub_1", models.SubscriptionStatusActive)
	org.SeatQuantity = 3

	suite.mockOrgs.EXPECT().
		GetAllWithProviderSubscription().
		Return([]models.Organization{*org}, nil).
		Times(1)
	suite.mockProvider.EXPECT().
		GetSubscription(gomock.Any(), "sub_1").
		Return(&service.ProviderSubscription{ID: "sub_1", Status: "active", Quantity: 3}, nil).
		Times(1)

	report, err := suite.reconciliationService.ReconcileAll(suite.ctx)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, report.Total)
	assert.Equal(suite.T(), 1, report.InSync)
	assert.Equal(suite.T(), 0, report.Corrected)
}

// TestReconcileAllCorrectsDrift tests rewriting a drifted mirror from the provider's answer
func (suite *ReconciliationServiceTestSuite) TestReconcileAllCorrectsDrift() {
	org := suite.factories.Organizations.WithSubscription("cus_1", "sub_1", models.SubscriptionStatusPastDue)
	org.SeatQuantity = 3
	org.BillingVersion = 7
	periodEnd := time.Now().Add(30 * 24 * time.Hour)

	suite.mockOrgs.EXPECT().
		GetAllWithProviderSubscription().
		Return([]models.Organization{*org}, nil).
		Times(1)
	suite.mockProvider.EXPECT().
		GetSubscription(gomock.Any(), "sub_1").
		Return(&service.ProviderSubscription{ID: "sub_1", Status: "active", Quantity: 5, CurrentPeriodEnd: &periodEnd}, nil).
		Times(1)

	var applied map[string]interface{}
	suite.mockOrgs.EXPECT().
		ApplyBillingUpdate(org.ID, 7, gomock.Any()).
		DoAndReturn(func(_ uuid.UUID, _ int, updates map[string]interface{}) (int64, error) {
			applied = updates
			return 1, nil
		}).
		Times(1)

	report, err := suite.reconciliationService.ReconcileAll(suite.ctx)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, report.Corrected)
	assert.Equal(suite.T(), models.SubscriptionStatusActive, applied["subscription_status"])
	assert.Equal(suite.T(), 5, applied["seat_quantity"])
	assert.NotNil(suite.T(), applied["next_billing_at"])
}

// TestReconcileAllSkipsOnConcurrentEvent tests that a billing event landing mid-flight wins
func (suite *ReconciliationServiceTestSuite) TestReconcileAllSkipsOnConcurrentEvent() {
	org := suite.factories.Organizations.WithSubscription("cus_1", "sub_1", models.SubscriptionStatusActive)
	org.SeatQuantity = 3

	suite.mockOrgs.EXPECT().
		GetAllWithProviderSubscription().
		Return([]models.Organization{*org}, nil).
		Times(1)
	suite.mockProvider.EXPECT().
		GetSubscription(gomock.Any(), "sub_1").
		Return(&service.ProviderSubscription{ID: "sub_1", Status: "canceled", Quantity: 3}, nil).
		Times(1)
	suite.mockOrgs.EXPECT().
		ApplyBillingUpdate(org.ID, org.BillingVersion, gomock.Any()).
		Return(int64(0), nil).
		Times(1)

	report, err := suite.reconciliationService.ReconcileAll(suite.ctx)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, report.Skipped)
	assert.Equal(suite.T(), 0, report.Corrected)
}

// TestReconcileAllProviderError tests that a failed lookup marks the organization for retry
// without aborting the run
func (suite *ReconciliationServiceTestSuite) TestReconcileAllProviderError() {
	broken := suite.factories.Organizations.WithSubscription("cus_1", "sub_broken", models.SubscriptionStatusActive)
	healthy := suite.factories.Organizations.WithSubscription("cus_2", "sub_ok", models.SubscriptionStatusActive)
	healthy.SeatQuantity = 1

	suite.mockOrgs.EXPECT().
		GetAllWithProviderSubscription().
		Return([]models.Organization{*broken, *healthy}, nil).
		Times(1)
	suite.mockProvider.EXPECT().
		GetSubscription(gomock.Any(), "sub_broken").
		Return(nil, errors.New("provider timeout")).
		Times(1)
	suite.mockProvider.EXPECT().
		GetSubscription(gomock.Any(), "sub_ok").
		Return(&service.ProviderSubscription{ID: "sub_ok", Status: "active", Quantity: 1}, nil).
		Times(1)

	report, err := suite.reconciliationService.ReconcileAll(suite.ctx)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, report.Total)
	assert.Equal(suite.T(), 1, report.Errors)
	assert.Equal(suite.T(), 1, report.InSync)
}

// TestReconcileAllUnknownProviderStatus tests that an unmappable status is not written
func (suite *ReconciliationServiceTestSuite) TestReconcileAllUnknownProviderStatus() {
	org := suite.factories.Organizations.WithSubscription("cus_1", "sub_1", models.SubscriptionStatusActive)

	suite.mockOrgs.EXPECT().
		GetAllWithProviderSubscription().
		Return([]models.Organization{*org}, nil).
		Times(1)
	suite.mockProvider.EXPECT().
		GetSubscription(gomock.Any(), "sub_1").
		Return(&service.ProviderSubscription{ID: "sub_1", Status: "incomplete_expired", Quantity: 1}, nil).
		Times(1)

	report, err := suite.reconciliationService.ReconcileAll(suite.ctx)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, report.Errors)
}

// TestReconcileAllStopsOnCancellation tests that cancellation stops the run between organizations
func (suite *ReconciliationServiceTestSuite) TestReconcileAllStopsOnCancellation() {
	org := suite.factories.Organizations.WithSubscription("cus_1", "sub_1", models.SubscriptionStatusActive)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	suite.mockOrgs.EXPECT().
		GetAllWithProviderSubscription().
		Return([]models.Organization{*org}, nil).
		Times(1)

	report, err := suite.reconciliationService.ReconcileAll(ctx)

	assert.ErrorIs(suite.T(), err, context.Canceled)
	assert.Equal(suite.T(), 0, report.Total)
}

// TestReconcileSingleOrganization tests the operator-triggered single-tenant path
func (suite *ReconciliationServiceTestSuite) TestReconcileSingleOrganization() {
	org := suite.factories.Organizations.WithSubscription("cus_1", "sub_1", models.SubscriptionStatusActive)
	org.SeatQuantity = 2

	suite.mockOrgs.EXPECT().GetByID(org.ID).Return(org, nil).Times(1)
	suite.mockProvider.EXPECT().
		GetSubscription(gomock.Any(), "sub_1").
		Return(&service.ProviderSubscription{ID: "sub_1", Status: "active", Quantity: 2}, nil).
		Times(1)

	entry, err := suite.reconciliationService.Reconcile(suite.ctx, org.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), service.OutcomeInSync, entry.Outcome)
}

// TestReconcileWithoutProviderSubscription tests rejecting an unlinked organization
func (suite *ReconciliationServiceTestSuite) TestReconcileWithoutProviderSubscription() {
	org := suite.factories.Organizations.Create()

	suite.mockOrgs.EXPECT().GetByID(org.ID).Return(org, nil).Times(1)

	_, err := suite.reconciliationService.Reconcile(suite.ctx, org.ID)

	assert.True(suite.T(), apperrors.IsValidation(err))
}

// TestReconcileOrganizationMissing tests reconciling an unknown organization id
func (suite *ReconciliationServiceTestSuite) TestReconcileOrganizationMissing() {
	orgID := uuid.New()

	suite.mockOrgs.EXPECT().GetByID(orgID).Return(nil, gorm.ErrRecordNotFound).Times(1)

	_, err := suite.reconciliationService.Reconcile(suite.ctx, orgID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrOrganizationNotFound)
}

// TestReconciliationServiceTestSuite runs the test suite
func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
