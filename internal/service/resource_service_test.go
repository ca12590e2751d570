package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pcclub/internal/models"
)

func TestResourceCreateValidation(t *testing.T) {
	store := new(mockStore)
	svc := NewResourceService(store, testLogger())

	err := svc.Create(context.Background(), &models.Resource{
		HourlyRate: decimal.NewFromInt(20),
	})
	assert.Error(t, err, "missing name")

	err = svc.Create(context.Background(), &models.Resource{
		Name:       "PC-01",
		HourlyRate: decimal.NewFromInt(-5),
	})
	assert.Error(t, err, "negative rate")

	err = svc.Create(context.Background(), &models.Resource{
		Name:       "PC-01",
		HourlyRate: decimal.NewFromInt(20),
		Status:     models.ResourceStatus("retired"),
	})
	assert.Error(t, err, "unknown status")

	store.AssertNotCalled(t, "CreateResource")
}

func TestResourceCreate(t *testing.T) {
	store := new(mockStore)
	svc := NewResourceService(store, testLogger())

	resource := &models.Resource{
		Name:       "PC-01",
		Specs:      "RTX 4070, 32GB",
		HourlyRate: decimal.NewFromInt(20),
	}
	store.On("CreateResource", mock.Anything, resource).Return(nil).Once()

	require.NoError(t, svc.Create(context.Background(), resource))
	store.AssertExpectations(t)
}

func TestResourceSetStatus(t *testing.T) {
	store := new(mockStore)
	svc := NewResourceService(store, testLogger())

	store.On("UpdateResourceStatus", mock.Anything, int64(4), models.ResourceMaintenance).
		Return(nil).Once()

	require.NoError(t, svc.SetStatus(context.Background(), 4, models.ResourceMaintenance))
	assert.Error(t, svc.SetStatus(context.Background(), 4, models.ResourceStatus("retired")))
	store.AssertExpectations(t)
}
