package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"pcclub/internal/domain"
	"pcclub/internal/models"
)

// ResourceService is the registry of workstations. The administrative status
// flag never touches the booking timeline; conflict logic lives entirely in
// the reservation engine.
type ResourceService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewResourceService(store domain.Store, logger *zerolog.Logger) *ResourceService {
	return &ResourceService{store: store, logger: logger}
}

func (s *ResourceService) Create(ctx context.Context, resource *models.Resource) error {
	if resource.Name == "" {
		return fmt.Errorf("resource name is required")
	}
	if !resource.HourlyRate.IsPositive() {
		return fmt.Errorf("hourly rate must be positive")
	}
	if resource.Status != "" && !resource.Status.Valid() {
		return fmt.Errorf("invalid resource status: %q", resource.Status)
	}

	if err := s.store.CreateResource(ctx, resource); err != nil {
		return err
	}

	s.logger.Info().Int64("resource_id", resource.ID).Str("name", resource.Name).Msg("resource created")
	return nil
}

func (s *ResourceService) Get(ctx context.Context, id int64) (*models.Resource, error) {
	return s.store.GetResource(ctx, id)
}

func (s *ResourceService) List(ctx context.Context) ([]*models.Resource, error) {
	return s.store.ListResources(ctx)
}

func (s *ResourceService) SetStatus(ctx context.Context, id int64, status models.ResourceStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid resource status: %q", status)
	}

	if err := s.store.UpdateResourceStatus(ctx, id, status); err != nil {
		return err
	}

	s.logger.Info().Int64("resource_id", id).Str("status", string(status)).Msg("resource status updated")
	return nil
}
