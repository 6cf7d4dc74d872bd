package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/districtops/transport-api/internal/models"
	appErrors "github.com/districtops/transport-api/pkg/errors"
)

type vehicleRepository interface {
	List(ctx context.Context, filter models.VehicleFilter) ([]models.Vehicle, int, error)
	FindByID(ctx context.Context, id int64) (*models.Vehicle, error)
	Create(ctx context.Context, vehicle *models.Vehicle) error
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Deactivate(ctx context.Context, id int64) error
}

// CreateVehicleRequest represents payload for registering vehicles.
type CreateVehicleRequest struct {
	Number       string  `json:"vehicle_number" validate:"required"`
	Make         *string `json:"make" validate:"omitempty,max=100"`
	Model        *string `json:"model" validate:"omitempty,max=100"`
	Capacity     int     `json:"capacity" validate:"gte=0"`
	LicensePlate *string `json:"license_plate" validate:"omitempty,max=20"`
}

// UpdateVehicleRequest represents payload for updating vehicles.
type UpdateVehicleRequest struct {
	Number       string                `json:"vehicle_number" validate:"required"`
	Make         *string               `json:"make" validate:"omitempty,max=100"`
	Model        *string               `json:"model" validate:"omitempty,max=100"`
	Capacity     int                   `json:"capacity" validate:"gte=0"`
	LicensePlate *string               `json:"license_plate" validate:"omitempty,max=20"`
	Status       models.ResourceStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// VehicleService orchestrates fleet roster operations.
type VehicleService struct {
	repo      vehicleRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVehicleService constructs a VehicleService.
func NewVehicleService(repo vehicleRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *VehicleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VehicleService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns vehicles plus pagination data.
func (s *VehicleService) List(ctx context.Context, filter models.VehicleFilter) ([]models.Vehicle, *models.Pagination, error) {
	vehicles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vehicles")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return vehicles, pagination, nil
}

// Get returns a vehicle by id.
func (s *VehicleService) Get(ctx context.Context, id int64) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	return vehicle, nil
}

// Create registers a new vehicle record.
func (s *VehicleService) Create(ctx context.Context, req CreateVehicleRequest) (*models.Vehicle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle payload")
	}

	vehicle := &models.Vehicle{
		Number:       strings.TrimSpace(req.Number),
		Make:         normalizeOptional(req.Make),
		Model:        normalizeOptional(req.Model),
		Capacity:     req.Capacity,
		LicensePlate: normalizeOptional(req.LicensePlate),
		Status:       models.ResourceActive,
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create vehicle")
	}
	s.invalidateRoster(ctx)
	return vehicle, nil
}

// Update modifies an existing vehicle.
func (s *VehicleService) Update(ctx context.Context, id int64, req UpdateVehicleRequest) (*models.Vehicle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle payload")
	}

	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}

	vehicle.Number = strings.TrimSpace(req.Number)
	vehicle.Make = normalizeOptional(req.Make)
	vehicle.Model = normalizeOptional(req.Model)
	vehicle.Capacity = req.Capacity
	vehicle.LicensePlate = normalizeOptional(req.LicensePlate)
	if req.Status != "" {
		vehicle.Status = req.Status
	}

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update vehicle")
	}
	s.invalidateRoster(ctx)
	return vehicle, nil
}

// Deactivate marks a vehicle inactive, removing it from availability.
func (s *VehicleService) Deactivate(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate vehicle")
	}
	s.invalidateRoster(ctx)
	return nil
}

func (s *VehicleService) invalidateRoster(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "roster:vehicles:*"); err != nil {
		s.logger.Warn("vehicle roster cache invalidation failed", zap.Error(err))
	}
}
