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

type driverRepository interface {
	List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, int, error)
	FindByID(ctx context.Context, id int64) (*models.Driver, error)
	Create(ctx context.Context, driver *models.Driver) error
	Update(ctx context.Context, driver *models.Driver) error
	Deactivate(ctx context.Context, id int64) error
}

// CreateDriverRequest represents payload for registering drivers.
type CreateDriverRequest struct {
	FullName      string  `json:"full_name" validate:"required"`
	Phone         *string `json:"phone" validate:"omitempty,max=50"`
	LicenseNumber *string `json:"license_number" validate:"omitempty,max=50"`
}

// UpdateDriverRequest represents payload for updating drivers.
type UpdateDriverRequest struct {
	FullName      string                `json:"full_name" validate:"required"`
	Phone         *string               `json:"phone" validate:"omitempty,max=50"`
	LicenseNumber *string               `json:"license_number" validate:"omitempty,max=50"`
	Status        models.ResourceStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// DriverService orchestrates driver roster operations.
type DriverService struct {
	repo      driverRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDriverService constructs a DriverService.
func NewDriverService(repo driverRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *DriverService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriverService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns drivers plus pagination data.
func (s *DriverService) List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, *models.Pagination, error) {
	drivers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drivers")
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
	return drivers, pagination, nil
}

// Get returns a driver by id.
func (s *DriverService) Get(ctx context.Context, id int64) (*models.Driver, error) {
	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "driver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
	}
	return driver, nil
}

// Create registers a new driver record.
func (s *DriverService) Create(ctx context.Context, req CreateDriverRequest) (*models.Driver, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid driver payload")
	}

	driver := &models.Driver{
		FullName:      strings.TrimSpace(req.FullName),
		Phone:         normalizeOptional(req.Phone),
		LicenseNumber: normalizeOptional(req.LicenseNumber),
		Status:        models.ResourceActive,
	}

	if err := s.repo.Create(ctx, driver); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create driver")
	}
	s.invalidateRoster(ctx)
	return driver, nil
}

// Update modifies an existing driver.
func (s *DriverService) Update(ctx context.Context, id int64, req UpdateDriverRequest) (*models.Driver, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid driver payload")
	}

	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "driver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
	}

	driver.FullName = strings.TrimSpace(req.FullName)
	driver.Phone = normalizeOptional(req.Phone)
	driver.LicenseNumber = normalizeOptional(req.LicenseNumber)
	if req.Status != "" {
		driver.Status = req.Status
	}

	if err := s.repo.Update(ctx, driver); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update driver")
	}
	s.invalidateRoster(ctx)
	return driver, nil
}

// Deactivate marks a driver inactive, removing them from availability.
func (s *DriverService) Deactivate(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "driver not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate driver")
	}
	s.invalidateRoster(ctx)
	return nil
}

func (s *DriverService) invalidateRoster(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "roster:drivers:*"); err != nil {
		s.logger.Warn("driver roster cache invalidation failed", zap.Error(err))
	}
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
