package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/districtops/transport-api/internal/models"
	appErrors "github.com/districtops/transport-api/pkg/errors"
)

type availabilityActivityReader interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.Activity, error)
}

type driverRoster interface {
	ListActive(ctx context.Context) ([]models.Driver, error)
}

type vehicleRoster interface {
	ListActive(ctx context.Context) ([]models.Vehicle, error)
}

// AvailabilityService answers which drivers and vehicles are free for a
// booking window. A resource returned as available has zero overlapping
// non-cancelled assignments at call time; the activity service's per-resource
// locks close the remaining read-check-write gap on booking.
type AvailabilityService struct {
	activities availabilityActivityReader
	drivers    driverRoster
	vehicles   vehicleRoster
	cache      *CacheService
	rosterTTL  time.Duration
	logger     *zap.Logger
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(activities availabilityActivityReader, drivers driverRoster, vehicles vehicleRoster, cache *CacheService, rosterTTL time.Duration, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rosterTTL <= 0 {
		rosterTTL = 5 * time.Minute
	}
	return &AvailabilityService{
		activities: activities,
		drivers:    drivers,
		vehicles:   vehicles,
		cache:      cache,
		rosterTTL:  rosterTTL,
		logger:     logger,
	}
}

// GetAvailableDrivers returns active drivers with no overlapping assignment
// inside [start, end) on the given date.
func (s *AvailabilityService) GetAvailableDrivers(ctx context.Context, date time.Time, start, end models.TimeOfDay) ([]models.Driver, error) {
	roster, err := s.activeDrivers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver roster")
	}

	busy, _, err := s.busyResources(ctx, date, models.TimeWindow{Start: start, End: end})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute driver availability")
	}

	available := make([]models.Driver, 0, len(roster))
	for _, driver := range roster {
		if _, taken := busy[driver.ID]; !taken {
			available = append(available, driver)
		}
	}
	return available, nil
}

// GetAvailableVehicles returns active vehicles with no overlapping assignment
// inside [start, end) on the given date.
func (s *AvailabilityService) GetAvailableVehicles(ctx context.Context, date time.Time, start, end models.TimeOfDay) ([]models.Vehicle, error) {
	roster, err := s.activeVehicles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle roster")
	}

	_, busy, err := s.busyResources(ctx, date, models.TimeWindow{Start: start, End: end})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute vehicle availability")
	}

	available := make([]models.Vehicle, 0, len(roster))
	for _, vehicle := range roster {
		if _, taken := busy[vehicle.ID]; !taken {
			available = append(available, vehicle)
		}
	}
	return available, nil
}

// IsDriverAvailable reports whether a single driver is free for the window.
func (s *AvailabilityService) IsDriverAvailable(ctx context.Context, driverID int64, date time.Time, start, end models.TimeOfDay) (bool, error) {
	busyDrivers, _, err := s.busyResources(ctx, date, models.TimeWindow{Start: start, End: end})
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute driver availability")
	}
	_, taken := busyDrivers[driverID]
	return !taken, nil
}

// IsVehicleAvailable reports whether a single vehicle is free for the window.
func (s *AvailabilityService) IsVehicleAvailable(ctx context.Context, vehicleID int64, date time.Time, start, end models.TimeOfDay) (bool, error) {
	_, busyVehicles, err := s.busyResources(ctx, date, models.TimeWindow{Start: start, End: end})
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute vehicle availability")
	}
	_, taken := busyVehicles[vehicleID]
	return !taken, nil
}

// busyResources collects driver and vehicle ids holding a non-cancelled
// activity whose window overlaps the requested one on the given date.
func (s *AvailabilityService) busyResources(ctx context.Context, date time.Time, window models.TimeWindow) (map[int64]struct{}, map[int64]struct{}, error) {
	sameDay, err := s.activities.ListByDate(ctx, date)
	if err != nil {
		return nil, nil, fmt.Errorf("load activities for availability: %w", err)
	}

	busyDrivers := make(map[int64]struct{})
	busyVehicles := make(map[int64]struct{})
	for _, activity := range sameDay {
		if activity.IsCancelled() {
			continue
		}
		if !window.Overlaps(activity.Window()) {
			continue
		}
		if activity.DriverID > 0 {
			busyDrivers[activity.DriverID] = struct{}{}
		}
		if activity.VehicleID > 0 {
			busyVehicles[activity.VehicleID] = struct{}{}
		}
	}
	return busyDrivers, busyVehicles, nil
}

func (s *AvailabilityService) activeDrivers(ctx context.Context) ([]models.Driver, error) {
	const key = "roster:drivers:active"
	var cached []models.Driver
	if s.cache.Enabled() {
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	roster, err := s.drivers.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, roster, s.rosterTTL); err != nil {
			s.logger.Warn("failed to cache driver roster", zap.Error(err))
		}
	}
	return roster, nil
}

func (s *AvailabilityService) activeVehicles(ctx context.Context) ([]models.Vehicle, error) {
	const key = "roster:vehicles:active"
	var cached []models.Vehicle
	if s.cache.Enabled() {
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	roster, err := s.vehicles.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, roster, s.rosterTTL); err != nil {
			s.logger.Warn("failed to cache vehicle roster", zap.Error(err))
		}
	}
	return roster, nil
}
