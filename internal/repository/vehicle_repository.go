package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/districtops/transport-api/internal/models"
)

const vehicleColumns = "id, vehicle_number, make, model, capacity, license_plate, status, created_at, updated_at"

// VehicleRepository provides persistence for the vehicle fleet.
type VehicleRepository struct {
	db *sqlx.DB
}

// NewVehicleRepository creates a new vehicle repository.
func NewVehicleRepository(db *sqlx.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// List returns vehicles with optional filtering and pagination.
func (r *VehicleRepository) List(ctx context.Context, filter models.VehicleFilter) ([]models.Vehicle, int, error) {
	base := "FROM vehicles WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("vehicle_number ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"vehicle_number": true,
		"capacity":       true,
		"status":         true,
		"created_at":     true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "vehicle_number"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", vehicleColumns, base, sortBy, order, size, offset)
	var vehicles []models.Vehicle
	if err := r.db.SelectContext(ctx, &vehicles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list vehicles: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count vehicles: %w", err)
	}

	return vehicles, total, nil
}

// FindByID loads a vehicle by id.
func (r *VehicleRepository) FindByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	query := fmt.Sprintf("SELECT %s FROM vehicles WHERE id = $1", vehicleColumns)
	var vehicle models.Vehicle
	if err := r.db.GetContext(ctx, &vehicle, query, id); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// ListActive returns all vehicles eligible for assignment.
func (r *VehicleRepository) ListActive(ctx context.Context) ([]models.Vehicle, error) {
	query := fmt.Sprintf("SELECT %s FROM vehicles WHERE status = $1 ORDER BY vehicle_number ASC", vehicleColumns)
	var vehicles []models.Vehicle
	if err := r.db.SelectContext(ctx, &vehicles, query, models.ResourceActive); err != nil {
		return nil, fmt.Errorf("list active vehicles: %w", err)
	}
	return vehicles, nil
}

// Create stores a new vehicle record and assigns its id.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	now := time.Now().UTC()
	if vehicle.CreatedAt.IsZero() {
		vehicle.CreatedAt = now
	}
	vehicle.UpdatedAt = now

	const query = `INSERT INTO vehicles (vehicle_number, make, model, capacity, license_plate, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		vehicle.Number, vehicle.Make, vehicle.Model, vehicle.Capacity,
		vehicle.LicensePlate, vehicle.Status, vehicle.CreatedAt, vehicle.UpdatedAt,
	).Scan(&vehicle.ID); err != nil {
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}

// Update modifies a vehicle record.
func (r *VehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	vehicle.UpdatedAt = time.Now().UTC()
	const query = `UPDATE vehicles SET vehicle_number = :vehicle_number, make = :make, model = :model, capacity = :capacity, license_plate = :license_plate, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, vehicle); err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	return nil
}

// Deactivate marks a vehicle as inactive without removing history.
func (r *VehicleRepository) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE vehicles SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, models.ResourceInactive, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("deactivate vehicle: %w", err)
	}
	return nil
}
