package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/districtops/transport-api/internal/models"
)

const driverColumns = "id, full_name, phone, license_number, status, created_at, updated_at"

// DriverRepository provides persistence for the driver roster.
type DriverRepository struct {
	db *sqlx.DB
}

// NewDriverRepository creates a new driver repository.
func NewDriverRepository(db *sqlx.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// List returns drivers with optional filtering and pagination.
func (r *DriverRepository) List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, int, error) {
	base := "FROM drivers WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("full_name ILIKE $%d", len(args)+1))
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
		"full_name":  true,
		"status":     true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "full_name"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", driverColumns, base, sortBy, order, size, offset)
	var drivers []models.Driver
	if err := r.db.SelectContext(ctx, &drivers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list drivers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count drivers: %w", err)
	}

	return drivers, total, nil
}

// FindByID loads a driver by id.
func (r *DriverRepository) FindByID(ctx context.Context, id int64) (*models.Driver, error) {
	query := fmt.Sprintf("SELECT %s FROM drivers WHERE id = $1", driverColumns)
	var driver models.Driver
	if err := r.db.GetContext(ctx, &driver, query, id); err != nil {
		return nil, err
	}
	return &driver, nil
}

// ListActive returns all drivers eligible for assignment.
func (r *DriverRepository) ListActive(ctx context.Context) ([]models.Driver, error) {
	query := fmt.Sprintf("SELECT %s FROM drivers WHERE status = $1 ORDER BY full_name ASC", driverColumns)
	var drivers []models.Driver
	if err := r.db.SelectContext(ctx, &drivers, query, models.ResourceActive); err != nil {
		return nil, fmt.Errorf("list active drivers: %w", err)
	}
	return drivers, nil
}

// Create stores a new driver record and assigns its id.
func (r *DriverRepository) Create(ctx context.Context, driver *models.Driver) error {
	now := time.Now().UTC()
	if driver.CreatedAt.IsZero() {
		driver.CreatedAt = now
	}
	driver.UpdatedAt = now

	const query = `INSERT INTO drivers (full_name, phone, license_number, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		driver.FullName, driver.Phone, driver.LicenseNumber, driver.Status,
		driver.CreatedAt, driver.UpdatedAt,
	).Scan(&driver.ID); err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	return nil
}

// Update modifies a driver record.
func (r *DriverRepository) Update(ctx context.Context, driver *models.Driver) error {
	driver.UpdatedAt = time.Now().UTC()
	const query = `UPDATE drivers SET full_name = :full_name, phone = :phone, license_number = :license_number, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, driver); err != nil {
		return fmt.Errorf("update driver: %w", err)
	}
	return nil
}

// Deactivate marks a driver as inactive without removing history.
func (r *DriverRepository) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE drivers SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, models.ResourceInactive, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("deactivate driver: %w", err)
	}
	return nil
}
