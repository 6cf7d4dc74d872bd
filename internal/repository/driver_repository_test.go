package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/districtops/transport-api/internal/models"
)

func driverRow(id int64, name string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "full_name", "phone", "license_number", "status", "created_at", "updated_at",
	}).AddRow(id, name, "555-0101", "CDL-4471", "ACTIVE", now, now)
}

func TestDriverRepositoryList(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()
	repo := NewDriverRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, phone, license_number, status, created_at, updated_at FROM drivers WHERE 1=1 ORDER BY full_name ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(driverRow(5, "Maria Lopez"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM drivers WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	drivers, total, err := repo.List(context.Background(), models.DriverFilter{})
	require.NoError(t, err)
	assert.Len(t, drivers, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Maria Lopez", drivers[0].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverRepositoryListFiltersBySearch(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()
	repo := NewDriverRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM drivers WHERE 1=1 AND full_name ILIKE \$1 AND status = \$2 ORDER BY full_name ASC`).
		WithArgs("%lopez%", models.ResourceActive).
		WillReturnRows(driverRow(5, "Maria Lopez"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM drivers WHERE 1=1 AND full_name ILIKE \$1 AND status = \$2`).
		WithArgs("%lopez%", models.ResourceActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	drivers, total, err := repo.List(context.Background(), models.DriverFilter{
		Search: "lopez",
		Status: models.ResourceActive,
	})
	require.NoError(t, err)
	assert.Len(t, drivers, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()
	repo := NewDriverRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM drivers WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(driverRow(5, "Maria Lopez"))

	driver, err := repo.FindByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), driver.ID)
	assert.Equal(t, models.ResourceActive, driver.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverRepositoryFindByIDNoRows(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()
	repo := NewDriverRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM drivers WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()
	repo := NewDriverRepository(db)

	rows := driverRow(5, "Maria Lopez").AddRow(
		int64(6), "Sam Ortiz", "555-0102", "CDL-5512", "ACTIVE", time.Now(), time.Now(),
	)
	mock.ExpectQuery(`SELECT .+ FROM drivers WHERE status = \$1 ORDER BY full_name ASC`).
		WithArgs(models.ResourceActive).
		WillReturnRows(rows)

	drivers, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, drivers, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()
	repo := NewDriverRepository(db)

	mock.ExpectQuery("INSERT INTO drivers").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	driver := &models.Driver{FullName: "Maria Lopez", Status: models.ResourceActive}
	err := repo.Create(context.Background(), driver)
	require.NoError(t, err)
	assert.Equal(t, int64(12), driver.ID)
	assert.False(t, driver.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()
	repo := NewDriverRepository(db)

	mock.ExpectExec("UPDATE drivers SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	driver := &models.Driver{ID: 5, FullName: "Maria Lopez", Status: models.ResourceActive}
	err := repo.Update(context.Background(), driver)
	require.NoError(t, err)
	assert.False(t, driver.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()
	repo := NewDriverRepository(db)

	mock.ExpectExec(`UPDATE drivers SET status = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(models.ResourceInactive, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Deactivate(context.Background(), 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
