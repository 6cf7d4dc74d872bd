package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/districtops/transport-api/internal/models"
	appErrors "github.com/districtops/transport-api/pkg/errors"
)

type mockVehicleRepo struct {
	vehicles    map[int64]models.Vehicle
	nextID      int64
	deactivated []int64
}

func (m *mockVehicleRepo) List(ctx context.Context, filter models.VehicleFilter) ([]models.Vehicle, int, error) {
	var list []models.Vehicle
	for _, v := range m.vehicles {
		list = append(list, v)
	}
	return list, len(list), nil
}

func (m *mockVehicleRepo) FindByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	if v, ok := m.vehicles[id]; ok {
		return &v, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if m.vehicles == nil {
		m.vehicles = make(map[int64]models.Vehicle)
	}
	m.nextID++
	vehicle.ID = m.nextID
	m.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (m *mockVehicleRepo) Update(ctx context.Context, vehicle *models.Vehicle) error {
	if _, ok := m.vehicles[vehicle.ID]; !ok {
		return sql.ErrNoRows
	}
	m.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (m *mockVehicleRepo) Deactivate(ctx context.Context, id int64) error {
	if v, ok := m.vehicles[id]; ok {
		v.Status = models.ResourceInactive
		m.vehicles[id] = v
	}
	m.deactivated = append(m.deactivated, id)
	return nil
}

func TestVehicleServiceCreate(t *testing.T) {
	repo := &mockVehicleRepo{}
	svc := NewVehicleService(repo, nil, nil, zap.NewNop())

	make_ := "Blue Bird"
	vehicle, err := svc.Create(context.Background(), CreateVehicleRequest{
		Number:   " BUS-17 ",
		Make:     &make_,
		Capacity: 72,
	})
	require.NoError(t, err)
	assert.Equal(t, "BUS-17", vehicle.Number)
	assert.Equal(t, 72, vehicle.Capacity)
	assert.Equal(t, models.ResourceActive, vehicle.Status)
}

func TestVehicleServiceCreateRequiresNumber(t *testing.T) {
	svc := NewVehicleService(&mockVehicleRepo{}, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateVehicleRequest{Capacity: 72})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestVehicleServiceGetNotFound(t *testing.T) {
	svc := NewVehicleService(&mockVehicleRepo{}, nil, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), 42)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestVehicleServiceDeactivate(t *testing.T) {
	repo := &mockVehicleRepo{vehicles: map[int64]models.Vehicle{1: {ID: 1, Number: "BUS-17", Status: models.ResourceActive}}}
	svc := NewVehicleService(repo, nil, nil, zap.NewNop())

	require.NoError(t, svc.Deactivate(context.Background(), 1))
	assert.Equal(t, models.ResourceInactive, repo.vehicles[1].Status)
	assert.Equal(t, []int64{1}, repo.deactivated)
}
