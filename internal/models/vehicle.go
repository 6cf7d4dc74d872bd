package models

import "time"

// Vehicle represents a bus or support vehicle in the district fleet.
type Vehicle struct {
	ID           int64          `db:"id" json:"id"`
	Number       string         `db:"vehicle_number" json:"vehicle_number"`
	Make         *string        `db:"make" json:"make,omitempty"`
	Model        *string        `db:"model" json:"model,omitempty"`
	Capacity     int            `db:"capacity" json:"capacity"`
	LicensePlate *string        `db:"license_plate" json:"license_plate,omitempty"`
	Status       ResourceStatus `db:"status" json:"status"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// VehicleFilter captures filtering options for listing vehicles.
type VehicleFilter struct {
	Search    string
	Status    ResourceStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
