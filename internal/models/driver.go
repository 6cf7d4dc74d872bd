package models

import "time"

// ResourceStatus gates whether a driver or vehicle can be assigned.
type ResourceStatus string

const (
	ResourceActive   ResourceStatus = "ACTIVE"
	ResourceInactive ResourceStatus = "INACTIVE"
)

// Driver represents a district driver record.
type Driver struct {
	ID            int64          `db:"id" json:"id"`
	FullName      string         `db:"full_name" json:"full_name"`
	Phone         *string        `db:"phone" json:"phone,omitempty"`
	LicenseNumber *string        `db:"license_number" json:"license_number,omitempty"`
	Status        ResourceStatus `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// DriverFilter captures filtering options for listing drivers.
type DriverFilter struct {
	Search    string
	Status    ResourceStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
