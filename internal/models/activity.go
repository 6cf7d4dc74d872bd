package models

import "time"

// ActivityStatus enumerates the lifecycle states of an activity. The approval
// sub-machine is Scheduled -> PendingApproval -> Approved | Rejected; the
// remaining statuses are reachable by direct assignment.
type ActivityStatus string

const (
	StatusScheduled       ActivityStatus = "SCHEDULED"
	StatusPendingApproval ActivityStatus = "PENDING_APPROVAL"
	StatusApproved        ActivityStatus = "APPROVED"
	StatusRejected        ActivityStatus = "REJECTED"
	StatusCancelled       ActivityStatus = "CANCELLED"
	StatusCompleted       ActivityStatus = "COMPLETED"
	StatusInProgress      ActivityStatus = "IN_PROGRESS"
)

// Valid reports whether the status is one of the known values.
func (s ActivityStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusPendingApproval, StatusApproved, StatusRejected,
		StatusCancelled, StatusCompleted, StatusInProgress:
		return true
	}
	return false
}

// EditScope selects how far a series mutation reaches.
type EditScope string

const (
	// ScopeThisOnly touches the single referenced activity.
	ScopeThisOnly EditScope = "THIS_ONLY"
	// ScopeThisAndFuture touches all series members dated on or after the
	// referenced activity.
	ScopeThisAndFuture EditScope = "THIS_AND_FUTURE"
)

// Valid reports whether the scope is a known value.
func (s EditScope) Valid() bool {
	return s == ScopeThisOnly || s == ScopeThisAndFuture
}

// Activity is a single scheduled transportation event.
type Activity struct {
	ID                 int64          `db:"id" json:"id"`
	Date               time.Time      `db:"activity_date" json:"date"`
	LeaveTime          TimeOfDay      `db:"leave_time" json:"leave_time"`
	EventTime          TimeOfDay      `db:"event_time" json:"event_time"`
	ReturnTime         TimeOfDay      `db:"return_time" json:"return_time"`
	DriverID           int64          `db:"driver_id" json:"driver_id"`
	VehicleID          int64          `db:"vehicle_id" json:"vehicle_id"`
	RouteID            int64          `db:"route_id" json:"route_id"`
	ActivityType       string         `db:"activity_type" json:"activity_type"`
	Destination        string         `db:"destination" json:"destination"`
	RequestedBy        string         `db:"requested_by" json:"requested_by"`
	Description        string         `db:"description" json:"description"`
	Notes              string         `db:"notes" json:"notes"`
	ExpectedPassengers int            `db:"expected_passengers" json:"expected_passengers"`
	Status             ActivityStatus `db:"status" json:"status"`
	ApprovedBy         string         `db:"approved_by" json:"approved_by,omitempty"`
	ApprovalDate       *time.Time     `db:"approval_date" json:"approval_date,omitempty"`
	RecurringSeriesID  int64          `db:"recurring_series_id" json:"recurring_series_id,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// Window returns the half-open [LeaveTime, ReturnTime) booking window.
func (a *Activity) Window() TimeWindow {
	return TimeWindow{Start: a.LeaveTime, End: a.ReturnTime}
}

// SeriesKey resolves the recurrence series identifier. An activity without an
// explicit series id is its own series root.
func (a *Activity) SeriesKey() int64 {
	if a.RecurringSeriesID > 0 {
		return a.RecurringSeriesID
	}
	return a.ID
}

// IsCancelled reports whether the activity no longer holds its resources.
func (a *Activity) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// ActivityFilter describes query parameters for listing activities.
type ActivityFilter struct {
	DateFrom  *time.Time
	DateTo    *time.Time
	DriverID  int64
	VehicleID int64
	Status    ActivityStatus
	Type      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ActivityConflict describes an existing booking that blocks a candidate.
type ActivityConflict struct {
	ActivityID  int64     `json:"activity_id"`
	Date        time.Time `json:"date"`
	LeaveTime   TimeOfDay `json:"leave_time"`
	ReturnTime  TimeOfDay `json:"return_time"`
	DriverID    int64     `json:"driver_id,omitempty"`
	VehicleID   int64     `json:"vehicle_id,omitempty"`
	Destination string    `json:"destination"`
	Dimension   string    `json:"dimension"`
}

// ActivityConflictError is returned when a booking collides with existing ones.
type ActivityConflictError struct {
	Message   string             `json:"message"`
	Conflicts []ActivityConflict `json:"conflicts"`
}

// Error implements the error interface.
func (e *ActivityConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
