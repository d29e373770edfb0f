package models

import (
	"time"
	"vrs/src/types"
)

type RentalVehicleSession struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	RentalOrderID uint                `gorm:"index;uniqueIndex:idx_sessions_active_order,where:status = 'active'" json:"rental_order_id"`
	VehicleID     uint                `gorm:"index" json:"vehicle_id"`
	SessionToken  string              `gorm:"uniqueIndex;size:64" json:"session_token"`
	StartedAt     *time.Time          `json:"started_at"`
	EndedAt       *time.Time          `json:"ended_at,omitempty"`
	Status        types.SessionStatus `gorm:"index;default:'active'" json:"status"`
	TotalCost     float64             `gorm:"type:decimal(10,2);default:0" json:"total_cost"`
	Notes         *string             `json:"notes,omitempty"`
	EmployeeName  string              `json:"employee_name"`
	HandledBy     uint                `json:"handled_by"`

	RentalOrder *RentalOrder             `json:"rental_order,omitempty"`
	Vehicle     *Vehicle                 `json:"vehicle,omitempty"`
	Locations   []VehicleSessionLocation `json:"locations,omitempty"`

	types.Timestamps
}

func (s *RentalVehicleSession) IsActive() bool {
	return s.Status == types.SESSION_ACTIVE
}

// VehicleSessionLocation is an append-only GPS sample.
type VehicleSessionLocation struct {
	ID                     uint      `gorm:"primarykey" json:"id"`
	RentalVehicleSessionID uint      `gorm:"index" json:"rental_vehicle_session_id"`
	VehicleID              uint      `gorm:"index" json:"vehicle_id"`
	Latitude               float64   `gorm:"type:decimal(10,7)" json:"latitude"`
	Longitude              float64   `gorm:"type:decimal(10,7)" json:"longitude"`
	RecordedAt             time.Time `gorm:"index" json:"recorded_at"`
	LocationDescription    *string   `json:"location_description,omitempty"`
	Speed                  *string   `json:"speed,omitempty"`
	Direction              *string   `json:"direction,omitempty"`

	types.Timestamps
}
