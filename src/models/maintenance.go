package models

import (
	"time"
	"vrs/src/types"
)

type MaintenanceRequest struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	RefNumber       *string    `gorm:"uniqueIndex" json:"ref_number"`
	VehicleID       uint       `gorm:"index" json:"vehicle_id"`
	Description     *string    `json:"description,omitempty"`
	RequestedDate   *time.Time `gorm:"type:date" json:"requested_date,omitempty"`
	MaintenanceDate *time.Time `gorm:"type:date" json:"maintenance_date,omitempty"`
	IsCompleted     bool       `gorm:"default:false" json:"is_completed"`
	Cost            *float64   `json:"cost,omitempty"`
	RequestedBy     *string    `json:"requested_by,omitempty"`

	Vehicle *Vehicle `json:"vehicle,omitempty"`

	types.Timestamps
}

func (MaintenanceRequest) TableName() string {
	return "maintenance_vehicle_requests"
}
