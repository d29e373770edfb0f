package models

import "vrs/src/types"

type Vehicle struct {
	ID              uint                `gorm:"primarykey" json:"id"`
	Brand           string              `json:"brand"`
	PlateNo         string              `gorm:"index" json:"plate_no"`
	CountryOfOrigin *string             `json:"country_of_origin,omitempty"`
	Manufacturer    *string             `json:"manufacturer,omitempty"`
	Model           *string             `json:"model,omitempty"`
	Color           *string             `json:"color,omitempty"`
	Type            *string             `json:"type,omitempty"`
	Year            *string             `json:"year,omitempty"`
	Mileage         *string             `json:"mileage,omitempty"`
	Condition       *string             `json:"condition,omitempty"`
	RentalRate      float64             `gorm:"type:decimal(10,2)" json:"rental_rate"`
	Slug            string              `gorm:"index" json:"slug"`
	Status          types.VehicleStatus `gorm:"index;default:'Available'" json:"status"`

	Images []Attachment `gorm:"polymorphic:Owner;polymorphicValue:vehicle" json:"images,omitempty"`

	types.Timestamps
}

// IsBookable reports whether a new order may reserve the vehicle.
func (v *Vehicle) IsBookable() bool {
	return v.Status == types.VEHICLE_AVAILABLE
}

func IsVehicleStatus(s string) bool {
	switch types.VehicleStatus(s) {
	case types.VEHICLE_AVAILABLE, types.VEHICLE_RESERVED, types.VEHICLE_IN_USE,
		types.VEHICLE_MAINTENANCE, types.VEHICLE_UNDER_MAINTENANCE:
		return true
	}
	return false
}
