package models

import (
	"time"
	"vrs/src/types"

	"gorm.io/gorm"
)

type RentalOrder struct {
	ID          uint                    `gorm:"primarykey" json:"id"`
	UserID      uint                    `gorm:"index" json:"user_id"`
	VehicleID   uint                    `gorm:"index" json:"vehicle_id"`
	RentalDate  time.Time               `gorm:"type:date" json:"rental_date"`
	ReturnDate  time.Time               `gorm:"type:date" json:"return_date"`
	TotalAmount float64                 `gorm:"type:decimal(10,2)" json:"total_amount"`
	Status      types.RentalOrderStatus `gorm:"index;default:'pending'" json:"status"`
	Notes       *string                 `json:"notes,omitempty"`
	RefNumber   *string                 `gorm:"uniqueIndex" json:"ref_number"`

	User     *User                  `json:"user,omitempty"`
	Vehicle  *Vehicle               `json:"vehicle,omitempty"`
	Payments []Payment              `gorm:"polymorphic:Payable;polymorphicValue:rental_order" json:"payments,omitempty"`
	Sessions []RentalVehicleSession `json:"sessions,omitempty"`

	types.Timestamps
}

var rentalOrderTransitions = map[types.RentalOrderStatus][]types.RentalOrderStatus{
	types.RENTAL_PENDING:    {types.RENTAL_IN_PAYMENT, types.RENTAL_PAID, types.RENTAL_CANCELLED},
	types.RENTAL_IN_PAYMENT: {types.RENTAL_PAID, types.RENTAL_CANCELLED},
	types.RENTAL_PAID:       {types.RENTAL_IN_SESSION},
	types.RENTAL_IN_SESSION: {types.RENTAL_COMPLETED},
}

// CanTransition reports whether an order may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to types.RentalOrderStatus) bool {
	if from == to {
		return true
	}
	for _, s := range rentalOrderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsRentalOrderStatus(s string) bool {
	switch types.RentalOrderStatus(s) {
	case types.RENTAL_PENDING, types.RENTAL_IN_PAYMENT, types.RENTAL_PAID,
		types.RENTAL_IN_SESSION, types.RENTAL_COMPLETED, types.RENTAL_CANCELLED:
		return true
	}
	return false
}

// Days is the number of rental days billed for the order.
func (o *RentalOrder) Days() int {
	return RentalDays(o.RentalDate, o.ReturnDate)
}

func RentalDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func (o *RentalOrder) PayableType() string { return types.PAYABLE_RENTAL_ORDER }
func (o *RentalOrder) PayableID() uint     { return o.ID }
func (o *RentalOrder) PayerID() uint       { return o.UserID }

// SetStatus moves the order to status when the transition is legal. The write is
// conditional on the status read earlier so a concurrent change surfaces as a conflict.
func (o *RentalOrder) SetStatus(tx *gorm.DB, status string) error {
	to := types.RentalOrderStatus(status)
	if !IsRentalOrderStatus(status) {
		return types.NewValidationError("invalid rental order status %q", status)
	}
	from := o.Status
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return types.NewConflictError("rental order %d cannot move from %s to %s", o.ID, from, to)
	}
	res := tx.
		Model(&RentalOrder{}).
		Where("id = ? AND status = ?", o.ID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NewConflictError("rental order %d was modified concurrently", o.ID)
	}
	o.Status = to
	return nil
}
