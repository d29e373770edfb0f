package models

import (
	"time"
	"vrs/src/types"
)

type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Name         string     `json:"name"`
	Email        string     `gorm:"uniqueIndex" json:"email"`
	PasswordHash string     `json:"-"`
	PinHash      string     `json:"-"`
	Role         types.Role `gorm:"default:'customer'" json:"role"`
	LastActive   *time.Time `json:"last_active,omitempty"`

	Profile      *Profile      `json:"profile,omitempty"`
	RentalOrders []RentalOrder `json:"rental_orders,omitempty"`

	types.Timestamps
}

func (u *User) HasPin() bool {
	return u.PinHash != ""
}

func (u *User) Actor() types.Actor {
	return types.Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

type Profile struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex" json:"user_id"`
	FirstName   *string    `json:"first_name,omitempty"`
	LastName    *string    `json:"last_name,omitempty"`
	PhoneNumber *string    `json:"phone_number,omitempty"`
	Address     *string    `json:"address,omitempty"`
	Gender      *string    `json:"gender,omitempty"`
	BirthDate   *time.Time `gorm:"type:date" json:"birth_date,omitempty"`

	types.Timestamps
}
