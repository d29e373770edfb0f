package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"mime/multipart"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Metadata map[string]any

// Actor is the authenticated user an operation runs on behalf of.
type Actor struct {
	ID   uint
	Name string
	Role Role
}

func (a Actor) IsStaff() bool {
	return a.Role == ROLE_ADMIN || a.Role == ROLE_STAFF
}

type Role string

const (
	ROLE_ADMIN    Role = "admin"
	ROLE_STAFF    Role = "staff"
	ROLE_CUSTOMER Role = "customer"
)

type VehicleStatus string

const (
	VEHICLE_AVAILABLE         VehicleStatus = "Available"
	VEHICLE_RESERVED          VehicleStatus = "Reserved"
	VEHICLE_IN_USE            VehicleStatus = "in use"
	VEHICLE_MAINTENANCE       VehicleStatus = "maintenance"
	VEHICLE_UNDER_MAINTENANCE VehicleStatus = "Under Maintenance"
)

type RentalOrderStatus string

const (
	RENTAL_PENDING    RentalOrderStatus = "pending"
	RENTAL_IN_PAYMENT RentalOrderStatus = "in payment"
	RENTAL_PAID       RentalOrderStatus = "paid"
	RENTAL_IN_SESSION RentalOrderStatus = "in session"
	RENTAL_COMPLETED  RentalOrderStatus = "completed"
	RENTAL_CANCELLED  RentalOrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PAYMENT_PENDING   PaymentStatus = "pending"
	PAYMENT_COMPLETED PaymentStatus = "completed"
	PAYMENT_FAILED    PaymentStatus = "failed"
	PAYMENT_REFUNDED  PaymentStatus = "refunded"
)

type SessionStatus string

const (
	SESSION_ACTIVE    SessionStatus = "active"
	SESSION_COMPLETED SessionStatus = "completed"
	SESSION_CANCELLED SessionStatus = "cancelled"
)

// Status values a payment writes onto its payable.
const (
	PAYABLE_IN_PAYMENT = "in payment"
	PAYABLE_PAID       = "paid"
)

const PAYABLE_RENTAL_ORDER = "rental_order"

const (
	ATTACHMENT_PROOF_OF_PAYMENT = "proof_of_payment"
	ATTACHMENT_VEHICLE_IMAGE    = "image"
	ATTACHMENT_QR_CODE          = "qr_code"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type SessionTokenParams struct {
	Token string `uri:"token" binding:"required"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterUserRequestBody struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type CreateVehicleRequestBody struct {
	Brand           string   `json:"brand" form:"brand" binding:"required"`
	PlateNo         string   `json:"plate_no" form:"plate_no" binding:"required"`
	CountryOfOrigin string   `json:"country_of_origin" form:"country_of_origin"`
	Manufacturer    string   `json:"manufacturer" form:"manufacturer"`
	Model           string   `json:"model" form:"model"`
	Color           string   `json:"color" form:"color"`
	Type            string   `json:"type" form:"type"`
	Year            string   `json:"year" form:"year"`
	Mileage         string   `json:"mileage" form:"mileage"`
	Condition       string   `json:"condition" form:"condition"`
	RentalRate      *float64 `json:"rental_rate" form:"rental_rate" binding:"omitempty,gte=0"`
	Status          string   `json:"status" form:"status" binding:"omitempty,vehiclestatus"`
}

type VehicleQueryFilters struct {
	Status string `form:"status" binding:"omitempty,vehiclestatus"`
	Search string `form:"search"`
}

type CreateRentalOrderRequestBody struct {
	VehicleID  uint   `json:"vehicle_id" binding:"required"`
	UserID     uint   `json:"user_id,omitempty"`
	RentalDate string `json:"rental_date" binding:"required,isodate"`
	ReturnDate string `json:"return_date" binding:"required,isodate,gtdate=RentalDate"`
	Notes      string `json:"notes,omitempty"`
}

type UpdateRentalOrderRequestBody struct {
	VehicleID  uint    `json:"vehicle_id,omitempty"`
	RentalDate string  `json:"rental_date,omitempty" binding:"omitempty,isodate"`
	ReturnDate string  `json:"return_date,omitempty" binding:"omitempty,isodate"`
	Notes      *string `json:"notes,omitempty"`
	Status     string  `json:"status,omitempty"`
}

type RentalOrderQueryFilters struct {
	Status string `form:"status"`
	UserID uint   `form:"user_id"`
	Search string `form:"search"`
}

type CreatePaymentAccountRequestBody struct {
	AccountNumber string `json:"account_number" form:"account_number" binding:"required"`
	AccountName   string `json:"account_name" form:"account_name" binding:"required"`
	Provider      string `json:"provider" form:"provider" binding:"required"`
	Descriptions  string `json:"descriptions" form:"descriptions"`
	IsActive      *bool  `json:"is_active" form:"is_active"`
}

type RecordPaymentRequestBody struct {
	PaymentAccountID uint    `json:"payment_account_id" form:"payment_account_id" binding:"required"`
	PayableType      string  `json:"payable_type" form:"payable_type" binding:"required"`
	PayableID        uint    `json:"payable_id" form:"payable_id" binding:"required"`
	Amount           float64 `json:"total_amount" form:"total_amount" binding:"required,gt=0"`
	Status           string  `json:"status" form:"status" binding:"omitempty,oneof=pending completed failed refunded"`
	Memo             string  `json:"memo" form:"memo"`
}

type UpdatePaymentRequestBody struct {
	PaymentAccountID uint    `json:"payment_account_id" binding:"required"`
	Amount           float64 `json:"total_amount" binding:"required,gt=0"`
	Memo             *string `json:"memo"`
	Status           string  `json:"status" binding:"omitempty,oneof=pending completed failed refunded"`
}

type UpdatePaymentStatusRequestBody struct {
	Status string `json:"status" binding:"required,oneof=pending completed failed refunded"`
}

type PaymentQueryFilters struct {
	Status           string `form:"status"`
	PaymentAccountID uint   `form:"payment_account_id"`
	From             string `form:"from" binding:"omitempty,isodate"`
	To               string `form:"to" binding:"omitempty,isodate"`
	Search           string `form:"search"`
}

type StartSessionRequestBody struct {
	Pin       string `json:"pin" binding:"required,numeric,min=4,max=6"`
	RefNumber string `json:"ref_number" binding:"required"`
	Notes     string `json:"notes,omitempty"`
}

type RecordLocationRequestBody struct {
	Latitude    *float64 `json:"latitude" binding:"required"`
	Longitude   *float64 `json:"longitude" binding:"required"`
	Speed       *string  `json:"speed,omitempty"`
	Direction   *string  `json:"direction,omitempty"`
	Description *string  `json:"location_description,omitempty"`
}

type CreateMaintenanceRequestBody struct {
	VehicleID       uint     `json:"vehicle_id" binding:"required"`
	Description     string   `json:"description"`
	RequestedDate   string   `json:"requested_date" binding:"omitempty,isodate"`
	MaintenanceDate string   `json:"maintenance_date" binding:"omitempty,isodate"`
	Cost            *float64 `json:"cost" binding:"omitempty,gte=0"`
}

type UpdateMaintenanceRequestBody struct {
	Description     *string  `json:"description"`
	RequestedDate   string   `json:"requested_date" binding:"omitempty,isodate"`
	MaintenanceDate string   `json:"maintenance_date" binding:"omitempty,isodate"`
	Cost            *float64 `json:"cost" binding:"omitempty,gte=0"`
}

type MaintenanceQueryFilters struct {
	VehicleID   uint  `form:"vehicle_id"`
	IsCompleted *bool `form:"is_completed"`
}

type UserQueryFilters struct {
	Role   string `form:"role" binding:"omitempty,oneof=admin staff customer"`
	Search string `form:"search"`
}

type CreateUserRequestBody struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"omitempty,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"eqfield=Password"`
	Pin                  string `json:"pin" binding:"omitempty,numeric,min=4,max=6"`
	PinConfirmation      string `json:"pin_confirmation" binding:"eqfield=Pin"`
	Role                 string `json:"role" binding:"omitempty,oneof=admin staff customer"`
	FirstName            string `json:"first_name" binding:"max=255"`
	LastName             string `json:"last_name" binding:"max=255"`
	PhoneNumber          string `json:"phone_number" binding:"max=20"`
	Address              string `json:"address"`
	Gender               string `json:"gender" binding:"omitempty,oneof=male female other"`
	BirthDate            string `json:"birth_date" binding:"omitempty,isodate"`
}

type ReportQueryFilters struct {
	From string `form:"from" binding:"omitempty,isodate"`
	To   string `form:"to" binding:"omitempty,isodate"`
}

type PaginationQuery struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

type UploadRequestBody struct {
	File *multipart.FileHeader `form:"file" binding:"required"`
}

type Handler func(payload string)
