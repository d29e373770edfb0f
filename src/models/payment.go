package models

import "vrs/src/types"

type Payment struct {
	ID               uint                `gorm:"primarykey" json:"id"`
	Memo             *string             `json:"memo,omitempty"`
	RefNumber        *string             `gorm:"uniqueIndex" json:"ref_number"`
	TotalAmount      float64             `gorm:"type:decimal(10,2)" json:"total_amount"`
	PayableType      string              `gorm:"index:idx_payment_payable" json:"payable_type"`
	PayableID        uint                `gorm:"index:idx_payment_payable" json:"payable_id"`
	Status           types.PaymentStatus `gorm:"index;default:'pending'" json:"status"`
	PaidBy           uint                `gorm:"index" json:"paid_by"`
	PaymentAccountID uint                `gorm:"index" json:"payment_account_id"`

	Payer          *User           `gorm:"foreignKey:PaidBy" json:"payer,omitempty"`
	PaymentAccount *PaymentAccount `json:"payment_account,omitempty"`
	Proof          *Attachment     `gorm:"polymorphic:Owner;polymorphicValue:payment" json:"proof,omitempty"`
	Payable        any             `gorm:"-" json:"payable,omitempty"`

	types.Timestamps
}

type PaymentAccount struct {
	ID            uint    `gorm:"primarykey" json:"id"`
	AccountNumber string  `json:"account_number"`
	AccountName   string  `json:"account_name"`
	Provider      string  `json:"provider"`
	Descriptions  *string `json:"descriptions,omitempty"`
	IsActive      bool    `gorm:"default:true" json:"is_active"`

	QRCode   *Attachment `gorm:"polymorphic:Owner;polymorphicValue:payment_account" json:"qr_code,omitempty"`
	Payments []Payment   `json:"payments,omitempty"`

	types.Timestamps
}
