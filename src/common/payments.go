package common

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"vrs/src/db"
	"vrs/src/lib"
	"vrs/src/models"
	"vrs/src/models/scopes"
	"vrs/src/types"
	"vrs/src/utils"

	"gorm.io/gorm"
)

const (
	PAYMENT_REF_PREFIX = "PAY"
	paymentOwnerType   = "payment"
)

func isPaymentStatus(s string) bool {
	switch types.PaymentStatus(s) {
	case types.PAYMENT_PENDING, types.PAYMENT_COMPLETED, types.PAYMENT_FAILED, types.PAYMENT_REFUNDED:
		return true
	}
	return false
}

// recordPaymentTx inserts the payment and numbers it. A completed payment marks the
// payable paid in the same transaction.
func recordPaymentTx(tx *gorm.DB, payable Payable, body types.RecordPaymentRequestBody) (*models.Payment, error) {
	status := body.Status
	if status == "" {
		status = string(types.PAYMENT_PENDING)
	}
	if !isPaymentStatus(status) {
		return nil, types.NewValidationError("invalid payment status %q", status)
	}
	if body.Amount <= 0 {
		return nil, types.NewValidationError("amount must be greater than zero")
	}
	var account models.PaymentAccount
	if err := tx.First(&account, body.PaymentAccountID).Error; err != nil {
		return nil, lookupErr(err, "payment account", body.PaymentAccountID)
	}
	if !account.IsActive {
		return nil, types.NewValidationError("payment account %d is not active", account.ID)
	}
	payment := models.Payment{
		Memo:             utils.StringPtr(body.Memo),
		TotalAmount:      body.Amount,
		PayableType:      payable.PayableType(),
		PayableID:        payable.PayableID(),
		Status:           types.PaymentStatus(status),
		PaidBy:           payable.PayerID(),
		PaymentAccountID: account.ID,
	}
	if err := tx.Create(&payment).Error; err != nil {
		return nil, writeErr(err, "payment")
	}
	ref := utils.GenerateSequence(PAYMENT_REF_PREFIX, 6, payment.ID)
	if err := tx.Model(&payment).Update("ref_number", ref).Error; err != nil {
		return nil, writeErr(err, "payment reference")
	}
	payment.RefNumber = &ref
	if payment.Status == types.PAYMENT_COMPLETED {
		p, err := SetPayableStatus(tx, payment.PayableType, payment.PayableID, types.PAYABLE_PAID)
		if err != nil {
			return nil, err
		}
		payment.Payable = p
	}
	return &payment, nil
}

// RecordPayment is the staff flow: the payment is entered directly, possibly already
// completed.
func RecordPayment(ctx context.Context, actor types.Actor, body types.RecordPaymentRequestBody) (*models.Payment, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	var payment *models.Payment
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payable, err := ResolvePayable(tx, body.PayableType, body.PayableID)
		if err != nil {
			return err
		}
		payment, err = recordPaymentTx(tx, payable, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Payment %s recorded by %s\n", refOf(payment.RefNumber), actor.Name)
	paymentRecorded(ctx, payment)
	return payment, nil
}

// SubmitPayment is the customer flow: the payable moves to in payment and a pending
// payment with its proof waits for staff confirmation.
func SubmitPayment(ctx context.Context, actor types.Actor, body types.RecordPaymentRequestBody, proof *multipart.FileHeader) (*models.Payment, error) {
	body.Status = string(types.PAYMENT_PENDING)
	var payment *models.Payment
	var stored *models.Attachment
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payable, err := ResolvePayable(tx, body.PayableType, body.PayableID)
		if err != nil {
			return err
		}
		if payable.PayerID() != actor.ID {
			return types.NewNotFoundError("%s %d not found", body.PayableType, body.PayableID)
		}
		payable, err = SetPayableStatus(tx, body.PayableType, body.PayableID, types.PAYABLE_IN_PAYMENT)
		if err != nil {
			return err
		}
		payment, err = recordPaymentTx(tx, payable, body)
		if err != nil {
			return err
		}
		payment.Payable = payable
		if proof == nil {
			return nil
		}
		// the proof is part of the submission: no file, no payment
		stored, err = storeUpload(ctx, paymentOwnerType, payment.ID, types.ATTACHMENT_PROOF_OF_PAYMENT, uploadFromHeader(refOf(payment.RefNumber), proof))
		if err != nil {
			return err
		}
		return tx.Create(stored).Error
	})
	if err != nil {
		if stored != nil {
			purgeFiles(ctx, []models.Attachment{*stored})
		}
		return nil, err
	}
	log.Printf("Payment %s submitted by %s\n", refOf(payment.RefNumber), actor.Name)
	payment.Proof = stored
	paymentRecorded(ctx, payment)
	return payment, nil
}

func paymentRecorded(ctx context.Context, payment *models.Payment) {
	lib.RecordTransition("payment", string(payment.Status))
	if payment.Status == types.PAYMENT_COMPLETED || payment.PayableType == types.PAYABLE_RENTAL_ORDER {
		invalidateKioskOrders(ctx)
	}
	lib.PublishEvent(EVENT_PAYMENT_RECORDED, types.JSONB{
		"id":           payment.ID,
		"ref_number":   payment.RefNumber,
		"status":       payment.Status,
		"payable_type": payment.PayableType,
		"payable_id":   payment.PayableID,
		"total_amount": payment.TotalAmount,
	})
	notifyUser(ctx, payment.PaidBy, fmt.Sprintf("Payment %s %s", refOf(payment.RefNumber), payment.Status),
		fmt.Sprintf("We recorded your payment of %.2f. Current status: %s.", payment.TotalAmount, payment.Status))
}

// UpdatePaymentStatus is the staff confirmation step. Completing a payment marks its
// payable paid.
func UpdatePaymentStatus(ctx context.Context, actor types.Actor, id uint, status string) (*models.Payment, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if !isPaymentStatus(status) {
		return nil, types.NewValidationError("invalid payment status %q", status)
	}
	var payment models.Payment
	changed := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, id).Error; err != nil {
			return lookupErr(err, "payment", id)
		}
		var err error
		changed, err = setPaymentStatusTx(tx, &payment, types.PaymentStatus(status))
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		paymentStatusChanged(ctx, &payment)
	}
	return &payment, nil
}

// setPaymentStatusTx moves the payment to status and cascades a completion onto the
// payable. It reports whether the status changed.
func setPaymentStatusTx(tx *gorm.DB, payment *models.Payment, status types.PaymentStatus) (bool, error) {
	if payment.Status == status {
		return false, nil
	}
	if err := tx.Model(payment).Update("status", status).Error; err != nil {
		return false, err
	}
	payment.Status = status
	if status == types.PAYMENT_COMPLETED {
		p, err := SetPayableStatus(tx, payment.PayableType, payment.PayableID, types.PAYABLE_PAID)
		if err != nil {
			return false, err
		}
		payment.Payable = p
	}
	return true, nil
}

func paymentStatusChanged(ctx context.Context, payment *models.Payment) {
	lib.RecordTransition("payment", string(payment.Status))
	invalidateKioskOrders(ctx)
	lib.PublishEvent(EVENT_PAYMENT_UPDATED, types.JSONB{
		"id":         payment.ID,
		"ref_number": payment.RefNumber,
		"status":     payment.Status,
	})
	notifyUser(ctx, payment.PaidBy, fmt.Sprintf("Payment %s %s", refOf(payment.RefNumber), payment.Status),
		fmt.Sprintf("Your payment %s is now %s.", refOf(payment.RefNumber), payment.Status))
}

// UpdatePayment edits the account, amount, memo and status of a payment. Staff may
// edit any payment and completing it marks the payable paid. Customers may only
// edit their own pending payments, which stay pending.
func UpdatePayment(ctx context.Context, actor types.Actor, id uint, body types.UpdatePaymentRequestBody) (*models.Payment, error) {
	status := types.PaymentStatus(body.Status)
	if body.Status != "" && !isPaymentStatus(body.Status) {
		return nil, types.NewValidationError("invalid payment status %q", body.Status)
	}
	if !actor.IsStaff() && body.Status != "" && status != types.PAYMENT_PENDING {
		return nil, types.NewValidationError("only staff can set a payment to %s", body.Status)
	}
	if body.Amount <= 0 {
		return nil, types.NewValidationError("amount must be greater than zero")
	}
	var payment models.Payment
	changed := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ?", id)
		if !actor.IsStaff() {
			q = q.Where("paid_by = ?", actor.ID)
		}
		if err := q.First(&payment).Error; err != nil {
			return lookupErr(err, "payment", id)
		}
		if !actor.IsStaff() && payment.Status != types.PAYMENT_PENDING {
			return types.NewConflictError("payment %s is %s and can no longer be edited", refOf(payment.RefNumber), payment.Status)
		}
		if body.PaymentAccountID != payment.PaymentAccountID {
			var account models.PaymentAccount
			if err := tx.First(&account, body.PaymentAccountID).Error; err != nil {
				return lookupErr(err, "payment account", body.PaymentAccountID)
			}
			if !account.IsActive {
				return types.NewValidationError("payment account %d is not active", account.ID)
			}
		}
		payment.PaymentAccountID = body.PaymentAccountID
		payment.TotalAmount = body.Amount
		payment.Memo = body.Memo
		if err := tx.Model(&payment).Select("payment_account_id", "total_amount", "memo").Updates(&payment).Error; err != nil {
			return err
		}
		if body.Status == "" {
			return nil
		}
		var err error
		changed, err = setPaymentStatusTx(tx, &payment, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Payment %s updated by %s\n", refOf(payment.RefNumber), actor.Name)
	if changed {
		paymentStatusChanged(ctx, &payment)
	}
	return &payment, nil
}

// DeletePayment removes a payment that has not completed, with its proof. A completed
// payment backs its payable's paid status and is refunded instead.
func DeletePayment(ctx context.Context, actor types.Actor, id uint) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	var payment models.Payment
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, id).Error; err != nil {
			return lookupErr(err, "payment", id)
		}
		if payment.Status == types.PAYMENT_COMPLETED {
			return types.NewConflictError("payment %s is completed, refund it instead", refOf(payment.RefNumber))
		}
		res := tx.Where("status <> ?", types.PAYMENT_COMPLETED).Delete(&payment)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConflictError("payment %s was modified concurrently", refOf(payment.RefNumber))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := removeAttachments(ctx, paymentOwnerType, payment.ID, types.ATTACHMENT_PROOF_OF_PAYMENT); err != nil {
		log.Printf("Error removing proof of payment %s: %s\n", refOf(payment.RefNumber), err.Error())
	}
	log.Printf("Payment %s deleted by %s\n", refOf(payment.RefNumber), actor.Name)
	lib.PublishEvent(EVENT_PAYMENT_DELETED, types.JSONB{
		"id":           payment.ID,
		"ref_number":   payment.RefNumber,
		"payable_type": payment.PayableType,
		"payable_id":   payment.PayableID,
	})
	return nil
}

// AttachProof replaces the proof of payment. Customers may only touch their own payments.
func AttachProof(ctx context.Context, actor types.Actor, id uint, fh *multipart.FileHeader) (*models.Payment, error) {
	payment, err := GetPayment(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	attachment, err := replaceAttachment(ctx, paymentOwnerType, payment.ID, types.ATTACHMENT_PROOF_OF_PAYMENT, uploadFromHeader(refOf(payment.RefNumber), fh))
	if err != nil {
		return nil, err
	}
	payment.Proof = attachment
	return payment, nil
}

func ListPayments(ctx context.Context, actor types.Actor, filters types.PaymentQueryFilters, page types.PaginationQuery) (*Page[models.Payment], error) {
	page = normalizePage(page)
	from, to, err := utils.ParseDateRange(filters.From, filters.To)
	if err != nil {
		return nil, err
	}
	q := db.WithContext(ctx).
		Model(&models.Payment{}).
		Scopes(scopes.WithStatus(filters.Status), scopes.CreatedBetween(from, to))
	if !actor.IsStaff() {
		q = q.Where("paid_by = ?", actor.ID)
	}
	if filters.PaymentAccountID != 0 {
		q = q.Where("payment_account_id = ?", filters.PaymentAccountID)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		q = q.Where("ref_number LIKE ? OR memo LIKE ?", like, like)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var payments []models.Payment
	if err := q.
		Preload("PaymentAccount").
		Preload("Payer").
		Preload("Proof", "collection = ?", types.ATTACHMENT_PROOF_OF_PAYMENT).
		Scopes(scopes.Paginate(page.Page, page.PerPage)).
		Order("id DESC").
		Find(&payments).
		Error; err != nil {
		return nil, err
	}
	return &Page[models.Payment]{Data: payments, Total: total, Page: page.Page, PerPage: page.PerPage}, nil
}

func GetPayment(ctx context.Context, actor types.Actor, id uint) (*models.Payment, error) {
	conn := db.WithContext(ctx)
	q := conn.
		Preload("PaymentAccount").
		Preload("Payer").
		Preload("Proof", "collection = ?", types.ATTACHMENT_PROOF_OF_PAYMENT).
		Where("id = ?", id)
	if !actor.IsStaff() {
		q = q.Where("paid_by = ?", actor.ID)
	}
	var payment models.Payment
	if err := q.First(&payment).Error; err != nil {
		return nil, lookupErr(err, "payment", id)
	}
	payable, err := ResolvePayable(conn, payment.PayableType, payment.PayableID)
	if err == nil {
		payment.Payable = payable
	} else if types.Code(err) != types.ErrNotFound {
		return nil, err
	}
	return &payment, nil
}

// PayableItems lists the customer's orders that still need a payment.
func PayableItems(ctx context.Context, actor types.Actor) ([]models.RentalOrder, error) {
	var orders []models.RentalOrder
	if err := db.WithContext(ctx).
		Preload("Vehicle").
		Where("user_id = ?", actor.ID).
		Scopes(scopes.WithStatuses(types.RENTAL_PENDING, types.RENTAL_IN_PAYMENT)).
		Where("NOT EXISTS (?)", db.WithContext(ctx).
			Model(&models.Payment{}).
			Select("1").
			Where("payments.payable_type = ? AND payments.payable_id = rental_orders.id AND payments.status = ?",
				types.PAYABLE_RENTAL_ORDER, types.PAYMENT_COMPLETED)).
		Order("id DESC").
		Find(&orders).
		Error; err != nil {
		return nil, err
	}
	return orders, nil
}
