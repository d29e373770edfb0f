package common

import (
	"context"
	"mime/multipart"
	"os"
	"vrs/src/db"
	"vrs/src/lib"
	"vrs/src/models"
	"vrs/src/types"
	"vrs/src/utils"

	"gorm.io/gorm"
)

const paymentAccountOwnerType = "payment_account"

func ListPaymentAccounts(ctx context.Context, activeOnly bool) ([]models.PaymentAccount, error) {
	q := db.WithContext(ctx).Preload("QRCode", "collection = ?", types.ATTACHMENT_QR_CODE)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var accounts []models.PaymentAccount
	if err := q.Order("provider ASC").Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func GetPaymentAccount(ctx context.Context, id uint) (*models.PaymentAccount, error) {
	var account models.PaymentAccount
	if err := db.WithContext(ctx).
		Preload("QRCode", "collection = ?", types.ATTACHMENT_QR_CODE).
		First(&account, id).
		Error; err != nil {
		return nil, lookupErr(err, "payment account", id)
	}
	return &account, nil
}

func CreatePaymentAccount(ctx context.Context, actor types.Actor, body types.CreatePaymentAccountRequestBody) (*models.PaymentAccount, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	account := models.PaymentAccount{IsActive: true}
	applyPaymentAccountBody(&account, body)
	// IsActive false would be dropped by the column default on insert
	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&account).Error; err != nil {
			return writeErr(err, "payment account")
		}
		if !account.IsActive {
			return tx.Model(&account).Update("is_active", false).Error
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &account, nil
}

func UpdatePaymentAccount(ctx context.Context, actor types.Actor, id uint, body types.CreatePaymentAccountRequestBody) (*models.PaymentAccount, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	var account models.PaymentAccount
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, id).Error; err != nil {
			return lookupErr(err, "payment account", id)
		}
		applyPaymentAccountBody(&account, body)
		return tx.Save(&account).Error
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func applyPaymentAccountBody(a *models.PaymentAccount, body types.CreatePaymentAccountRequestBody) {
	a.AccountNumber = body.AccountNumber
	a.AccountName = body.AccountName
	a.Provider = body.Provider
	a.Descriptions = utils.StringPtr(body.Descriptions)
	if body.IsActive != nil {
		a.IsActive = *body.IsActive
	}
}

func DeletePaymentAccount(ctx context.Context, actor types.Actor, id uint) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	res := db.WithContext(ctx).Delete(&models.PaymentAccount{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NewNotFoundError("payment account %d not found", id)
	}
	return removeAttachments(ctx, paymentAccountOwnerType, id, types.ATTACHMENT_QR_CODE)
}

// UploadPaymentAccountQRCode replaces the account's QR image with an uploaded one.
func UploadPaymentAccountQRCode(ctx context.Context, actor types.Actor, id uint, fh *multipart.FileHeader) (*models.PaymentAccount, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	account, err := GetPaymentAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	attachment, err := replaceAttachment(ctx, paymentAccountOwnerType, id, types.ATTACHMENT_QR_CODE, uploadFromHeader(account.Provider, fh))
	if err != nil {
		return nil, err
	}
	account.QRCode = attachment
	return account, nil
}

// GeneratePaymentAccountQRCode renders the account number as the account's QR image.
func GeneratePaymentAccountQRCode(ctx context.Context, actor types.Actor, id uint) (*models.PaymentAccount, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	account, err := GetPaymentAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	path, err := lib.GenerateQRCode(account.AccountNumber)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)
	u, err := uploadFromFile(account.Provider, path, "image/jpeg")
	if err != nil {
		return nil, err
	}
	attachment, err := replaceAttachment(ctx, paymentAccountOwnerType, id, types.ATTACHMENT_QR_CODE, u)
	if err != nil {
		return nil, err
	}
	account.QRCode = attachment
	return account, nil
}

func RemovePaymentAccountQRCode(ctx context.Context, actor types.Actor, id uint) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	if _, err := GetPaymentAccount(ctx, id); err != nil {
		return err
	}
	return removeAttachments(ctx, paymentAccountOwnerType, id, types.ATTACHMENT_QR_CODE)
}
