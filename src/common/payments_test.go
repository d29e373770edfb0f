package common

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"vrs/src/lib"
	"vrs/src/models"
	"vrs/src/types"

	"github.com/stretchr/testify/suite"
)

type PaymentsTestSuite struct {
	baseSuite
}

func TestPaymentsTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentsTestSuite))
}

func (s *PaymentsTestSuite) paymentBody(order *models.RentalOrder, status types.PaymentStatus) types.RecordPaymentRequestBody {
	return types.RecordPaymentRequestBody{
		PaymentAccountID: s.account.ID,
		PayableType:      types.PAYABLE_RENTAL_ORDER,
		PayableID:        order.ID,
		Amount:           order.TotalAmount,
		Status:           string(status),
	}
}

func (s *PaymentsTestSuite) TestRecordCompletedPaymentMarksOrderPaid() {
	order := s.newOrder(s.vehicle.ID)
	payment, err := RecordPayment(s.ctx, s.staff, s.paymentBody(order, types.PAYMENT_COMPLETED))
	s.Require().NoError(err)
	s.Equal("PAY-000001", *payment.RefNumber)
	s.Equal(s.customer.ID, payment.PaidBy)
	s.Equal(types.RENTAL_PAID, s.reloadOrder(order.ID).Status)

	paid, ok := payment.Payable.(*models.RentalOrder)
	s.Require().True(ok)
	s.Equal(types.RENTAL_PAID, paid.Status)

	second, err := RecordPayment(s.ctx, s.staff, s.paymentBody(order, types.PAYMENT_PENDING))
	s.Require().NoError(err)
	s.Equal("PAY-000002", *second.RefNumber)
}

func (s *PaymentsTestSuite) TestRecordPaymentRequiresStaff() {
	order := s.newOrder(s.vehicle.ID)
	_, err := RecordPayment(s.ctx, s.customer, s.paymentBody(order, types.PAYMENT_COMPLETED))
	s.assertCode(types.ErrAuth, err)
}

func (s *PaymentsTestSuite) TestRecordPaymentValidation() {
	order := s.newOrder(s.vehicle.ID)

	body := s.paymentBody(order, types.PAYMENT_COMPLETED)
	body.PayableType = "invoice"
	_, err := RecordPayment(s.ctx, s.staff, body)
	s.assertCode(types.ErrValidation, err)

	body = s.paymentBody(order, types.PAYMENT_COMPLETED)
	body.PayableID = 9999
	_, err = RecordPayment(s.ctx, s.staff, body)
	s.assertCode(types.ErrNotFound, err)

	body = s.paymentBody(order, "settled")
	_, err = RecordPayment(s.ctx, s.staff, body)
	s.assertCode(types.ErrValidation, err)

	s.Require().NoError(s.db.Model(&s.account).Update("is_active", false).Error)
	_, err = RecordPayment(s.ctx, s.staff, s.paymentBody(order, types.PAYMENT_COMPLETED))
	s.assertCode(types.ErrValidation, err)

	var count int64
	s.db.Model(&models.Payment{}).Count(&count)
	s.Zero(count)
	s.Equal(types.RENTAL_PENDING, s.reloadOrder(order.ID).Status)
}

func (s *PaymentsTestSuite) TestSubmitPaymentWithProof() {
	order := s.newOrder(s.vehicle.ID)
	proof := s.fileHeader("receipt.png", "image/png", []byte("png-bytes"))

	payment, err := SubmitPayment(s.ctx, s.customer, s.paymentBody(order, types.PAYMENT_COMPLETED), proof)
	s.Require().NoError(err)
	s.Equal(types.PAYMENT_PENDING, payment.Status)
	s.Equal(types.RENTAL_IN_PAYMENT, s.reloadOrder(order.ID).Status)
	s.Require().NotNil(payment.Proof)
	s.Equal("receipt.png", payment.Proof.FileName)
	s.True(strings.HasPrefix(payment.Proof.URL, "/storage/payments/"))

	local := lib.GetStorage().(*lib.LocalStorage)
	content, err := os.ReadFile(filepath.Join(local.Root(), payment.Proof.Path))
	s.Require().NoError(err)
	s.Equal("png-bytes", string(content))

	confirmed, err := UpdatePaymentStatus(s.ctx, s.staff, payment.ID, string(types.PAYMENT_COMPLETED))
	s.Require().NoError(err)
	s.Equal(types.PAYMENT_COMPLETED, confirmed.Status)
	s.Equal(types.RENTAL_PAID, s.reloadOrder(order.ID).Status)

	_, err = SubmitPayment(s.ctx, s.customer, s.paymentBody(order, types.PAYMENT_PENDING), nil)
	s.assertCode(types.ErrConflict, err)
}

func (s *PaymentsTestSuite) TestSubmitPaymentForSomeoneElsesOrder() {
	order := s.newOrder(s.vehicle.ID)
	other := s.createUser(types.ROLE_CUSTOMER, "").Actor()
	_, err := SubmitPayment(s.ctx, other, s.paymentBody(order, types.PAYMENT_PENDING), nil)
	s.assertCode(types.ErrNotFound, err)
	s.Equal(types.RENTAL_PENDING, s.reloadOrder(order.ID).Status)
}

func (s *PaymentsTestSuite) TestReplaceProof() {
	order := s.newOrder(s.vehicle.ID)
	payment, err := SubmitPayment(s.ctx, s.customer, s.paymentBody(order, types.PAYMENT_PENDING), s.fileHeader("first.jpg", "image/jpeg", []byte("one")))
	s.Require().NoError(err)

	updated, err := AttachProof(s.ctx, s.customer, payment.ID, s.fileHeader("second.jpg", "image/jpeg", []byte("two")))
	s.Require().NoError(err)
	s.Equal("second.jpg", updated.Proof.FileName)

	var count int64
	s.db.Model(&models.Attachment{}).Where("owner_type = ? AND owner_id = ?", paymentOwnerType, payment.ID).Count(&count)
	s.EqualValues(1, count)

	local := lib.GetStorage().(*lib.LocalStorage)
	_, err = os.Stat(filepath.Join(local.Root(), payment.Proof.Path))
	s.True(os.IsNotExist(err))
}

func (s *PaymentsTestSuite) TestUpdatePaymentStatus() {
	order := s.newOrder(s.vehicle.ID)
	payment, err := RecordPayment(s.ctx, s.staff, s.paymentBody(order, types.PAYMENT_PENDING))
	s.Require().NoError(err)

	_, err = UpdatePaymentStatus(s.ctx, s.customer, payment.ID, string(types.PAYMENT_COMPLETED))
	s.assertCode(types.ErrAuth, err)
	_, err = UpdatePaymentStatus(s.ctx, s.staff, payment.ID, "lost")
	s.assertCode(types.ErrValidation, err)
	_, err = UpdatePaymentStatus(s.ctx, s.staff, 9999, string(types.PAYMENT_FAILED))
	s.assertCode(types.ErrNotFound, err)

	failed, err := UpdatePaymentStatus(s.ctx, s.staff, payment.ID, string(types.PAYMENT_FAILED))
	s.Require().NoError(err)
	s.Equal(types.PAYMENT_FAILED, failed.Status)
	s.Equal(types.RENTAL_PENDING, s.reloadOrder(order.ID).Status)
}

func (s *PaymentsTestSuite) TestGetPaymentScopesCustomers() {
	order := s.newOrder(s.vehicle.ID)
	payment, err := RecordPayment(s.ctx, s.staff, s.paymentBody(order, types.PAYMENT_PENDING))
	s.Require().NoError(err)

	got, err := GetPayment(s.ctx, s.customer, payment.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.PaymentAccount)
	s.Equal("GCash", got.PaymentAccount.Provider)
	s.IsType(&models.RentalOrder{}, got.Payable)

	other := s.createUser(types.ROLE_CUSTOMER, "").Actor()
	_, err = GetPayment(s.ctx, other, payment.ID)
	s.assertCode(types.ErrNotFound, err)
}

func (s *PaymentsTestSuite) TestListPayments() {
	first := s.newOrder(s.vehicle.ID)
	_, err := RecordPayment(s.ctx, s.staff, s.paymentBody(first, types.PAYMENT_COMPLETED))
	s.Require().NoError(err)
	second := s.newOrder(s.createVehicle(900).ID)
	_, err = RecordPayment(s.ctx, s.staff, s.paymentBody(second, types.PAYMENT_PENDING))
	s.Require().NoError(err)

	page, err := ListPayments(s.ctx, s.staff, types.PaymentQueryFilters{}, types.PaginationQuery{Page: 1, PerPage: 10})
	s.Require().NoError(err)
	s.EqualValues(2, page.Total)

	page, err = ListPayments(s.ctx, s.staff, types.PaymentQueryFilters{Status: string(types.PAYMENT_COMPLETED)}, types.PaginationQuery{Page: 1, PerPage: 10})
	s.Require().NoError(err)
	s.EqualValues(1, page.Total)
	s.Equal("PAY-000001", *page.Data[0].RefNumber)

	page, err = ListPayments(s.ctx, s.staff, types.PaymentQueryFilters{Search: "000002"}, types.PaginationQuery{Page: 1, PerPage: 1})
	s.Require().NoError(err)
	s.EqualValues(1, page.Total)
	s.Len(page.Data, 1)

	other := s.createUser(types.ROLE_CUSTOMER, "").Actor()
	page, err = ListPayments(s.ctx, other, types.PaymentQueryFilters{}, types.PaginationQuery{Page: 1, PerPage: 10})
	s.Require().NoError(err)
	s.Zero(page.Total)
}

func (s *PaymentsTestSuite) TestPayableItemsExcludesPaidOrders() {
	paid := s.newOrder(s.vehicle.ID)
	_, err := RecordPayment(s.ctx, s.staff, s.paymentBody(paid, types.PAYMENT_COMPLETED))
	s.Require().NoError(err)
	open := s.newOrder(s.createVehicle(900).ID)

	items, err := PayableItems(s.ctx, s.customer)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(open.ID, items[0].ID)
	s.NotNil(items[0].Vehicle)
}

type brokenStorage struct{}

func (brokenStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	return "", errors.New("bucket down")
}

func (brokenStorage) Delete(ctx context.Context, key string) error { return nil }

func (brokenStorage) URL(ctx context.Context, key string) (string, error) { return "", nil }

func (s *PaymentsTestSuite) TestSubmitPaymentRollsBackWhenProofFails() {
	order := s.newOrder(s.vehicle.ID)
	lib.NewStorage(brokenStorage{})

	_, err := SubmitPayment(s.ctx, s.customer, s.paymentBody(order, types.PAYMENT_PENDING), s.fileHeader("receipt.png", "image/png", []byte("png-bytes")))
	s.Require().Error(err)
	s.EqualError(err, "bucket down")

	var payments, attachments int64
	s.db.Model(&models.Payment{}).Count(&payments)
	s.db.Model(&models.Attachment{}).Count(&attachments)
	s.Zero(payments)
	s.Zero(attachments)
	s.Equal(types.RENTAL_PENDING, s.reloadOrder(order.ID).Status)

	lib.NewStorage(lib.NewLocalStorage(s.T().TempDir(), "/storage"))
	payment, err := SubmitPayment(s.ctx, s.customer, s.paymentBody(order, types.PAYMENT_PENDING), s.fileHeader("receipt.png", "image/png", []byte("png-bytes")))
	s.Require().NoError(err)
	s.Require().NotNil(payment.Proof)
	s.db.Model(&models.Payment{}).Count(&payments)
	s.EqualValues(1, payments)
}

func (s *PaymentsTestSuite) TestStaffUpdatePayment() {
	order := s.newOrder(s.vehicle.ID)
	payment, err := RecordPayment(s.ctx, s.staff, s.paymentBody(order, types.PAYMENT_PENDING))
	s.Require().NoError(err)
	maya := models.PaymentAccount{AccountNumber: "09998887777", AccountName: "Rentals Inc", Provider: "Maya", IsActive: true}
	s.Require().NoError(s.db.Create(&maya).Error)

	memo := "paid at the counter"
	updated, err := UpdatePayment(s.ctx, s.staff, payment.ID, types.UpdatePaymentRequestBody{
		PaymentAccountID: maya.ID,
		Amount:           2800,
		Memo:             &memo,
		Status:           string(types.PAYMENT_COMPLETED),
	})
	s.Require().NoError(err)
	s.Equal(types.PAYMENT_COMPLETED, updated.Status)

	var stored models.Payment
	s.Require().NoError(s.db.First(&stored, payment.ID).Error)
	s.Equal(maya.ID, stored.PaymentAccountID)
	s.Equal(2800.0, stored.TotalAmount)
	s.Equal(memo, *stored.Memo)
	s.Equal(*payment.RefNumber, *stored.RefNumber)
	s.Equal(types.RENTAL_PAID, s.reloadOrder(order.ID).Status)

	_, err = UpdatePayment(s.ctx, s.staff, 9999, types.UpdatePaymentRequestBody{PaymentAccountID: maya.ID, Amount: 1})
	s.assertCode(types.ErrNotFound, err)
	_, err = UpdatePayment(s.ctx, s.staff, payment.ID, types.UpdatePaymentRequestBody{PaymentAccountID: maya.ID, Amount: 0})
	s.assertCode(types.ErrValidation, err)
}

func (s *PaymentsTestSuite) TestCustomerUpdatesOnlyOwnPendingPayment() {
	order := s.newOrder(s.vehicle.ID)
	payment, err := SubmitPayment(s.ctx, s.customer, s.paymentBody(order, types.PAYMENT_PENDING), nil)
	s.Require().NoError(err)

	edit := types.UpdatePaymentRequestBody{PaymentAccountID: s.account.ID, Amount: 2900}
	updated, err := UpdatePayment(s.ctx, s.customer, payment.ID, edit)
	s.Require().NoError(err)
	s.Equal(2900.0, updated.TotalAmount)
	s.Equal(types.PAYMENT_PENDING, updated.Status)

	edit.Status = string(types.PAYMENT_COMPLETED)
	_, err = UpdatePayment(s.ctx, s.customer, payment.ID, edit)
	s.assertCode(types.ErrValidation, err)

	other := s.createUser(types.ROLE_CUSTOMER, "").Actor()
	edit.Status = ""
	_, err = UpdatePayment(s.ctx, other, payment.ID, edit)
	s.assertCode(types.ErrNotFound, err)

	_, err = UpdatePaymentStatus(s.ctx, s.staff, payment.ID, string(types.PAYMENT_FAILED))
	s.Require().NoError(err)
	_, err = UpdatePayment(s.ctx, s.customer, payment.ID, edit)
	s.assertCode(types.ErrConflict, err)
}

func (s *PaymentsTestSuite) TestDeletePayment() {
	order := s.newOrder(s.vehicle.ID)
	pending, err := SubmitPayment(s.ctx, s.customer, s.paymentBody(order, types.PAYMENT_PENDING), s.fileHeader("receipt.png", "image/png", []byte("png-bytes")))
	s.Require().NoError(err)

	s.assertCode(types.ErrAuth, DeletePayment(s.ctx, s.customer, pending.ID))
	s.Require().NoError(DeletePayment(s.ctx, s.staff, pending.ID))
	s.assertCode(types.ErrNotFound, DeletePayment(s.ctx, s.staff, pending.ID))

	var attachments int64
	s.db.Model(&models.Attachment{}).Where("owner_type = ? AND owner_id = ?", paymentOwnerType, pending.ID).Count(&attachments)
	s.Zero(attachments)
	local := lib.GetStorage().(*lib.LocalStorage)
	_, err = os.Stat(filepath.Join(local.Root(), pending.Proof.Path))
	s.True(os.IsNotExist(err))

	completed, err := RecordPayment(s.ctx, s.staff, s.paymentBody(order, types.PAYMENT_COMPLETED))
	s.Require().NoError(err)
	s.assertCode(types.ErrConflict, DeletePayment(s.ctx, s.staff, completed.ID))
}
