package common

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"vrs/src/db/dbtest"
	"vrs/src/lib"
	"vrs/src/models"
	"vrs/src/types"
	"vrs/src/utils"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

const staffPin = "4821"

type baseSuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	staff    types.Actor
	customer types.Actor
	vehicle  models.Vehicle
	account  models.PaymentAccount
}

func (s *baseSuite) SetupTest() {
	t := s.T()
	t.Setenv("API_ENV", "test")
	t.Setenv("AWS_ACCOUNT_ID", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("ORDER_HOLD_TTL", "")
	lib.NewRedisClient(nil)
	lib.NewStorage(lib.NewLocalStorage(t.TempDir(), "/storage"))
	lib.ResetEventObservers()

	s.ctx = context.Background()
	s.db = dbtest.Open(t)
	s.staff = s.createUser(types.ROLE_STAFF, staffPin).Actor()
	s.customer = s.createUser(types.ROLE_CUSTOMER, "").Actor()
	s.vehicle = s.createVehicle(1500)
	s.account = models.PaymentAccount{
		AccountNumber: "09171234567",
		AccountName:   "Rentals Inc",
		Provider:      "GCash",
		IsActive:      true,
	}
	s.Require().NoError(s.db.Create(&s.account).Error)
}

func (s *baseSuite) createUser(role types.Role, pin string) *models.User {
	hash, err := utils.HashSecret("password123")
	s.Require().NoError(err)
	user := models.User{
		Name:         faker.Name(),
		Email:        faker.Email(),
		PasswordHash: hash,
		Role:         role,
	}
	if pin != "" {
		user.PinHash, err = utils.HashSecret(pin)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.db.Create(&user).Error)
	return &user
}

func (s *baseSuite) createVehicle(rate float64) models.Vehicle {
	plate := fmt.Sprintf("NCR %s", faker.UUIDDigit()[:6])
	vehicle := models.Vehicle{
		Brand:      "Toyota",
		PlateNo:    plate,
		RentalRate: rate,
		Slug:       vehicleSlug("Toyota", nil, plate),
		Status:     types.VEHICLE_AVAILABLE,
	}
	s.Require().NoError(s.db.Create(&vehicle).Error)
	return vehicle
}

func (s *baseSuite) reloadVehicle(id uint) models.Vehicle {
	var v models.Vehicle
	s.Require().NoError(s.db.First(&v, id).Error)
	return v
}

func (s *baseSuite) reloadOrder(id uint) models.RentalOrder {
	var o models.RentalOrder
	s.Require().NoError(s.db.First(&o, id).Error)
	return o
}

func (s *baseSuite) newOrder(vehicleID uint) *models.RentalOrder {
	order, err := CreateOrder(s.ctx, s.customer, types.CreateRentalOrderRequestBody{
		VehicleID:  vehicleID,
		RentalDate: "2025-01-01",
		ReturnDate: "2025-01-03",
	})
	s.Require().NoError(err)
	return order
}

func (s *baseSuite) paidOrder() *models.RentalOrder {
	order := s.newOrder(s.vehicle.ID)
	_, err := RecordPayment(s.ctx, s.staff, types.RecordPaymentRequestBody{
		PaymentAccountID: s.account.ID,
		PayableType:      types.PAYABLE_RENTAL_ORDER,
		PayableID:        order.ID,
		Amount:           order.TotalAmount,
		Status:           string(types.PAYMENT_COMPLETED),
	})
	s.Require().NoError(err)
	o := s.reloadOrder(order.ID)
	return &o
}

func (s *baseSuite) startSession(order *models.RentalOrder) *models.RentalVehicleSession {
	session, err := StartSession(s.ctx, types.StartSessionRequestBody{
		Pin:       staffPin,
		RefNumber: *order.RefNumber,
	})
	s.Require().NoError(err)
	return session
}

func (s *baseSuite) assertCode(code types.ErrCode, err error) {
	s.Require().Error(err)
	s.Equal(code, types.Code(err), err.Error())
}

func uintString(n uint) string {
	return fmt.Sprintf("%d", n)
}

func (s *baseSuite) fileHeader(fileName, contentType string, content []byte) *multipart.FileHeader {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	s.Require().NoError(err)
	s.T().Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}
