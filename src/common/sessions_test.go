package common

import (
	"context"
	"sync"
	"testing"
	"time"
	"vrs/src/lib"
	"vrs/src/models"
	"vrs/src/types"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/suite"
)

type SessionsTestSuite struct {
	baseSuite
}

func TestSessionsTestSuite(t *testing.T) {
	suite.Run(t, new(SessionsTestSuite))
}

func point(lat, lon float64) types.RecordLocationRequestBody {
	return types.RecordLocationRequestBody{Latitude: &lat, Longitude: &lon}
}

func (s *SessionsTestSuite) TestUnknownPinWritesNothing() {
	order := s.paidOrder()
	_, err := StartSession(s.ctx, types.StartSessionRequestBody{Pin: "0000", RefNumber: *order.RefNumber})
	s.assertCode(types.ErrAuth, err)

	var count int64
	s.db.Model(&models.RentalVehicleSession{}).Count(&count)
	s.Zero(count)
	s.Equal(types.RENTAL_PAID, s.reloadOrder(order.ID).Status)
}

func (s *SessionsTestSuite) TestCustomerPinIsRejected() {
	s.createUser(types.ROLE_CUSTOMER, "7777")
	_, err := AuthenticatePin(s.ctx, "7777")
	s.assertCode(types.ErrAuth, err)

	user, err := AuthenticatePin(s.ctx, staffPin)
	s.Require().NoError(err)
	s.Equal(s.staff.ID, user.ID)
}

func (s *SessionsTestSuite) TestStartSessionRequiresPaidOrder() {
	order := s.newOrder(s.vehicle.ID)
	_, err := StartSession(s.ctx, types.StartSessionRequestBody{Pin: staffPin, RefNumber: *order.RefNumber})
	s.assertCode(types.ErrValidation, err)

	_, err = StartSession(s.ctx, types.StartSessionRequestBody{Pin: staffPin, RefNumber: "RENT-999999"})
	s.assertCode(types.ErrNotFound, err)
}

func (s *SessionsTestSuite) TestEndToEnd() {
	order, err := CreateOrder(s.ctx, s.customer, types.CreateRentalOrderRequestBody{
		VehicleID:  s.vehicle.ID,
		RentalDate: "2025-01-01",
		ReturnDate: "2025-01-03",
	})
	s.Require().NoError(err)
	s.Equal(s.vehicle.RentalRate*2, order.TotalAmount)

	payment, err := RecordPayment(s.ctx, s.staff, types.RecordPaymentRequestBody{
		PaymentAccountID: s.account.ID,
		PayableType:      types.PAYABLE_RENTAL_ORDER,
		PayableID:        order.ID,
		Amount:           order.TotalAmount,
		Status:           string(types.PAYMENT_COMPLETED),
	})
	s.Require().NoError(err)
	s.Equal("PAY-000001", *payment.RefNumber)
	s.Equal(types.RENTAL_PAID, s.reloadOrder(order.ID).Status)

	session, err := StartSession(s.ctx, types.StartSessionRequestBody{Pin: staffPin, RefNumber: *order.RefNumber, Notes: "full tank"})
	s.Require().NoError(err)
	s.Equal(types.SESSION_ACTIVE, session.Status)
	s.Equal(order.TotalAmount, session.TotalCost)
	s.Equal(s.staff.Name, session.EmployeeName)
	s.Len(session.SessionToken, 32)
	s.Equal(types.RENTAL_IN_SESSION, s.reloadOrder(order.ID).Status)
	s.Equal(types.VEHICLE_IN_USE, s.reloadVehicle(s.vehicle.ID).Status)

	_, err = RecordLocation(s.ctx, session.SessionToken, point(14.5995, 120.9842))
	s.Require().NoError(err)
	second, err := RecordLocation(s.ctx, session.SessionToken, point(14.6042, 120.9822))
	s.Require().NoError(err)

	latest, err := LatestLocation(s.ctx, session.SessionToken)
	s.Require().NoError(err)
	s.Equal(second.ID, latest.ID)

	view, err := GetKioskSession(s.ctx, session.SessionToken)
	s.Require().NoError(err)
	s.Equal(order.ID, view.Session.RentalOrder.ID)
	s.Equal(second.ID, view.LatestLocation.ID)

	closed, err := CloseSession(s.ctx, session.SessionToken)
	s.Require().NoError(err)
	s.Equal(types.SESSION_COMPLETED, closed.Status)
	s.Require().NotNil(closed.EndedAt)
	s.Equal(order.TotalAmount, closed.TotalCost)
	s.Equal(types.RENTAL_COMPLETED, s.reloadOrder(order.ID).Status)
	s.Equal(types.VEHICLE_AVAILABLE, s.reloadVehicle(s.vehicle.ID).Status)

	again, err := CloseSession(s.ctx, session.SessionToken)
	s.Require().NoError(err)
	s.Equal(types.SESSION_COMPLETED, again.Status)
	s.WithinDuration(*closed.EndedAt, *again.EndedAt, time.Millisecond)

	_, err = GetKioskSession(s.ctx, session.SessionToken)
	s.assertCode(types.ErrConflict, err)
}

func (s *SessionsTestSuite) TestConcurrentStartsOnlyOneWins() {
	order := s.paidOrder()
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = StartSession(context.Background(), types.StartSessionRequestBody{Pin: staffPin, RefNumber: *order.RefNumber})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		s.Equal(types.ErrConflict, types.Code(err))
	}
	s.Equal(1, ok)
	var active int64
	s.db.Model(&models.RentalVehicleSession{}).Where("status = ?", types.SESSION_ACTIVE).Count(&active)
	s.EqualValues(1, active)
}

func (s *SessionsTestSuite) TestSecondActiveSessionViolatesIndex() {
	order := s.paidOrder()
	session := s.startSession(order)
	dup := models.RentalVehicleSession{
		RentalOrderID: order.ID,
		VehicleID:     order.VehicleID,
		SessionToken:  "another-token",
		Status:        types.SESSION_ACTIVE,
	}
	err := writeErr(s.db.Create(&dup).Error, "active session")
	s.assertCode(types.ErrConflict, err)

	_, err = CloseSession(s.ctx, session.SessionToken)
	s.Require().NoError(err)
}

func (s *SessionsTestSuite) TestNoLocationsAfterClose() {
	order := s.paidOrder()
	session := s.startSession(order)
	_, err := CloseSession(s.ctx, session.SessionToken)
	s.Require().NoError(err)

	_, err = RecordLocation(s.ctx, session.SessionToken, point(14.5, 121.0))
	s.assertCode(types.ErrConflict, err)

	var count int64
	s.db.Model(&models.VehicleSessionLocation{}).Count(&count)
	s.Zero(count)
}

func (s *SessionsTestSuite) TestRecordLocationValidation() {
	_, err := RecordLocation(s.ctx, "missing", point(14.5, 121.0))
	s.assertCode(types.ErrNotFound, err)
	_, err = CloseSession(s.ctx, "missing")
	s.assertCode(types.ErrNotFound, err)

	order := s.paidOrder()
	session := s.startSession(order)
	_, err = RecordLocation(s.ctx, session.SessionToken, point(91, 121.0))
	s.assertCode(types.ErrValidation, err)
	_, err = RecordLocation(s.ctx, session.SessionToken, types.RecordLocationRequestBody{})
	s.assertCode(types.ErrValidation, err)
}

func (s *SessionsTestSuite) TestLatestLocationServedFromCache() {
	rdb, mock := redismock.NewClientMock()
	lib.NewRedisClient(rdb)
	defer lib.NewRedisClient(nil)

	mock.ExpectGet("session:cached-token:latest").SetVal(`{"id":77,"latitude":14.5,"longitude":121}`)
	location, err := LatestLocation(s.ctx, "cached-token")
	s.Require().NoError(err)
	s.EqualValues(77, location.ID)
	s.NoError(mock.ExpectationsWereMet())
}

func (s *SessionsTestSuite) TestKioskOrders() {
	paid := s.paidOrder()
	other := s.createVehicle(800)
	s.newOrder(other.ID)

	orders, err := KioskOrders(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(orders, 1)
	s.Equal(paid.ID, orders[0].ID)
}
