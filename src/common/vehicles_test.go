package common

import (
	"os"
	"path/filepath"
	"testing"
	"vrs/src/lib"
	"vrs/src/models"
	"vrs/src/types"

	"github.com/stretchr/testify/suite"
)

type VehiclesTestSuite struct {
	baseSuite
}

func TestVehiclesTestSuite(t *testing.T) {
	suite.Run(t, new(VehiclesTestSuite))
}

func (s *VehiclesTestSuite) TestCreateAndUpdate() {
	rate := 1800.0
	body := types.CreateVehicleRequestBody{
		Brand:      "Honda",
		Model:      "City",
		PlateNo:    "ABC 1234",
		RentalRate: &rate,
	}
	_, err := CreateVehicle(s.ctx, s.customer, body)
	s.assertCode(types.ErrAuth, err)

	vehicle, err := CreateVehicle(s.ctx, s.staff, body)
	s.Require().NoError(err)
	s.Equal(types.VEHICLE_AVAILABLE, vehicle.Status)
	s.Equal("honda-city-abc-1234", vehicle.Slug)
	s.Equal(rate, vehicle.RentalRate)

	body.Color = "White"
	body.Status = string(types.VEHICLE_UNDER_MAINTENANCE)
	updated, err := UpdateVehicle(s.ctx, s.staff, vehicle.ID, body)
	s.Require().NoError(err)
	s.Equal("White", *updated.Color)
	s.Equal(types.VEHICLE_UNDER_MAINTENANCE, updated.Status)

	_, err = UpdateVehicle(s.ctx, s.staff, 9999, body)
	s.assertCode(types.ErrNotFound, err)
}

func (s *VehiclesTestSuite) TestListVehicles() {
	s.newOrder(s.createVehicle(900).ID)

	page, err := ListVehicles(s.ctx, types.VehicleQueryFilters{}, types.PaginationQuery{Page: 1, PerPage: 10})
	s.Require().NoError(err)
	s.EqualValues(2, page.Total)

	page, err = ListVehicles(s.ctx, types.VehicleQueryFilters{Status: string(types.VEHICLE_AVAILABLE)}, types.PaginationQuery{Page: 1, PerPage: 10})
	s.Require().NoError(err)
	s.Require().EqualValues(1, page.Total)
	s.Equal(s.vehicle.ID, page.Data[0].ID)

	page, err = ListVehicles(s.ctx, types.VehicleQueryFilters{Search: s.vehicle.PlateNo}, types.PaginationQuery{Page: 1, PerPage: 10})
	s.Require().NoError(err)
	s.EqualValues(1, page.Total)
}

func (s *VehiclesTestSuite) TestDeleteVehicleWithOpenOrder() {
	order := s.newOrder(s.vehicle.ID)
	s.assertCode(types.ErrConflict, DeleteVehicle(s.ctx, s.staff, s.vehicle.ID))

	_, err := CancelOrder(s.ctx, s.customer, order.ID)
	s.Require().NoError(err)
	s.Require().NoError(DeleteVehicle(s.ctx, s.staff, s.vehicle.ID))
	_, err = GetVehicle(s.ctx, s.vehicle.ID)
	s.assertCode(types.ErrNotFound, err)
}

func (s *VehiclesTestSuite) TestVehicleImage() {
	vehicle, err := UploadVehicleImage(s.ctx, s.staff, s.vehicle.ID, s.fileHeader("front.JPG", "image/jpeg", []byte("front")))
	s.Require().NoError(err)
	s.Require().Len(vehicle.Images, 1)
	first := vehicle.Images[0]
	s.Equal(filepath.Ext(first.Path), ".jpg")

	vehicle, err = UploadVehicleImage(s.ctx, s.staff, s.vehicle.ID, s.fileHeader("side.png", "image/png", []byte("side")))
	s.Require().NoError(err)
	s.Require().Len(vehicle.Images, 1)
	s.Equal("side.png", vehicle.Images[0].FileName)

	root := lib.GetStorage().(*lib.LocalStorage).Root()
	_, err = os.Stat(filepath.Join(root, first.Path))
	s.True(os.IsNotExist(err))

	s.Require().NoError(RemoveVehicleImage(s.ctx, s.staff, s.vehicle.ID))
	var count int64
	s.db.Model(&models.Attachment{}).Where("owner_type = ?", vehicleOwnerType).Count(&count)
	s.Zero(count)
}

func (s *VehiclesTestSuite) TestPaymentAccounts() {
	inactive := false
	account, err := CreatePaymentAccount(s.ctx, s.staff, types.CreatePaymentAccountRequestBody{
		AccountNumber: "1234-5678",
		AccountName:   "Rentals Inc",
		Provider:      "BPI",
		IsActive:      &inactive,
	})
	s.Require().NoError(err)
	s.False(account.IsActive)

	active, err := ListPaymentAccounts(s.ctx, true)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(s.account.ID, active[0].ID)

	all, err := ListPaymentAccounts(s.ctx, false)
	s.Require().NoError(err)
	s.Len(all, 2)

	s.T().Setenv("TEMP_DIR", s.T().TempDir())
	withQR, err := GeneratePaymentAccountQRCode(s.ctx, s.staff, account.ID)
	s.Require().NoError(err)
	s.Require().NotNil(withQR.QRCode)
	s.Equal("image/jpeg", withQR.QRCode.MimeType)

	got, err := GetPaymentAccount(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.QRCode)
	s.Equal(withQR.QRCode.ID, got.QRCode.ID)

	s.Require().NoError(RemovePaymentAccountQRCode(s.ctx, s.staff, account.ID))
	got, err = GetPaymentAccount(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Nil(got.QRCode)

	s.Require().NoError(DeletePaymentAccount(s.ctx, s.staff, account.ID))
	s.assertCode(types.ErrNotFound, DeletePaymentAccount(s.ctx, s.staff, account.ID))
}

func (s *VehiclesTestSuite) TestManualStatusRespectsLifecycle() {
	body := types.CreateVehicleRequestBody{
		Brand:   s.vehicle.Brand,
		PlateNo: s.vehicle.PlateNo,
		Status:  string(types.VEHICLE_RESERVED),
	}
	_, err := UpdateVehicle(s.ctx, s.staff, s.vehicle.ID, body)
	s.assertCode(types.ErrValidation, err)

	order := s.newOrder(s.vehicle.ID)
	body.Status = string(types.VEHICLE_AVAILABLE)
	_, err = UpdateVehicle(s.ctx, s.staff, s.vehicle.ID, body)
	s.assertCode(types.ErrConflict, err)
	s.Equal(types.VEHICLE_RESERVED, s.reloadVehicle(s.vehicle.ID).Status)

	body.Status = ""
	body.Color = "Silver"
	updated, err := UpdateVehicle(s.ctx, s.staff, s.vehicle.ID, body)
	s.Require().NoError(err)
	s.Equal(types.VEHICLE_RESERVED, updated.Status)

	_, err = CancelOrder(s.ctx, s.customer, order.ID)
	s.Require().NoError(err)
	body.Status = string(types.VEHICLE_UNDER_MAINTENANCE)
	updated, err = UpdateVehicle(s.ctx, s.staff, s.vehicle.ID, body)
	s.Require().NoError(err)
	s.Equal(types.VEHICLE_UNDER_MAINTENANCE, updated.Status)
}
