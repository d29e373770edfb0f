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

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const vehicleOwnerType = "vehicle"

// setVehicleStatus is an unconditional write used by cascades that own the vehicle.
func setVehicleStatus(tx *gorm.DB, vehicleID uint, status types.VehicleStatus) error {
	res := tx.
		Model(&models.Vehicle{}).
		Where("id = ?", vehicleID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NewNotFoundError("vehicle %d not found", vehicleID)
	}
	lib.RecordTransition("vehicle", string(status))
	return nil
}

// reserveVehicle moves the vehicle from Available to Reserved, failing when another
// writer got there first.
func reserveVehicle(tx *gorm.DB, vehicleID uint) error {
	res := tx.
		Model(&models.Vehicle{}).
		Where("id = ? AND status = ?", vehicleID, types.VEHICLE_AVAILABLE).
		Update("status", types.VEHICLE_RESERVED)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NewValidationError("vehicle %d is not available", vehicleID)
	}
	lib.RecordTransition("vehicle", string(types.VEHICLE_RESERVED))
	return nil
}

func vehicleSlug(brand string, model *string, plateNo string) string {
	name := brand
	if model != nil {
		name = fmt.Sprintf("%s %s", name, *model)
	}
	return slug.Make(fmt.Sprintf("%s %s", name, plateNo))
}

func ListVehicles(ctx context.Context, filters types.VehicleQueryFilters, page types.PaginationQuery) (*Page[models.Vehicle], error) {
	page = normalizePage(page)
	q := db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Scopes(scopes.WithStatus(filters.Status))
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		q = q.Where("brand LIKE ? OR plate_no LIKE ? OR model LIKE ?", like, like, like)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var vehicles []models.Vehicle
	if err := q.
		Preload("Images").
		Scopes(scopes.Paginate(page.Page, page.PerPage)).
		Order("id DESC").
		Find(&vehicles).
		Error; err != nil {
		return nil, err
	}
	return &Page[models.Vehicle]{Data: vehicles, Total: total, Page: page.Page, PerPage: page.PerPage}, nil
}

func GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := db.WithContext(ctx).
		Preload("Images").
		First(&vehicle, id).
		Error; err != nil {
		return nil, lookupErr(err, "vehicle", id)
	}
	return &vehicle, nil
}

func CreateVehicle(ctx context.Context, actor types.Actor, body types.CreateVehicleRequestBody) (*models.Vehicle, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	vehicle := models.Vehicle{Status: types.VEHICLE_AVAILABLE}
	applyVehicleBody(&vehicle, body)
	if err := db.WithContext(ctx).Create(&vehicle).Error; err != nil {
		return nil, writeErr(err, "vehicle")
	}
	log.Printf("Vehicle %d (%s) created by %s\n", vehicle.ID, vehicle.PlateNo, actor.Name)
	return &vehicle, nil
}

func UpdateVehicle(ctx context.Context, actor types.Actor, id uint, body types.CreateVehicleRequestBody) (*models.Vehicle, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	var vehicle models.Vehicle
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&vehicle, id).Error; err != nil {
			return lookupErr(err, "vehicle", id)
		}
		if status := types.VehicleStatus(body.Status); body.Status != "" && status != vehicle.Status {
			if status == types.VEHICLE_RESERVED || status == types.VEHICLE_IN_USE {
				return types.NewValidationError("vehicle status %s is set by rental orders and sessions", status)
			}
			if err := vehicleHeld(tx, id); err != nil {
				return err
			}
		}
		applyVehicleBody(&vehicle, body)
		return tx.Save(&vehicle).Error
	})
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func applyVehicleBody(v *models.Vehicle, body types.CreateVehicleRequestBody) {
	v.Brand = body.Brand
	v.PlateNo = body.PlateNo
	v.CountryOfOrigin = utils.StringPtr(body.CountryOfOrigin)
	v.Manufacturer = utils.StringPtr(body.Manufacturer)
	v.Model = utils.StringPtr(body.Model)
	v.Color = utils.StringPtr(body.Color)
	v.Type = utils.StringPtr(body.Type)
	v.Year = utils.StringPtr(body.Year)
	v.Mileage = utils.StringPtr(body.Mileage)
	v.Condition = utils.StringPtr(body.Condition)
	if body.RentalRate != nil {
		v.RentalRate = *body.RentalRate
	}
	if body.Status != "" {
		v.Status = types.VehicleStatus(body.Status)
	}
	v.Slug = vehicleSlug(v.Brand, v.Model, v.PlateNo)
}

// vehicleHeld fails with a ConflictError while an open order or an active session
// points at the vehicle.
func vehicleHeld(tx *gorm.DB, id uint) error {
	var open int64
	if err := tx.
		Model(&models.RentalOrder{}).
		Where("vehicle_id = ?", id).
		Scopes(scopes.WithStatuses(types.RENTAL_PENDING, types.RENTAL_IN_PAYMENT, types.RENTAL_PAID, types.RENTAL_IN_SESSION)).
		Count(&open).
		Error; err != nil {
		return err
	}
	if open > 0 {
		return types.NewConflictError("vehicle %d has %d open rental orders", id, open)
	}
	var active int64
	if err := tx.
		Model(&models.RentalVehicleSession{}).
		Where("vehicle_id = ? AND status = ?", id, types.SESSION_ACTIVE).
		Count(&active).
		Error; err != nil {
		return err
	}
	if active > 0 {
		return types.NewConflictError("vehicle %d is in an active session", id)
	}
	return nil
}

// DeleteVehicle refuses to remove a vehicle that an open order or an active session
// still points at.
func DeleteVehicle(ctx context.Context, actor types.Actor, id uint) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle models.Vehicle
		if err := tx.First(&vehicle, id).Error; err != nil {
			return lookupErr(err, "vehicle", id)
		}
		if err := vehicleHeld(tx, id); err != nil {
			return err
		}
		return tx.Delete(&vehicle).Error
	})
	if err != nil {
		return err
	}
	return removeAttachments(ctx, vehicleOwnerType, id, types.ATTACHMENT_VEHICLE_IMAGE)
}

// UploadVehicleImage replaces the vehicle image.
func UploadVehicleImage(ctx context.Context, actor types.Actor, id uint, fh *multipart.FileHeader) (*models.Vehicle, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	vehicle, err := GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := replaceAttachment(ctx, vehicleOwnerType, id, types.ATTACHMENT_VEHICLE_IMAGE, uploadFromHeader(vehicle.Slug, fh)); err != nil {
		return nil, err
	}
	return GetVehicle(ctx, id)
}

func RemoveVehicleImage(ctx context.Context, actor types.Actor, id uint) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	if _, err := GetVehicle(ctx, id); err != nil {
		return err
	}
	return removeAttachments(ctx, vehicleOwnerType, id, types.ATTACHMENT_VEHICLE_IMAGE)
}
