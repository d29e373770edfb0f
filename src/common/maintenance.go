package common

import (
	"context"
	"log"
	"time"
	"vrs/src/db"
	"vrs/src/models"
	"vrs/src/models/scopes"
	"vrs/src/types"
	"vrs/src/utils"

	"gorm.io/gorm"
)

const MAINTENANCE_REF_PREFIX = "MR"

func parseOptionalDate(s string, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return nil, types.NewValidationError("invalid %s: %s", field, s)
	}
	return &t, nil
}

// sendToMaintenance flags the vehicle as under maintenance unless it is rented out.
func sendToMaintenance(tx *gorm.DB, vehicleID uint) error {
	var vehicle models.Vehicle
	if err := tx.First(&vehicle, vehicleID).Error; err != nil {
		return lookupErr(err, "vehicle", vehicleID)
	}
	if vehicle.Status == types.VEHICLE_RESERVED || vehicle.Status == types.VEHICLE_IN_USE {
		return types.NewConflictError("vehicle %d is %s", vehicle.ID, vehicle.Status)
	}
	return setVehicleStatus(tx, vehicle.ID, types.VEHICLE_MAINTENANCE)
}

// releaseFromMaintenance makes the vehicle available again if it is still flagged.
func releaseFromMaintenance(tx *gorm.DB, vehicleID uint) error {
	return tx.
		Model(&models.Vehicle{}).
		Where("id = ? AND status IN ?", vehicleID, []types.VehicleStatus{types.VEHICLE_MAINTENANCE, types.VEHICLE_UNDER_MAINTENANCE}).
		Update("status", types.VEHICLE_AVAILABLE).
		Error
}

func CreateMaintenance(ctx context.Context, actor types.Actor, body types.CreateMaintenanceRequestBody) (*models.MaintenanceRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	requested, err := parseOptionalDate(body.RequestedDate, "requested date")
	if err != nil {
		return nil, err
	}
	scheduled, err := parseOptionalDate(body.MaintenanceDate, "maintenance date")
	if err != nil {
		return nil, err
	}
	if requested == nil {
		now := time.Now().UTC().Truncate(24 * time.Hour)
		requested = &now
	}
	request := models.MaintenanceRequest{
		VehicleID:       body.VehicleID,
		Description:     utils.StringPtr(body.Description),
		RequestedDate:   requested,
		MaintenanceDate: scheduled,
		Cost:            body.Cost,
		RequestedBy:     utils.StringPtr(actor.Name),
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := sendToMaintenance(tx, body.VehicleID); err != nil {
			return err
		}
		if err := tx.Create(&request).Error; err != nil {
			return writeErr(err, "maintenance request")
		}
		ref := utils.GenerateSequence(MAINTENANCE_REF_PREFIX, 8, request.ID)
		if err := tx.Model(&request).Update("ref_number", ref).Error; err != nil {
			return writeErr(err, "maintenance reference")
		}
		request.RefNumber = &ref
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Maintenance %s opened for vehicle %d by %s\n", refOf(request.RefNumber), request.VehicleID, actor.Name)
	return &request, nil
}

func UpdateMaintenance(ctx context.Context, actor types.Actor, id uint, body types.UpdateMaintenanceRequestBody) (*models.MaintenanceRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	requested, err := parseOptionalDate(body.RequestedDate, "requested date")
	if err != nil {
		return nil, err
	}
	scheduled, err := parseOptionalDate(body.MaintenanceDate, "maintenance date")
	if err != nil {
		return nil, err
	}
	var request models.MaintenanceRequest
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, id).Error; err != nil {
			return lookupErr(err, "maintenance request", id)
		}
		if body.Description != nil {
			request.Description = body.Description
		}
		if requested != nil {
			request.RequestedDate = requested
		}
		if scheduled != nil {
			request.MaintenanceDate = scheduled
		}
		if body.Cost != nil {
			request.Cost = body.Cost
		}
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// SetMaintenanceCompleted marks the request done (vehicle available again) or back to
// on-going (vehicle under maintenance).
func SetMaintenanceCompleted(ctx context.Context, actor types.Actor, id uint, completed bool) (*models.MaintenanceRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	var request models.MaintenanceRequest
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, id).Error; err != nil {
			return lookupErr(err, "maintenance request", id)
		}
		if request.IsCompleted == completed {
			return nil
		}
		if completed {
			if err := releaseFromMaintenance(tx, request.VehicleID); err != nil {
				return err
			}
		} else if err := sendToMaintenance(tx, request.VehicleID); err != nil {
			return err
		}
		request.IsCompleted = completed
		return tx.Model(&request).Update("is_completed", completed).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func DeleteMaintenance(ctx context.Context, actor types.Actor, id uint) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.MaintenanceRequest
		if err := tx.First(&request, id).Error; err != nil {
			return lookupErr(err, "maintenance request", id)
		}
		if !request.IsCompleted {
			if err := releaseFromMaintenance(tx, request.VehicleID); err != nil {
				return err
			}
		}
		return tx.Delete(&request).Error
	})
}

func ListMaintenance(ctx context.Context, filters types.MaintenanceQueryFilters, page types.PaginationQuery) (*Page[models.MaintenanceRequest], error) {
	page = normalizePage(page)
	q := db.WithContext(ctx).Model(&models.MaintenanceRequest{})
	if filters.VehicleID != 0 {
		q = q.Where("vehicle_id = ?", filters.VehicleID)
	}
	if filters.IsCompleted != nil {
		q = q.Where("is_completed = ?", *filters.IsCompleted)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var requests []models.MaintenanceRequest
	if err := q.
		Preload("Vehicle").
		Scopes(scopes.Paginate(page.Page, page.PerPage)).
		Order("id DESC").
		Find(&requests).
		Error; err != nil {
		return nil, err
	}
	return &Page[models.MaintenanceRequest]{Data: requests, Total: total, Page: page.Page, PerPage: page.PerPage}, nil
}

func GetMaintenance(ctx context.Context, id uint) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	if err := db.WithContext(ctx).Preload("Vehicle").First(&request, id).Error; err != nil {
		return nil, lookupErr(err, "maintenance request", id)
	}
	return &request, nil
}
