package common

import (
	"context"
	"fmt"
	"log"
	"time"
	"vrs/src/config"
	"vrs/src/db"
	"vrs/src/lib"
	"vrs/src/models"
	"vrs/src/models/scopes"
	"vrs/src/types"
	"vrs/src/utils"

	"gorm.io/gorm"
)

const RENTAL_REF_PREFIX = "RENT"

func parseRentalPeriod(rentalDate string, returnDate string) (time.Time, time.Time, error) {
	from, err := utils.ParseDate(rentalDate)
	if err != nil {
		return from, from, types.NewValidationError("invalid rental date: %s", rentalDate)
	}
	to, err := utils.ParseDate(returnDate)
	if err != nil {
		return from, to, types.NewValidationError("invalid return date: %s", returnDate)
	}
	if !to.After(from) {
		return from, to, types.NewValidationError("return date must be after rental date")
	}
	return from, to, nil
}

// ownedOrder loads an order, hiding other users' orders from customers.
func ownedOrder(tx *gorm.DB, actor types.Actor, id uint) (*models.RentalOrder, error) {
	q := tx.Model(&models.RentalOrder{}).Where("id = ?", id)
	if !actor.IsStaff() {
		q = q.Where("user_id = ?", actor.ID)
	}
	var order models.RentalOrder
	if err := q.First(&order).Error; err != nil {
		return nil, lookupErr(err, "rental order", id)
	}
	return &order, nil
}

// CreateOrder reserves an available vehicle and opens a pending order for it.
func CreateOrder(ctx context.Context, actor types.Actor, body types.CreateRentalOrderRequestBody) (*models.RentalOrder, error) {
	from, to, err := parseRentalPeriod(body.RentalDate, body.ReturnDate)
	if err != nil {
		return nil, err
	}
	customerID := actor.ID
	if actor.IsStaff() && body.UserID != 0 {
		customerID = body.UserID
	}
	var order models.RentalOrder
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if customerID != actor.ID {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", customerID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return types.NewNotFoundError("user %d not found", customerID)
			}
		}
		var vehicle models.Vehicle
		if err := tx.First(&vehicle, body.VehicleID).Error; err != nil {
			return lookupErr(err, "vehicle", body.VehicleID)
		}
		if !vehicle.IsBookable() {
			return types.NewValidationError("vehicle %d is not available", vehicle.ID)
		}
		if err := reserveVehicle(tx, vehicle.ID); err != nil {
			return err
		}
		order = models.RentalOrder{
			UserID:      customerID,
			VehicleID:   vehicle.ID,
			RentalDate:  from,
			ReturnDate:  to,
			TotalAmount: vehicle.RentalRate * float64(models.RentalDays(from, to)),
			Status:      types.RENTAL_PENDING,
			Notes:       utils.StringPtr(body.Notes),
		}
		if err := tx.Create(&order).Error; err != nil {
			return writeErr(err, "rental order")
		}
		ref := utils.GenerateSequence(RENTAL_REF_PREFIX, 6, order.ID)
		if err := tx.Model(&order).Update("ref_number", ref).Error; err != nil {
			return writeErr(err, "rental order reference")
		}
		order.RefNumber = &ref
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Rental order %s created for user %d by %s\n", refOf(order.RefNumber), order.UserID, actor.Name)
	orderEvent(EVENT_ORDER_CREATED, &order)
	scheduleOrderExpiry(ctx, &order)
	notifyUser(ctx, order.UserID, fmt.Sprintf("Rental order %s received", refOf(order.RefNumber)),
		fmt.Sprintf("Your rental from %s to %s is reserved. Total due: %.2f.",
			from.Format(config.DATE_PARSE_FORMAT), to.Format(config.DATE_PARSE_FORMAT), order.TotalAmount))
	return &order, nil
}

func cancelOrderTx(tx *gorm.DB, order *models.RentalOrder) error {
	if order.Status != types.RENTAL_PENDING && order.Status != types.RENTAL_IN_PAYMENT {
		return types.NewConflictError("rental order %d is %s and cannot be cancelled", order.ID, order.Status)
	}
	if err := order.SetStatus(tx, string(types.RENTAL_CANCELLED)); err != nil {
		return err
	}
	return setVehicleStatus(tx, order.VehicleID, types.VEHICLE_AVAILABLE)
}

// CancelOrder cancels a pending or in-payment order and frees its vehicle.
func CancelOrder(ctx context.Context, actor types.Actor, id uint) (*models.RentalOrder, error) {
	var order *models.RentalOrder
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if order, err = ownedOrder(tx, actor, id); err != nil {
			return err
		}
		return cancelOrderTx(tx, order)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Rental order %s cancelled by %s\n", refOf(order.RefNumber), actor.Name)
	orderEvent(EVENT_ORDER_CANCELLED, order)
	invalidateKioskOrders(ctx)
	return order, nil
}

// ExpireOrder cancels an order whose hold ran out. Orders that already left pending
// are left alone and reported as not expired.
func ExpireOrder(ctx context.Context, id uint) (bool, error) {
	var order models.RentalOrder
	expired := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return lookupErr(err, "rental order", id)
		}
		if order.Status != types.RENTAL_PENDING {
			return nil
		}
		if err := cancelOrderTx(tx, &order); err != nil {
			if types.Code(err) == types.ErrConflict {
				return nil
			}
			return err
		}
		expired = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if expired {
		log.Printf("Rental order %s expired\n", refOf(order.RefNumber))
		orderEvent(EVENT_ORDER_EXPIRED, &order)
		notifyUser(ctx, order.UserID, fmt.Sprintf("Rental order %s expired", refOf(order.RefNumber)),
			"Your reservation was released because no payment was received in time.")
	}
	return expired, nil
}

// ExpireStaleOrders expires every pending order created before cutoff.
func ExpireStaleOrders(ctx context.Context, cutoff time.Time) (int, error) {
	var ids []uint
	if err := db.WithContext(ctx).
		Model(&models.RentalOrder{}).
		Scopes(scopes.WithPendingStatus).
		Where("created_at < ?", cutoff).
		Pluck("id", &ids).
		Error; err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		expired, err := ExpireOrder(ctx, id)
		if err != nil {
			log.Printf("Error expiring rental order %d: %s\n", id, err.Error())
			continue
		}
		if expired {
			n++
		}
	}
	return n, nil
}

// SweepExpiredOrders is the periodic job behind ORDER_HOLD_TTL.
func SweepExpiredOrders() {
	ttl := config.GetOrderHoldTTL()
	if ttl <= 0 {
		return
	}
	n, err := ExpireStaleOrders(context.Background(), time.Now().Add(-ttl))
	if err != nil {
		log.Printf("Error sweeping expired rental orders: %s\n", err.Error())
		return
	}
	if n > 0 {
		log.Printf("Expired %d rental orders\n", n)
	}
}

// UpdateOrder edits dates, notes, vehicle and status. Dates and vehicle can only change
// while the order is unpaid. Swapping vehicles frees the old one.
func UpdateOrder(ctx context.Context, actor types.Actor, id uint, body types.UpdateRentalOrderRequestBody) (*models.RentalOrder, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	var order models.RentalOrder
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return lookupErr(err, "rental order", id)
		}
		changesTerms := body.RentalDate != "" || body.ReturnDate != "" ||
			(body.VehicleID != 0 && body.VehicleID != order.VehicleID)
		if changesTerms {
			if order.Status != types.RENTAL_PENDING && order.Status != types.RENTAL_IN_PAYMENT {
				return types.NewConflictError("rental order %d is %s and can no longer be changed", order.ID, order.Status)
			}
			rentalDate := order.RentalDate.Format(config.DATE_PARSE_FORMAT)
			returnDate := order.ReturnDate.Format(config.DATE_PARSE_FORMAT)
			if body.RentalDate != "" {
				rentalDate = body.RentalDate
			}
			if body.ReturnDate != "" {
				returnDate = body.ReturnDate
			}
			from, to, err := parseRentalPeriod(rentalDate, returnDate)
			if err != nil {
				return err
			}
			if body.VehicleID != 0 && body.VehicleID != order.VehicleID {
				var next models.Vehicle
				if err := tx.First(&next, body.VehicleID).Error; err != nil {
					return lookupErr(err, "vehicle", body.VehicleID)
				}
				if err := reserveVehicle(tx, next.ID); err != nil {
					return err
				}
				if err := setVehicleStatus(tx, order.VehicleID, types.VEHICLE_AVAILABLE); err != nil {
					return err
				}
				order.VehicleID = next.ID
			}
			var vehicle models.Vehicle
			if err := tx.First(&vehicle, order.VehicleID).Error; err != nil {
				return lookupErr(err, "vehicle", order.VehicleID)
			}
			order.RentalDate = from
			order.ReturnDate = to
			order.TotalAmount = vehicle.RentalRate * float64(models.RentalDays(from, to))
		}
		if body.Notes != nil {
			order.Notes = body.Notes
		}
		if err := tx.
			Model(&models.RentalOrder{}).
			Where("id = ?", order.ID).
			Updates(map[string]any{
				"vehicle_id":   order.VehicleID,
				"rental_date":  order.RentalDate,
				"return_date":  order.ReturnDate,
				"total_amount": order.TotalAmount,
				"notes":        order.Notes,
			}).
			Error; err != nil {
			return err
		}
		if body.Status != "" {
			return changeOrderStatusTx(tx, &order, body.Status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	orderEvent(EVENT_ORDER_UPDATED, &order)
	invalidateKioskOrders(ctx)
	return GetOrder(ctx, actor, order.ID)
}

// changeOrderStatusTx applies a manual status change with its cascades. Sessions are
// only opened from the kiosk, so "in session" cannot be set here.
func changeOrderStatusTx(tx *gorm.DB, order *models.RentalOrder, status string) error {
	if !models.IsRentalOrderStatus(status) {
		return types.NewValidationError("invalid rental order status %q", status)
	}
	to := types.RentalOrderStatus(status)
	if to == order.Status {
		return nil
	}
	switch to {
	case types.RENTAL_IN_SESSION:
		return types.NewValidationError("sessions are started from the kiosk")
	case types.RENTAL_CANCELLED:
		return cancelOrderTx(tx, order)
	case types.RENTAL_COMPLETED:
		if order.Status != types.RENTAL_IN_SESSION {
			return types.NewConflictError("rental order %d cannot move from %s to %s", order.ID, order.Status, to)
		}
		var session models.RentalVehicleSession
		if err := tx.
			Where("rental_order_id = ? AND status = ?", order.ID, types.SESSION_ACTIVE).
			First(&session).
			Error; err != nil {
			return lookupErr(err, "active session for rental order", order.ID)
		}
		if _, err := closeSessionTx(tx, &session); err != nil {
			return err
		}
		order.Status = types.RENTAL_COMPLETED
		return nil
	}
	return order.SetStatus(tx, status)
}

func ChangeOrderStatus(ctx context.Context, actor types.Actor, id uint, status string) (*models.RentalOrder, error) {
	return UpdateOrder(ctx, actor, id, types.UpdateRentalOrderRequestBody{Status: status})
}

// DeleteOrder removes an order that is not in session and frees the vehicle it holds.
func DeleteOrder(ctx context.Context, actor types.Actor, id uint) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.RentalOrder
		if err := tx.First(&order, id).Error; err != nil {
			return lookupErr(err, "rental order", id)
		}
		switch order.Status {
		case types.RENTAL_IN_SESSION:
			return types.NewConflictError("rental order %d is in session", order.ID)
		case types.RENTAL_PENDING, types.RENTAL_IN_PAYMENT, types.RENTAL_PAID:
			if err := setVehicleStatus(tx, order.VehicleID, types.VEHICLE_AVAILABLE); err != nil {
				return err
			}
		}
		return tx.Delete(&order).Error
	})
}

func ListOrders(ctx context.Context, actor types.Actor, filters types.RentalOrderQueryFilters, page types.PaginationQuery) (*Page[models.RentalOrder], error) {
	page = normalizePage(page)
	q := db.WithContext(ctx).
		Model(&models.RentalOrder{}).
		Scopes(scopes.WithStatus(filters.Status))
	if !actor.IsStaff() {
		q = q.Where("user_id = ?", actor.ID)
	} else if filters.UserID != 0 {
		q = q.Where("user_id = ?", filters.UserID)
	}
	if filters.Search != "" {
		q = q.Where("ref_number LIKE ?", "%"+filters.Search+"%")
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var orders []models.RentalOrder
	if err := q.
		Preload("Vehicle").
		Preload("User").
		Scopes(scopes.Paginate(page.Page, page.PerPage)).
		Order("id DESC").
		Find(&orders).
		Error; err != nil {
		return nil, err
	}
	return &Page[models.RentalOrder]{Data: orders, Total: total, Page: page.Page, PerPage: page.PerPage}, nil
}

func GetOrder(ctx context.Context, actor types.Actor, id uint) (*models.RentalOrder, error) {
	q := db.WithContext(ctx).
		Preload("Vehicle.Images").
		Preload("User").
		Preload("Payments.PaymentAccount").
		Preload("Sessions").
		Where("id = ?", id)
	if !actor.IsStaff() {
		q = q.Where("user_id = ?", actor.ID)
	}
	var order models.RentalOrder
	if err := q.First(&order).Error; err != nil {
		return nil, lookupErr(err, "rental order", id)
	}
	return &order, nil
}

// OrderQRCode renders the order reference as a QR image and returns the temp file path.
func OrderQRCode(ctx context.Context, actor types.Actor, id uint) (string, error) {
	order, err := ownedOrder(db.WithContext(ctx), actor, id)
	if err != nil {
		return "", err
	}
	if order.RefNumber == nil {
		return "", types.NewNotFoundError("rental order %d has no reference number", id)
	}
	return lib.GenerateQRCode(*order.RefNumber)
}
