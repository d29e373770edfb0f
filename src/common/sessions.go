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

const kioskOrdersKey = "kiosk:orders"

func latestLocationKey(token string) string {
	return fmt.Sprintf("session:%s:latest", token)
}

func invalidateKioskOrders(ctx context.Context) {
	lib.CacheDelete(ctx, kioskOrdersKey)
}

// AuthenticatePin finds the staff member whose kiosk PIN matches pin.
func AuthenticatePin(ctx context.Context, pin string) (*models.User, error) {
	var staff []models.User
	if err := db.WithContext(ctx).
		Where("role IN ? AND pin_hash <> ''", []types.Role{types.ROLE_ADMIN, types.ROLE_STAFF}).
		Find(&staff).
		Error; err != nil {
		return nil, err
	}
	for i := range staff {
		if utils.CheckSecret(staff[i].PinHash, pin) {
			return &staff[i], nil
		}
	}
	return nil, types.NewAuthError("invalid PIN")
}

func sessionByToken(tx *gorm.DB, token string) (*models.RentalVehicleSession, error) {
	var session models.RentalVehicleSession
	if err := tx.Where("session_token = ?", token).First(&session).Error; err != nil {
		return nil, lookupErr(err, "session", token)
	}
	return &session, nil
}

// StartSession opens the kiosk session for a paid order. The order moves from paid to
// in session with a conditional write, so of two concurrent starts only one succeeds.
func StartSession(ctx context.Context, body types.StartSessionRequestBody) (*models.RentalVehicleSession, error) {
	employee, err := AuthenticatePin(ctx, body.Pin)
	if err != nil {
		return nil, err
	}
	var session models.RentalVehicleSession
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.RentalOrder
		if err := tx.Where("ref_number = ?", body.RefNumber).First(&order).Error; err != nil {
			return lookupErr(err, "rental order", body.RefNumber)
		}
		switch order.Status {
		case types.RENTAL_PAID:
		case types.RENTAL_IN_SESSION:
			return types.NewConflictError("rental order %s already has an active session", body.RefNumber)
		default:
			return types.NewValidationError("rental order %s is %s, only paid orders can start a session", body.RefNumber, order.Status)
		}
		if err := order.SetStatus(tx, string(types.RENTAL_IN_SESSION)); err != nil {
			return err
		}
		now := time.Now()
		session = models.RentalVehicleSession{
			RentalOrderID: order.ID,
			VehicleID:     order.VehicleID,
			SessionToken:  utils.NewSessionToken(),
			StartedAt:     &now,
			Status:        types.SESSION_ACTIVE,
			TotalCost:     order.TotalAmount,
			Notes:         utils.StringPtr(body.Notes),
			EmployeeName:  employee.Name,
			HandledBy:     employee.ID,
		}
		if err := tx.Create(&session).Error; err != nil {
			return writeErr(err, "active session for this rental order")
		}
		return setVehicleStatus(tx, order.VehicleID, types.VEHICLE_IN_USE)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Session %d started for rental order %d by %s\n", session.ID, session.RentalOrderID, employee.Name)
	lib.RecordTransition("session", string(types.SESSION_ACTIVE))
	lib.RecordTransition("rental_order", string(types.RENTAL_IN_SESSION))
	lib.PublishEvent(EVENT_SESSION_STARTED, types.JSONB{
		"id":              session.ID,
		"rental_order_id": session.RentalOrderID,
		"vehicle_id":      session.VehicleID,
		"employee_name":   session.EmployeeName,
	})
	invalidateKioskOrders(ctx)
	return &session, nil
}

// RecordLocation appends a GPS sample to an active session.
func RecordLocation(ctx context.Context, token string, body types.RecordLocationRequestBody) (*models.VehicleSessionLocation, error) {
	if body.Latitude == nil || body.Longitude == nil {
		return nil, types.NewValidationError("latitude and longitude are required")
	}
	if *body.Latitude < -90 || *body.Latitude > 90 || *body.Longitude < -180 || *body.Longitude > 180 {
		return nil, types.NewValidationError("coordinates out of range")
	}
	var location models.VehicleSessionLocation
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := sessionByToken(tx, token)
		if err != nil {
			return err
		}
		now := time.Now()
		// touching the row while it is still active orders this sample before any close
		res := tx.
			Model(&models.RentalVehicleSession{}).
			Where("id = ? AND status = ?", session.ID, types.SESSION_ACTIVE).
			Update("updated_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConflictError("session is %s", session.Status)
		}
		location = models.VehicleSessionLocation{
			RentalVehicleSessionID: session.ID,
			VehicleID:              session.VehicleID,
			Latitude:               *body.Latitude,
			Longitude:              *body.Longitude,
			RecordedAt:             now,
			LocationDescription:    body.Description,
			Speed:                  body.Speed,
			Direction:              body.Direction,
		}
		return tx.Create(&location).Error
	})
	if err != nil {
		return nil, err
	}
	lib.LocationSamples.Inc()
	if err := lib.CacheSetJSON(ctx, latestLocationKey(token), &location, config.GetLocationCacheTTL()); err != nil {
		log.Printf("Error caching location for session %d: %s\n", location.RentalVehicleSessionID, err.Error())
	}
	return &location, nil
}

// closeSessionTx completes an active session, its order and frees the vehicle. It
// reports false when the session was already completed.
func closeSessionTx(tx *gorm.DB, session *models.RentalVehicleSession) (bool, error) {
	switch session.Status {
	case types.SESSION_COMPLETED:
		return false, nil
	case types.SESSION_CANCELLED:
		return false, types.NewConflictError("session %d was cancelled", session.ID)
	}
	now := time.Now()
	res := tx.
		Model(&models.RentalVehicleSession{}).
		Where("id = ? AND status = ?", session.ID, types.SESSION_ACTIVE).
		Updates(map[string]any{"status": types.SESSION_COMPLETED, "ended_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		if err := tx.First(session, session.ID).Error; err != nil {
			return false, err
		}
		if session.Status == types.SESSION_COMPLETED {
			return false, nil
		}
		return false, types.NewConflictError("session %d is %s", session.ID, session.Status)
	}
	session.Status = types.SESSION_COMPLETED
	session.EndedAt = &now

	var order models.RentalOrder
	if err := tx.First(&order, session.RentalOrderID).Error; err != nil {
		return false, lookupErr(err, "rental order", session.RentalOrderID)
	}
	if err := order.SetStatus(tx, string(types.RENTAL_COMPLETED)); err != nil {
		return false, err
	}
	if err := setVehicleStatus(tx, session.VehicleID, types.VEHICLE_AVAILABLE); err != nil {
		return false, err
	}
	return true, nil
}

// CloseSession ends a session. Closing a completed session again returns it unchanged.
func CloseSession(ctx context.Context, token string) (*models.RentalVehicleSession, error) {
	var session *models.RentalVehicleSession
	closed := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = sessionByToken(tx, token); err != nil {
			return err
		}
		closed, err = closeSessionTx(tx, session)
		return err
	})
	if err != nil {
		return nil, err
	}
	if closed {
		log.Printf("Session %d closed\n", session.ID)
		lib.RecordTransition("session", string(types.SESSION_COMPLETED))
		lib.RecordTransition("rental_order", string(types.RENTAL_COMPLETED))
		lib.PublishEvent(EVENT_SESSION_COMPLETED, types.JSONB{
			"id":              session.ID,
			"rental_order_id": session.RentalOrderID,
			"vehicle_id":      session.VehicleID,
			"total_cost":      session.TotalCost,
		})
		lib.CacheDelete(ctx, latestLocationKey(token))
		invalidateKioskOrders(ctx)
	}
	return session, nil
}

// LatestLocation returns the newest sample of a session, from cache when possible.
func LatestLocation(ctx context.Context, token string) (*models.VehicleSessionLocation, error) {
	var cached models.VehicleSessionLocation
	if lib.CacheGetJSON(ctx, latestLocationKey(token), &cached) {
		return &cached, nil
	}
	conn := db.WithContext(ctx)
	session, err := sessionByToken(conn, token)
	if err != nil {
		return nil, err
	}
	var location models.VehicleSessionLocation
	if err := conn.
		Where("rental_vehicle_session_id = ?", session.ID).
		Order("recorded_at DESC").
		Order("id DESC").
		First(&location).
		Error; err != nil {
		return nil, lookupErr(err, "location for session", session.ID)
	}
	return &location, nil
}

type KioskSession struct {
	Session        *models.RentalVehicleSession   `json:"session"`
	LatestLocation *models.VehicleSessionLocation `json:"latest_location"`
}

// GetKioskSession is the kiosk view of an active session.
func GetKioskSession(ctx context.Context, token string) (*KioskSession, error) {
	var session models.RentalVehicleSession
	if err := db.WithContext(ctx).
		Preload("RentalOrder").
		Preload("Vehicle").
		Where("session_token = ?", token).
		First(&session).
		Error; err != nil {
		return nil, lookupErr(err, "session", token)
	}
	if !session.IsActive() {
		return nil, types.NewConflictError("session is %s", session.Status)
	}
	view := &KioskSession{Session: &session}
	location, err := LatestLocation(ctx, token)
	if err != nil && types.Code(err) != types.ErrNotFound {
		return nil, err
	}
	view.LatestLocation = location
	return view, nil
}

// KioskOrders lists orders a kiosk can act on: paid, or awaiting payment confirmation.
func KioskOrders(ctx context.Context) ([]models.RentalOrder, error) {
	var orders []models.RentalOrder
	if lib.CacheGetJSON(ctx, kioskOrdersKey, &orders) {
		return orders, nil
	}
	if err := db.WithContext(ctx).
		Preload("Vehicle").
		Preload("User").
		Scopes(scopes.WithStatuses(types.RENTAL_PAID, types.RENTAL_IN_PAYMENT)).
		Order("rental_date ASC").
		Find(&orders).
		Error; err != nil {
		return nil, err
	}
	if err := lib.CacheSetJSON(ctx, kioskOrdersKey, orders, 30*time.Second); err != nil {
		log.Printf("Error caching kiosk orders: %s\n", err.Error())
	}
	return orders, nil
}
