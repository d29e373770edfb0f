package common

import (
	"sync"
	"vrs/src/models"
	"vrs/src/types"

	"gorm.io/gorm"
)

// Payable is anything a payment can settle.
type Payable interface {
	PayableType() string
	PayableID() uint
	PayerID() uint
	SetStatus(tx *gorm.DB, status string) error
}

type PayableResolver func(tx *gorm.DB, id uint) (Payable, error)

var (
	payables   = map[string]PayableResolver{}
	payablesMu sync.RWMutex
)

func init() {
	RegisterPayable(types.PAYABLE_RENTAL_ORDER, func(tx *gorm.DB, id uint) (Payable, error) {
		var order models.RentalOrder
		if err := tx.First(&order, id).Error; err != nil {
			return nil, lookupErr(err, "rental order", id)
		}
		return &order, nil
	})
}

func RegisterPayable(kind string, resolve PayableResolver) {
	payablesMu.Lock()
	defer payablesMu.Unlock()
	payables[kind] = resolve
}

func ResolvePayable(tx *gorm.DB, kind string, id uint) (Payable, error) {
	payablesMu.RLock()
	resolve, ok := payables[kind]
	payablesMu.RUnlock()
	if !ok {
		return nil, types.NewValidationError("unknown payable type %q", kind)
	}
	return resolve(tx, id)
}

// SetPayableStatus writes status onto the payable and returns it as stored afterwards.
func SetPayableStatus(tx *gorm.DB, kind string, id uint, status string) (Payable, error) {
	p, err := ResolvePayable(tx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := p.SetStatus(tx, status); err != nil {
		return nil, err
	}
	return ResolvePayable(tx, kind, id)
}
