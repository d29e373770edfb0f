package common

import (
	"errors"
	"vrs/src/types"

	"gorm.io/gorm"
)

// Page is a slice of rows plus the total matching count.
type Page[T any] struct {
	Data    []T   `json:"data"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

func lookupErr(err error, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NewNotFoundError("%s %v not found", what, id)
	}
	return err
}

func writeErr(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.NewConflictError("%s already exists", what)
	}
	return err
}

func requireStaff(actor types.Actor) error {
	if !actor.IsStaff() {
		return types.NewAuthError("staff access required")
	}
	return nil
}

func normalizePage(q types.PaginationQuery) types.PaginationQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 10
	}
	return q
}
