package queries

import (
	"errors"

	"tracking/internal/pkg/guard"
)

var ErrGetShipmentsPerDayQueryIsNotConstructed = errors.New(
	"GetShipmentsPerDayQuery must be created via NewGetShipmentsPerDayQuery constructor",
)

// GetShipmentsPerDayQuery counts created shipments per UTC calendar day.
type GetShipmentsPerDayQuery struct {
	guard guard.ConstructorGuard
}

func NewGetShipmentsPerDayQuery() GetShipmentsPerDayQuery {
	return GetShipmentsPerDayQuery{guard: guard.NewConstructorGuard()}
}

func (q GetShipmentsPerDayQuery) Validate() error {
	return q.guard.Validate(ErrGetShipmentsPerDayQueryIsNotConstructed)
}

type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}
