package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry orders are priced against.
type Product struct {
	ID        uuid.UUID
	Name      string
	BasePrice decimal.Decimal
	Active    bool
	CreatedAt time.Time
}
