package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/printflow/printflow/internal/domain/model"
)

// Platform fees in whole Tomans.
var (
	validationFee      = decimal.NewFromInt(50000)
	semiPrivateFee     = decimal.NewFromInt(600000)
	privateFee         = decimal.NewFromInt(5000000)
	semiPrivateRetries = 3
)

// Quote is the price breakdown computed at order creation.
// TotalPrice always equals the sum of the four components.
type Quote struct {
	DesignPrice     decimal.Decimal
	ValidationPrice decimal.Decimal
	FixPrice        decimal.Decimal
	PrintPrice      decimal.Decimal
	TotalPrice      decimal.Decimal
	MaxRevisions    *int
}

// Calculate prices an order. Pure function: same inputs produce the same quote.
// Fix price starts at zero and only grows later from a failed validation.
func Calculate(basePrice decimal.Decimal, quantity int, plan model.DesignPlan, validationRequested bool) Quote {
	q := Quote{
		DesignPrice:     designFee(plan),
		ValidationPrice: decimal.Zero,
		FixPrice:        decimal.Zero,
		PrintPrice:      basePrice.Mul(decimal.NewFromInt(int64(quantity))),
		MaxRevisions:    maxRevisions(plan),
	}
	if validationRequested {
		q.ValidationPrice = validationFee
	}
	q.TotalPrice = q.DesignPrice.Add(q.ValidationPrice).Add(q.FixPrice).Add(q.PrintPrice)
	return q
}

func designFee(plan model.DesignPlan) decimal.Decimal {
	switch plan {
	case model.DesignPlanSemiPrivate:
		return semiPrivateFee
	case model.DesignPlanPrivate:
		return privateFee
	default:
		return decimal.Zero
	}
}

// maxRevisions returns the revision budget per plan; nil means unlimited.
func maxRevisions(plan model.DesignPlan) *int {
	switch plan {
	case model.DesignPlanSemiPrivate:
		n := semiPrivateRetries
		return &n
	case model.DesignPlanPublic:
		n := 0
		return &n
	default:
		return nil
	}
}
