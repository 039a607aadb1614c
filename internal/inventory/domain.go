package inventory

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Movement is one signed stock change for a product. Positive quantities
// add stock, negative quantities consume it.
type Movement struct {
	CompanyID int64
	ProductID int64
	Qty       decimal.Decimal
}

// ErrInsufficientStock is returned when a movement would drive stock negative.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// ErrInvalidQuantity indicates a zero quantity movement.
var ErrInvalidQuantity = errors.New("inventory: quantity must be non zero")
