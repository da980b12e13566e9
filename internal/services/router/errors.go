package router

import "errors"

var (
	ErrNoPoolFound           = errors.New("pool not found in state cache")
	ErrInvalidPool           = errors.New("pool state invalid or incomplete")
	ErrZeroAmount            = errors.New("zero input amount")
	ErrZeroReserve           = errors.New("zero reserve")
	ErrZeroLiquidity         = errors.New("zero liquidity")
	ErrZeroSqrtPrice         = errors.New("zero sqrt price")
	ErrSqrtPriceOutOfRange   = errors.New("sqrt price out of range")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for requested amount")
	ErrAmountOverflow        = errors.New("amount overflows 256-bit math")
	ErrNoRoute               = errors.New("no route for token")
	ErrPivotNotOnRoute       = errors.New("pivot token not on route")
	ErrUnsafeToken           = errors.New("route contains unsafe token")
	ErrDirectionMismatch     = errors.New("hop tokens do not match pool pair")
	ErrDeadlineExceeded      = errors.New("evaluation deadline exceeded")
)
