// Package currency converts transaction amounts into VND, the reference
// currency every aggregate is computed in.
package currency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/cache"
)

const VND = "VND"

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidCode         = errors.New("currency code must be 3 letters")
)

// RateSource returns how many VND one unit of code is worth.
type RateSource interface {
	Rate(ctx context.Context, code string) (decimal.Decimal, error)
}

// fallbackRates is used when the rate source is unreachable.
var fallbackRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(25_400),
	"EUR": decimal.NewFromInt(27_500),
	"GBP": decimal.NewFromInt(32_200),
	"JPY": decimal.NewFromInt(168),
	"KRW": decimal.NewFromInt(18),
	"CNY": decimal.NewFromInt(3_500),
	"SGD": decimal.NewFromInt(18_900),
	"AUD": decimal.NewFromInt(16_600),
	"THB": decimal.NewFromInt(700),
}

type Converter struct {
	source   RateSource
	rates    *cache.TTL[decimal.Decimal]
	fallback map[string]decimal.Decimal
}

func NewConverter(source RateSource, rates *cache.TTL[decimal.Decimal]) *Converter {
	return &Converter{
		source:   source,
		rates:    rates,
		fallback: fallbackRates,
	}
}

// Normalize upper-cases and validates an ISO-4217 style code.
func Normalize(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrInvalidCode
	}

	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCode
		}
	}

	return code, nil
}

// Rate returns VND per unit of code, consulting the cache, then the source,
// then the static fallback table.
func (c *Converter) Rate(ctx context.Context, code string) (decimal.Decimal, error) {
	code, err := Normalize(code)
	if err != nil {
		return decimal.Zero, err
	}

	if code == VND {
		return decimal.NewFromInt(1), nil
	}

	if rate, ok := c.rates.Get(code); ok {
		return rate, nil
	}

	rate, err := c.source.Rate(ctx, code)
	if err == nil && rate.IsPositive() {
		c.rates.Set(code, rate)
		return rate, nil
	}

	if rate, ok := c.fallback[code]; ok {
		slog.WarnContext(ctx, "using fallback exchange rate", "currency", code, "error", err)
		return rate, nil
	}

	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %s: %w", ErrUnsupportedCurrency, code, err)
	}

	return decimal.Zero, fmt.Errorf("%w %s", ErrUnsupportedCurrency, code)
}

// ToVND converts amount in code into whole dong, rounding half away from zero.
func (c *Converter) ToVND(ctx context.Context, amount decimal.Decimal, code string) (int64, error) {
	rate, err := c.Rate(ctx, code)
	if err != nil {
		return 0, err
	}

	return amount.Mul(rate).Round(0).IntPart(), nil
}
