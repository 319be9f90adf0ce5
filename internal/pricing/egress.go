package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/vigilops/costwatch/internal/pkg/errors"
)

// GiB is the byte count of one billing gigabyte. Egress is priced in
// 2^30-byte units to match the provider's accounting.
const GiB = int64(1 << 30)

var bytesPerGB = decimal.NewFromInt(GiB)

// PriceEgress converts an outbound byte count into a price using a
// free-tier allowance and a flat per-GB rate above it. Traffic at or
// below the free tier is free; above it, only the excess is billed.
func PriceEgress(bytesSent int64, freeTierGB, ratePerGB decimal.Decimal) (decimal.Decimal, error) {
	if bytesSent < 0 {
		return decimal.Zero, errors.InvalidArgument("bytes_sent must be non-negative")
	}

	gb := decimal.NewFromInt(bytesSent).Div(bytesPerGB)
	if gb.LessThanOrEqual(freeTierGB) {
		return decimal.Zero, nil
	}

	return gb.Sub(freeTierGB).Mul(ratePerGB).Round(2), nil
}

// EgressGB reports the byte count as billing gigabytes
func EgressGB(bytesSent int64) decimal.Decimal {
	return decimal.NewFromInt(bytesSent).Div(bytesPerGB)
}
