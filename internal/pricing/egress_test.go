package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vigilops/costwatch/internal/pkg/errors"
)

func TestPriceEgress(t *testing.T) {
	freeTier := decimal.RequireFromString("1")
	rate := decimal.RequireFromString("0.12")

	tests := []struct {
		name      string
		bytesSent int64
		want      string
		wantErr   bool
	}{
		{
			name:      "zero bytes",
			bytesSent: 0,
			want:      "0",
		},
		{
			name:      "below free tier",
			bytesSent: 512 * 1024 * 1024,
			want:      "0",
		},
		{
			name:      "exactly at free tier",
			bytesSent: GiB,
			want:      "0",
		},
		{
			name:      "five GB with one GB free",
			bytesSent: 5 * GiB,
			want:      "0.48",
		},
		{
			name:      "fractional excess",
			bytesSent: GiB + GiB/2,
			want:      "0.06",
		},
		{
			name:      "negative bytes is invalid",
			bytesSent: -1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PriceEgress(tt.bytesSent, freeTier, rate)

			if (err != nil) != tt.wantErr {
				t.Fatalf("PriceEgress() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.IsInvalidArgument(err) {
					t.Errorf("PriceEgress() error code = %s, want INVALID_ARGUMENT", errors.Code(err))
				}
				return
			}
			if got.String() != tt.want {
				t.Errorf("PriceEgress() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPriceEgress_LinearAboveFreeTier(t *testing.T) {
	freeTier := decimal.RequireFromString("1")
	rate := decimal.RequireFromString("0.12")

	for _, gb := range []int64{2, 3, 10, 100} {
		lower, err := PriceEgress(gb*GiB, freeTier, rate)
		if err != nil {
			t.Fatalf("PriceEgress() error = %v", err)
		}
		upper, err := PriceEgress((gb+1)*GiB, freeTier, rate)
		if err != nil {
			t.Fatalf("PriceEgress() error = %v", err)
		}
		if diff := upper.Sub(lower); !diff.Equal(rate) {
			t.Errorf("price(%d GB) - price(%d GB) = %s, want %s", gb+1, gb, diff, rate)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{GiB - 1, "1024.00 MB"},
		{GiB, "1.00 GB"},
		{5 * GiB, "5.00 GB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
