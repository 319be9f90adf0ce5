package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vigilops/costwatch/internal/domain/billing"
)

var daysPerMonth = decimal.NewFromInt(30)

// EstimateDailyCost turns a set of observed resources into a daily cost
// estimate using the configured rate table. It is a pure function: no
// I/O, no mutation of its inputs.
//
// Running instances bill at monthly/30 for their machine type. Static
// IPs bill regardless of attachment status (unattached reserved
// addresses are billed by the provider). Disks bill size * per-GB rate
// / 30, and still bill when the owning instance is stopped. Unknown
// machine types contribute zero and are flagged in UnknownTypes.
func EstimateDailyCost(records []billing.ResourceRecord, rates *billing.RateTable) (*billing.Estimate, error) {
	if rates == nil {
		return nil, fmt.Errorf("nil rate table")
	}
	if err := rates.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate table: %w", err)
	}

	compute := decimal.Zero
	staticIP := decimal.Zero
	storage := decimal.Zero
	var unknown []string

	for _, rec := range records {
		switch rec.Kind {
		case billing.KindComputeInstance:
			if rec.Status != billing.StatusRunning {
				continue
			}
			monthly, known := rates.MachineRate(rec.MachineType)
			if !known {
				unknown = append(unknown, rec.MachineType)
				continue
			}
			compute = compute.Add(monthly.DivRound(daysPerMonth, 2))

		case billing.KindStaticIP:
			// Billed whether or not the address is in use.
			staticIP = staticIP.Add(rates.StaticIPMonthly.Div(daysPerMonth))

		case billing.KindDisk:
			monthly := decimal.NewFromInt(rec.SizeGB).Mul(rates.DiskRate(rec.DiskType))
			storage = storage.Add(monthly.Div(daysPerMonth))
		}
	}

	staticIP = staticIP.Round(2)
	storage = storage.Round(2)

	breakdown := map[string]decimal.Decimal{
		billing.CategoryCompute:  compute,
		billing.CategoryStaticIP: staticIP,
		billing.CategoryStorage:  storage,
	}

	return &billing.Estimate{
		Total:        compute.Add(staticIP).Add(storage),
		Breakdown:    breakdown,
		UnknownTypes: unknown,
	}, nil
}
