package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ResourceKind identifies the billable kind of a cloud resource
type ResourceKind string

// Resource kinds
const (
	KindComputeInstance ResourceKind = "compute_instance"
	KindStaticIP        ResourceKind = "static_ip"
	KindDisk            ResourceKind = "disk"
)

// DiskType identifies the persistent disk flavor used for pricing
type DiskType string

// Disk types
const (
	DiskStandard DiskType = "standard"
	DiskSSD      DiskType = "ssd"
)

// Instance status values as reported by the inventory API
const (
	StatusRunning    = "RUNNING"
	StatusTerminated = "TERMINATED"
	StatusReserved   = "RESERVED"
	StatusInUse      = "IN_USE"
)

// ResourceRecord is one observed cloud resource as reported by the
// inventory API. Read-only to the estimator; it carries no identity
// beyond the fields needed for pricing.
type ResourceRecord struct {
	Kind        ResourceKind `json:"kind"`
	Name        string       `json:"name"`
	Status      string       `json:"status"`
	SizeGB      int64        `json:"size_gb,omitempty"`
	MachineType string       `json:"machine_type,omitempty"`
	DiskType    DiskType     `json:"disk_type,omitempty"`
}

// RateTable holds the monthly unit prices used for estimation. Loaded
// once at startup and immutable thereafter.
type RateTable struct {
	// MachineMonthly maps a machine type (e.g. "e2-micro") to its
	// monthly on-demand price in USD.
	MachineMonthly map[string]decimal.Decimal

	DiskStandardPerGBMonthly decimal.Decimal
	DiskSSDPerGBMonthly      decimal.Decimal
	StaticIPMonthly          decimal.Decimal

	NetworkFreeTierGB  decimal.Decimal
	NetworkEgressPerGB decimal.Decimal
}

// Breakdown categories
const (
	CategoryCompute  = "compute"
	CategoryStaticIP = "static_ip"
	CategoryStorage  = "storage"
)

// Estimate is the result of a daily cost estimation run
type Estimate struct {
	Total     decimal.Decimal            `json:"total"`
	Breakdown map[string]decimal.Decimal `json:"breakdown"`

	// UnknownTypes lists machine types with no configured rate. They
	// contribute zero to the total.
	UnknownTypes []string `json:"unknown_types,omitempty"`
}

// Validate checks the rate table invariant: every rate must be >= 0
func (r *RateTable) Validate() error {
	for machineType, rate := range r.MachineMonthly {
		if rate.IsNegative() {
			return fmt.Errorf("negative rate for machine type %q", machineType)
		}
	}
	for name, rate := range map[string]decimal.Decimal{
		"disk_standard_per_gb_monthly": r.DiskStandardPerGBMonthly,
		"disk_ssd_per_gb_monthly":      r.DiskSSDPerGBMonthly,
		"static_ip_monthly":            r.StaticIPMonthly,
		"network_free_tier_gb":         r.NetworkFreeTierGB,
		"network_egress_per_gb":        r.NetworkEgressPerGB,
	} {
		if rate.IsNegative() {
			return fmt.Errorf("negative rate for %s", name)
		}
	}
	return nil
}

// MachineRate returns the monthly rate for a machine type and whether
// the type is known to the table. Unknown types price at zero.
func (r *RateTable) MachineRate(machineType string) (decimal.Decimal, bool) {
	rate, ok := r.MachineMonthly[machineType]
	if !ok {
		return decimal.Zero, false
	}
	return rate, true
}

// DiskRate returns the per-GB monthly rate for a disk type. Anything
// that is not SSD prices as standard.
func (r *RateTable) DiskRate(diskType DiskType) decimal.Decimal {
	if diskType == DiskSSD {
		return r.DiskSSDPerGBMonthly
	}
	return r.DiskStandardPerGBMonthly
}
