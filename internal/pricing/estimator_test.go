package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vigilops/costwatch/internal/domain/billing"
)

func testRates() *billing.RateTable {
	return &billing.RateTable{
		MachineMonthly: map[string]decimal.Decimal{
			"e2-micro":  decimal.RequireFromString("6.00"),
			"e2-medium": decimal.RequireFromString("24.46"),
		},
		DiskStandardPerGBMonthly: decimal.RequireFromString("0.04"),
		DiskSSDPerGBMonthly:      decimal.RequireFromString("0.17"),
		StaticIPMonthly:          decimal.RequireFromString("0.73"),
		NetworkFreeTierGB:        decimal.RequireFromString("1"),
		NetworkEgressPerGB:       decimal.RequireFromString("0.12"),
	}
}

func TestEstimateDailyCost(t *testing.T) {
	tests := []struct {
		name         string
		records      []billing.ResourceRecord
		wantTotal    string
		wantCompute  string
		wantStaticIP string
		wantStorage  string
		wantUnknown  int
	}{
		{
			name:      "empty inventory",
			records:   nil,
			wantTotal: "0", wantCompute: "0", wantStaticIP: "0", wantStorage: "0",
		},
		{
			name: "one running e2-micro",
			records: []billing.ResourceRecord{
				{Kind: billing.KindComputeInstance, Name: "web-1", Status: billing.StatusRunning, MachineType: "e2-micro"},
			},
			wantTotal: "0.2", wantCompute: "0.2", wantStaticIP: "0", wantStorage: "0",
		},
		{
			name: "stopped instance contributes nothing to compute",
			records: []billing.ResourceRecord{
				{Kind: billing.KindComputeInstance, Name: "web-1", Status: billing.StatusTerminated, MachineType: "e2-micro"},
			},
			wantTotal: "0", wantCompute: "0", wantStaticIP: "0", wantStorage: "0",
		},
		{
			name: "unused static IPs still bill",
			records: []billing.ResourceRecord{
				{Kind: billing.KindStaticIP, Name: "ip-1", Status: billing.StatusReserved},
				{Kind: billing.KindStaticIP, Name: "ip-2", Status: billing.StatusReserved},
			},
			wantTotal: "0.05", wantCompute: "0", wantStaticIP: "0.05", wantStorage: "0",
		},
		{
			name: "disk bills while instance stopped",
			records: []billing.ResourceRecord{
				{Kind: billing.KindComputeInstance, Name: "web-1", Status: billing.StatusTerminated, MachineType: "e2-micro"},
				{Kind: billing.KindDisk, Name: "web-1-disk", SizeGB: 30, DiskType: billing.DiskStandard},
			},
			wantTotal: "0.04", wantCompute: "0", wantStaticIP: "0", wantStorage: "0.04",
		},
		{
			name: "ssd disk uses ssd rate",
			records: []billing.ResourceRecord{
				{Kind: billing.KindDisk, Name: "fast-disk", SizeGB: 100, DiskType: billing.DiskSSD},
			},
			// 100 * 0.17 / 30 = 0.5667
			wantTotal: "0.57", wantCompute: "0", wantStaticIP: "0", wantStorage: "0.57",
		},
		{
			name: "unknown machine type contributes zero and is flagged",
			records: []billing.ResourceRecord{
				{Kind: billing.KindComputeInstance, Name: "exotic", Status: billing.StatusRunning, MachineType: "n9-mega"},
				{Kind: billing.KindComputeInstance, Name: "web-1", Status: billing.StatusRunning, MachineType: "e2-micro"},
			},
			wantTotal: "0.2", wantCompute: "0.2", wantStaticIP: "0", wantStorage: "0",
			wantUnknown: 1,
		},
		{
			name: "mixed fleet",
			records: []billing.ResourceRecord{
				{Kind: billing.KindComputeInstance, Name: "web-1", Status: billing.StatusRunning, MachineType: "e2-medium"},
				{Kind: billing.KindComputeInstance, Name: "web-2", Status: billing.StatusRunning, MachineType: "e2-micro"},
				{Kind: billing.KindStaticIP, Name: "ip-1", Status: billing.StatusInUse},
				{Kind: billing.KindDisk, Name: "data", SizeGB: 50, DiskType: billing.DiskStandard},
			},
			// compute: 24.46/30=0.82 + 6/30=0.20; static: 0.73/30=0.02; storage: 50*0.04/30=0.07
			wantTotal: "1.11", wantCompute: "1.02", wantStaticIP: "0.02", wantStorage: "0.07",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := EstimateDailyCost(tt.records, testRates())
			if err != nil {
				t.Fatalf("EstimateDailyCost() error = %v", err)
			}

			if got := est.Total.String(); got != tt.wantTotal {
				t.Errorf("total = %s, want %s", got, tt.wantTotal)
			}
			if got := est.Breakdown[billing.CategoryCompute].String(); got != tt.wantCompute {
				t.Errorf("compute = %s, want %s", got, tt.wantCompute)
			}
			if got := est.Breakdown[billing.CategoryStaticIP].String(); got != tt.wantStaticIP {
				t.Errorf("static_ip = %s, want %s", got, tt.wantStaticIP)
			}
			if got := est.Breakdown[billing.CategoryStorage].String(); got != tt.wantStorage {
				t.Errorf("storage = %s, want %s", got, tt.wantStorage)
			}
			if len(est.UnknownTypes) != tt.wantUnknown {
				t.Errorf("unknown types = %v, want %d entries", est.UnknownTypes, tt.wantUnknown)
			}
		})
	}
}

func TestEstimateDailyCost_Monotonic(t *testing.T) {
	rates := testRates()
	records := []billing.ResourceRecord{
		{Kind: billing.KindComputeInstance, Name: "a", Status: billing.StatusRunning, MachineType: "e2-micro"},
		{Kind: billing.KindStaticIP, Name: "b", Status: billing.StatusReserved},
		{Kind: billing.KindDisk, Name: "c", SizeGB: 20, DiskType: billing.DiskStandard},
		{Kind: billing.KindComputeInstance, Name: "d", Status: billing.StatusRunning, MachineType: "e2-medium"},
		{Kind: billing.KindDisk, Name: "e", SizeGB: 200, DiskType: billing.DiskSSD},
	}

	prev := decimal.Zero
	for i := range records {
		est, err := EstimateDailyCost(records[:i+1], rates)
		if err != nil {
			t.Fatalf("EstimateDailyCost() error = %v", err)
		}
		if est.Total.LessThan(prev) {
			t.Fatalf("total decreased after adding resource %d: %s < %s", i, est.Total, prev)
		}
		prev = est.Total
	}
}

func TestEstimateDailyCost_InvalidRates(t *testing.T) {
	rates := testRates()
	rates.StaticIPMonthly = decimal.RequireFromString("-0.73")

	if _, err := EstimateDailyCost(nil, rates); err == nil {
		t.Error("EstimateDailyCost() with negative rate should fail")
	}

	if _, err := EstimateDailyCost(nil, nil); err == nil {
		t.Error("EstimateDailyCost() with nil rate table should fail")
	}
}
