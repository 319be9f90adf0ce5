package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vigilops/costwatch/internal/domain/alert"
	"github.com/vigilops/costwatch/internal/ledger"
	"github.com/vigilops/costwatch/internal/pkg/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testThresholds() Thresholds {
	return Thresholds{
		DailyCost:       dec("5.00"),
		CostIncreasePct: dec("20"),
		NetworkGB:       dec("10"),
		Enabled: map[alert.Category]bool{
			alert.CategoryDailyOKStatus: false,
		},
	}
}

func newTestPipeline(store ledger.Store, thresholds Thresholds) *Pipeline {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewPipeline(store, NewCooldown(4*time.Hour), thresholds, log)
}

func categories(alerts []alert.Alert) []alert.Category {
	out := make([]alert.Category, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Category)
	}
	return out
}

func TestPipeline_Evaluate(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	tests := []struct {
		name  string
		facts RunFacts
		want  []alert.Category
	}{
		{
			name: "all quiet",
			facts: RunFacts{
				Now:       now,
				DailyCost: dec("1.00"),
				EgressGB:  dec("0.5"),
			},
			want: nil,
		},
		{
			name: "cost over threshold",
			facts: RunFacts{
				Now:       now,
				DailyCost: dec("7.50"),
			},
			want: []alert.Category{alert.CategoryCostThreshold},
		},
		{
			name: "cost increase over percentage",
			facts: RunFacts{
				Now:          now,
				DailyCost:    dec("3.00"),
				PreviousCost: dec("2.00"),
				HasPrevious:  true,
			},
			want: []alert.Category{alert.CategoryCostIncrease},
		},
		{
			name: "increase without previous run never fires",
			facts: RunFacts{
				Now:       now,
				DailyCost: dec("3.00"),
			},
			want: nil,
		},
		{
			name: "egress over threshold",
			facts: RunFacts{
				Now:      now,
				EgressGB: dec("12.5"),
			},
			want: []alert.Category{alert.CategoryNetworkThreshold},
		},
		{
			name: "unused resources present",
			facts: RunFacts{
				Now:         now,
				UnusedNames: []string{"ip-old", "vm-stopped"},
			},
			want: []alert.Category{alert.CategoryUnusedResources},
		},
		{
			name: "multiple categories fire independently",
			facts: RunFacts{
				Now:         now,
				DailyCost:   dec("9.00"),
				EgressGB:    dec("40"),
				UnusedNames: []string{"ip-old"},
			},
			want: []alert.Category{
				alert.CategoryNetworkThreshold,
				alert.CategoryCostThreshold,
				alert.CategoryUnusedResources,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := newTestPipeline(ledger.NewMemStore(), testThresholds())

			fired, err := pipeline.Evaluate(context.Background(), tt.facts)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}

			got := categories(fired)
			if len(got) != len(tt.want) {
				t.Fatalf("Evaluate() fired %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Evaluate() fired %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestPipeline_CooldownSuppressesRepeat(t *testing.T) {
	store := ledger.NewMemStore()
	pipeline := newTestPipeline(store, testThresholds())
	ctx := context.Background()

	base := time.Unix(1700000000, 0).UTC()
	facts := RunFacts{Now: base, DailyCost: dec("7.50")}

	fired, err := pipeline.Evaluate(ctx, facts)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(fired) != 1 {
		t.Fatalf("first run fired %d alerts, want 1", len(fired))
	}

	// Immediately after, and just before the boundary: suppressed.
	for _, offset := range []time.Duration{0, 14399 * time.Second, 14400 * time.Second} {
		facts.Now = base.Add(offset)
		fired, err = pipeline.Evaluate(ctx, facts)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if len(fired) != 0 {
			t.Errorf("at +%s fired %d alerts, want 0", offset, len(fired))
		}
	}

	// Past the boundary: fires again and re-records.
	facts.Now = base.Add(14401 * time.Second)
	fired, err = pipeline.Evaluate(ctx, facts)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(fired) != 1 {
		t.Fatalf("past cooldown fired %d alerts, want 1", len(fired))
	}

	entries, _ := store.Load(ctx)
	if got := entries[alert.CategoryCostThreshold]; !got.Equal(facts.Now) {
		t.Errorf("ledger entry = %v, want %v", got, facts.Now)
	}
}

func TestPipeline_DailyOKOnlyWhenQuiet(t *testing.T) {
	thresholds := testThresholds()
	thresholds.Enabled[alert.CategoryDailyOKStatus] = true
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()

	// Quiet run: heartbeat fires.
	pipeline := newTestPipeline(ledger.NewMemStore(), thresholds)
	fired, err := pipeline.Evaluate(ctx, RunFacts{Now: now, DailyCost: dec("1.00")})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(fired) != 1 || fired[0].Category != alert.CategoryDailyOKStatus {
		t.Fatalf("quiet run fired %v, want daily_ok_status", categories(fired))
	}

	// Noisy run: heartbeat stays silent.
	pipeline = newTestPipeline(ledger.NewMemStore(), thresholds)
	fired, err = pipeline.Evaluate(ctx, RunFacts{Now: now, DailyCost: dec("9.00")})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	for _, a := range fired {
		if a.Category == alert.CategoryDailyOKStatus {
			t.Error("daily_ok_status fired alongside a triggered category")
		}
	}
}

func TestPipeline_DisabledCategoryNeverFires(t *testing.T) {
	thresholds := testThresholds()
	thresholds.Enabled[alert.CategoryCostThreshold] = false

	pipeline := newTestPipeline(ledger.NewMemStore(), thresholds)
	fired, err := pipeline.Evaluate(context.Background(), RunFacts{
		Now:       time.Unix(1700000000, 0).UTC(),
		DailyCost: dec("100.00"),
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(fired) != 0 {
		t.Errorf("disabled category fired %v", categories(fired))
	}
}
