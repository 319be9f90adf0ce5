package alert

import "time"

// Category identifies one of the fixed alert categories. Each category
// is rate limited independently by the cooldown ledger.
type Category string

// Alert categories
const (
	CategoryCostIncrease     Category = "cost_increase"
	CategoryNetworkThreshold Category = "network_threshold"
	CategoryCostThreshold    Category = "cost_threshold"
	CategoryUnusedResources  Category = "unused_resources"
	CategoryDailyOKStatus    Category = "daily_ok_status"
)

// Categories lists every known category in evaluation order
func Categories() []Category {
	return []Category{
		CategoryCostIncrease,
		CategoryNetworkThreshold,
		CategoryCostThreshold,
		CategoryUnusedResources,
		CategoryDailyOKStatus,
	}
}

// Valid reports whether c is one of the fixed categories
func (c Category) Valid() bool {
	switch c {
	case CategoryCostIncrease, CategoryNetworkThreshold, CategoryCostThreshold,
		CategoryUnusedResources, CategoryDailyOKStatus:
		return true
	}
	return false
}

// Alert is a structured notification payload emitted by the decision
// pipeline once a category condition holds and the cooldown permits.
type Alert struct {
	Category       Category  `json:"category"`
	Message        string    `json:"message"`
	CurrentValue   string    `json:"current_value"`
	ThresholdValue string    `json:"threshold_value"`
	Timestamp      time.Time `json:"timestamp"`
	RunID          string    `json:"run_id,omitempty"`
}

// DefaultCooldown is the minimum interval between two alerts of the
// same category (4 hours).
const DefaultCooldown = 4 * time.Hour
