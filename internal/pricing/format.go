package pricing

import "fmt"

// FormatBytes renders a byte count for human-readable output. Sub-GB
// values use 1024-based KB/MB thresholds; the GB threshold is 2^30
// bytes, matching the unit used for egress pricing.
func FormatBytes(n int64) string {
	const (
		kb = int64(1024)
		mb = kb * 1024
	)

	switch {
	case n < kb:
		return fmt.Sprintf("%d B", n)
	case n < mb:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(kb))
	case n < GiB:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(mb))
	default:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(GiB))
	}
}
