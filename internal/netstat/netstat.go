// Package netstat samples network byte counters from monitored
// instances over a remote execution channel. The channel returns
// line-oriented KEY=value output; anything unparseable yields zero
// counters rather than an error.
package netstat

import (
	"bufio"
	"context"
	"strconv"
	"strings"
)

// Counter keys in the remote script's output
const (
	keyRxBytes = "RX_BYTES"
	keyTxBytes = "TX_BYTES"
)

// Counters holds one sample of an instance's interface counters
type Counters struct {
	RxBytes int64 `json:"rx_bytes"`
	TxBytes int64 `json:"tx_bytes"`
}

// Runner executes the counter-collection script on a target instance
// and returns its raw output.
type Runner interface {
	Run(ctx context.Context, instance string) (string, error)
}

// ParseCounters extracts RX/TX byte counters from line-oriented
// KEY=value output. Missing keys, malformed lines, and negative values
// all read as zero.
func ParseCounters(output string) Counters {
	var c Counters

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || n < 0 {
			continue
		}

		switch strings.TrimSpace(key) {
		case keyRxBytes:
			c.RxBytes = n
		case keyTxBytes:
			c.TxBytes = n
		}
	}

	return c
}
