// Package ids hands out opaque, process-unique identifiers for UI elements.
package ids

import (
	"strconv"
	"sync/atomic"
)

var counter atomic.Uint64

// Next returns a fresh identifier with the given prefix. Identifiers are
// monotonic within a process and never reused.
func Next(prefix string) string {
	return prefix + "-" + strconv.FormatUint(counter.Add(1), 10)
}
