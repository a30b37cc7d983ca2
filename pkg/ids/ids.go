// Package ids provides identifier sources for organism names.
package ids

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Source generates identifiers.
type Source func() string

// Short returns 9-character identifiers derived from random UUIDs.
func Short() Source {
	return func() string {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	}
}

// UUID returns full random UUID strings.
func UUID() Source {
	return uuid.NewString
}

// Sequential returns deterministic identifiers "<prefix>-1", "<prefix>-2", ...
// It is safe for concurrent use.
func Sequential(prefix string) Source {
	var n atomic.Uint64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}
