package batch

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const stampFormat = "20060102150405"

// NewID returns a batch ID like "20250115093045-1a2b3c4d": a sortable
// timestamp prefix plus a short random suffix so two runs started in the
// same second stay distinct.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.UTC().Format(stampFormat) + "-" + suffix
}

// StartedAt parses the timestamp prefix of a batch ID.
func StartedAt(id string) (time.Time, error) {
	stamp, _, ok := strings.Cut(id, "-")
	if !ok {
		return time.Time{}, fmt.Errorf("invalid batch ID format: %q", id)
	}
	t, err := time.ParseInLocation(stampFormat, stamp, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp in batch ID %q: %w", id, err)
	}
	return t, nil
}
