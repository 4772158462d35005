package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a list-item id made of the millisecond timestamp and a random
// suffix. Uniqueness is best-effort: a collision only duplicates a row key.
func NewID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%d-%s", now.UnixMilli(), random[:8])
}
