package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// referenceNumber builds a prefixed, time-sortable document number. The
// random suffix keeps two documents minted in the same second from
// colliding under the tenant-scoped unique keys.
func referenceNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102-150405"), uuid.NewString()[:8])
}
