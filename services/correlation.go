// ABOUTME: Correlation identifiers attached to outbound Adobe requests
// ABOUTME: Format: req-<random>-<unix millis>, unique per call

package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewCorrelationID returns a fresh identifier for X-Correlation-ID.
func NewCorrelationID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return "req-" + random + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}
