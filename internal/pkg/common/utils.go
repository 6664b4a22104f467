package common

import (
	"strings"

	"github.com/google/uuid"
)

// ShortID returns an 8-character hex id with the given prefix, e.g.
// "log_1a2b3c4d".
func ShortID(prefix string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + id[:8]
}
