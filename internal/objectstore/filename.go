package objectstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stored filenames carry a Malaysia-local timestamp. Legacy convention from
// the first deployment; kept so new keys sort alongside old ones.
var filenameZone = time.FixedZone("MYT", 8*60*60)

// Filename builds an object key of the form
// {YYYYMMDD-HHMMSS}-{type}-{uuid8}.png.
func Filename(gestureType string, now time.Time) string {
	datetime := now.In(filenameZone).Format("20060102-150405")
	id := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%s-%s.png", datetime, cleanType(gestureType), id)
}

// cleanType lowercases the gesture type and strips everything outside
// [a-z0-9]; an empty result becomes "unknown".
func cleanType(gestureType string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(gestureType) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
