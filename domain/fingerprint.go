package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// ScheduleFingerprint derives the equivalence key for a screening's raw
// schedule text. Re-scrapes of the same phrase (modulo case, diacritics
// and whitespace) collide here, which is what dedupes them.
func ScheduleFingerprint(scheduleText string) string {
	sum := sha256.Sum256([]byte(Normalize(scheduleText)))
	return hex.EncodeToString(sum[:])
}
