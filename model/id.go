package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// speakerIDLen is the length of the hex-encoded speaker ID.
const speakerIDLen = 32

// NewSpeakerID derives the stable speaker identifier from the display name
// and the enrollment time, at millisecond resolution. The derivation is
// deterministic: the same (name, time) pair always yields the same ID.
func NewSpeakerID(name string, enrolledAt time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s_%d", name, enrolledAt.UnixMilli())))
	return hex.EncodeToString(sum[:])[:speakerIDLen]
}
