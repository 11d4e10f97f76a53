package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrChainBroken is returned by VerifyChain when an entry does not reference
// the hash of its predecessor.
var ErrChainBroken = errors.New("audit chain broken")

// Hash returns the hex SHA-256 digest of every field of e, including its
// PreviousHash. CreatedAt is hashed at microsecond precision to match
// PostgreSQL timestamps.
func Hash(e *Entry) string {
	fields := []string{
		e.ID,
		strconv.FormatInt(e.UserID, 10),
		e.EntityType,
		e.EntityID,
		e.Action,
		e.Outcome,
		e.RequestID,
		e.IPAddress,
		e.UserAgent,
		e.CreatedAt.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano),
		e.PreviousHash,
	}
	sum := sha256.Sum256([]byte(strings.Join(fields, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// VerifyChain checks entries given oldest first.
func VerifyChain(entries []*Entry) error {
	prev := ""
	for i, e := range entries {
		if e.PreviousHash != prev {
			return fmt.Errorf("%w at entry %d (%s)", ErrChainBroken, i, e.ID)
		}
		prev = Hash(e)
	}
	return nil
}
