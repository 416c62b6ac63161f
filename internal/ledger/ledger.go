// Package ledger tracks per-user profanity violations and ban status. It is
// the only state shared across concurrently processing reviews, so every
// mutation goes through atomic per-user operations.
package ledger

import (
	"context"
	"time"
)

// DefaultBanThreshold is the violation count a user must exceed (strictly
// greater than) to be banned.
const DefaultBanThreshold = 3

// Entry is the per-user ledger record. ViolationCount only ever increases,
// and Banned is monotonic: once true it stays true.
type Entry struct {
	UserID         string    `json:"user_id"`
	ViolationCount int       `json:"violation_count"`
	CleanCount     int       `json:"clean_count"`
	Banned         bool      `json:"banned"`
	LastViolation  time.Time `json:"last_violation,omitempty"`
}

// Ledger is the shared store of per-user violation counts and ban status.
//
// RecordViolation must be atomic with respect to concurrent callers for the
// same user: the returned count is the post-increment value, and the ban
// decision (count > threshold) is evaluated strictly after the increment is
// visible. RecordClean never changes the violation count; it returns the
// user's current violation count and ban status so callers get the full
// post-mutation state from the same atomic call.
type Ledger interface {
	RecordViolation(ctx context.Context, userID string) (count int, banned bool, err error)
	RecordClean(ctx context.Context, userID string) (count int, banned bool, err error)
	IsBanned(ctx context.Context, userID string) (bool, error)
	ViolationCount(ctx context.Context, userID string) (int, error)
	BannedUsers(ctx context.Context) ([]string, error)
}
