// Package redistore provides a Redis-backed ban ledger for runs that are
// split across processes. Mutations execute as server-side scripts so each
// call commits all of its writes or none of them, which is what lets the
// dispatcher retry a failed ledger call without double-counting.
package redistore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"reviewpipe/internal/ledger"

	"github.com/redis/go-redis/v9"
)

const (
	violationKeyPrefix = "reviewpipe:violations:"
	cleanKeyPrefix     = "reviewpipe:clean:"
	bannedSetKey       = "reviewpipe:banned"
	lastViolationKey   = "reviewpipe:last_violation:"
)

// Ledger implements ledger.Ledger against a Redis server. Violation counts
// live in per-user counters and the banned set is a Redis set, so state is
// shared by every process pointed at the same server.
type Ledger struct {
	rdb       *redis.Client
	threshold int
}

// violationScript commits the whole violation mutation server-side in one
// call: increment, timestamp, and conditional ban-set insert. A partial
// commit would let a retry increment the same review's violation twice, so
// the three writes must be all-or-nothing.
// KEYS: violation counter, last-violation key, banned set.
// ARGV: timestamp, threshold, user id.
var violationScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
redis.call("SET", KEYS[2], ARGV[1])
if count > tonumber(ARGV[2]) then
	redis.call("SADD", KEYS[3], ARGV[3])
end
return count
`)

// cleanScript increments the clean counter and reads the violation count
// and ban status in the same call, so the caller never re-records a clean
// review because a follow-up read failed.
// KEYS: clean counter, violation counter, banned set.
// ARGV: user id.
var cleanScript = redis.NewScript(`
redis.call("INCR", KEYS[1])
local count = tonumber(redis.call("GET", KEYS[2]) or "0")
local banned = redis.call("SISMEMBER", KEYS[3], ARGV[1])
return {count, banned}
`)

// New creates a Redis-backed ledger. Zero is a real threshold; a negative
// value falls back to the default.
func New(rdb *redis.Client, threshold int) *Ledger {
	if threshold < 0 {
		threshold = ledger.DefaultBanThreshold
	}
	return &Ledger{rdb: rdb, threshold: threshold}
}

// Dial connects to a Redis server and returns a ledger over it. The
// connection is verified with a ping before use.
func Dial(ctx context.Context, addr string, threshold int) (*Ledger, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return New(rdb, threshold), nil
}

// Close releases the underlying Redis connection.
func (l *Ledger) Close() error {
	return l.rdb.Close()
}

// RecordViolation increments the user's violation counter and adds the
// user to the banned set once the count exceeds the threshold, all in one
// server-side script execution. Either every write commits or none does,
// so a failed call can be retried without double-counting. The ban is
// monotonic: the set member is never removed.
func (l *Ledger) RecordViolation(ctx context.Context, userID string) (int, bool, error) {
	keys := []string{violationKeyPrefix + userID, lastViolationKey + userID, bannedSetKey}
	count, err := violationScript.Run(ctx, l.rdb, keys,
		time.Now().Format(time.RFC3339), l.threshold, userID).Int64()
	if err != nil {
		return 0, false, fmt.Errorf("failed to record violation for %s: %w", userID, err)
	}
	return int(count), count > int64(l.threshold), nil
}

// RecordClean notes a clean review for the user and returns the current
// violation count and ban status from the same script execution. The
// violation count is untouched.
func (l *Ledger) RecordClean(ctx context.Context, userID string) (int, bool, error) {
	keys := []string{cleanKeyPrefix + userID, violationKeyPrefix + userID, bannedSetKey}
	res, err := cleanScript.Run(ctx, l.rdb, keys, userID).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("failed to record clean review for %s: %w", userID, err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("unexpected script reply for %s: %v", userID, res)
	}
	return int(res[0]), res[1] == 1, nil
}

// IsBanned reports whether the user is in the banned set.
func (l *Ledger) IsBanned(ctx context.Context, userID string) (bool, error) {
	banned, err := l.rdb.SIsMember(ctx, bannedSetKey, userID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check ban status for %s: %w", userID, err)
	}
	return banned, nil
}

// ViolationCount returns the user's current violation count.
func (l *Ledger) ViolationCount(ctx context.Context, userID string) (int, error) {
	count, err := l.rdb.Get(ctx, violationKeyPrefix+userID).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read violation count for %s: %w", userID, err)
	}
	return count, nil
}

// BannedUsers returns the identifiers of all banned users in sorted order.
func (l *Ledger) BannedUsers(ctx context.Context) ([]string, error) {
	users, err := l.rdb.SMembers(ctx, bannedSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list banned users: %w", err)
	}
	sort.Strings(users)
	return users, nil
}
