package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"reviewpipe/internal/ledger"

	bolt "go.etcd.io/bbolt"
)

// LedgerStore is a durable ledger.Ledger backed by BoltDB. Bolt serializes
// writers through a single update transaction, which makes the
// increment-then-decide sequence in RecordViolation atomic per call without
// any additional locking.
type LedgerStore struct {
	db        *bolt.DB
	threshold int
}

// NewLedgerStore creates a ledger over an open BoltDB handle. The buckets
// must already exist (Open takes care of that). Zero is a real threshold;
// a negative value falls back to the default.
func NewLedgerStore(db *bolt.DB, threshold int) *LedgerStore {
	if threshold < 0 {
		threshold = ledger.DefaultBanThreshold
	}
	return &LedgerStore{db: db, threshold: threshold}
}

func (s *LedgerStore) getEntry(bucket *bolt.Bucket, userID string) (ledger.Entry, error) {
	e := ledger.Entry{UserID: userID}
	data := bucket.Get([]byte(userID))
	if data == nil {
		return e, nil
	}
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("failed to unmarshal ledger entry for %s: %w", userID, err)
	}
	return e, nil
}

func (s *LedgerStore) putEntry(bucket *bolt.Bucket, e ledger.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger entry for %s: %w", e.UserID, err)
	}
	return bucket.Put([]byte(e.UserID), data)
}

// RecordViolation atomically increments the user's violation count and
// returns the post-increment count together with the ban status.
func (s *LedgerStore) RecordViolation(ctx context.Context, userID string) (int, bool, error) {
	var count int
	var banned bool

	err := s.db.Update(func(tx *bolt.Tx) error {
		entries := tx.Bucket(BucketLedgerEntries)
		if entries == nil {
			return fmt.Errorf("bucket not found: %s", BucketLedgerEntries)
		}

		e, err := s.getEntry(entries, userID)
		if err != nil {
			return err
		}

		e.ViolationCount++
		e.LastViolation = time.Now()
		if e.ViolationCount > s.threshold {
			e.Banned = true
		}

		if err := s.putEntry(entries, e); err != nil {
			return err
		}

		if e.Banned {
			bannedBucket := tx.Bucket(BucketBannedUsers)
			if bannedBucket == nil {
				return fmt.Errorf("bucket not found: %s", BucketBannedUsers)
			}
			if err := bannedBucket.Put([]byte(userID), []byte{1}); err != nil {
				return err
			}
		}

		count = e.ViolationCount
		banned = e.Banned
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return count, banned, nil
}

// RecordClean notes a clean review for the user and returns the current
// violation count and ban status from the same transaction. The violation
// count is untouched.
func (s *LedgerStore) RecordClean(ctx context.Context, userID string) (int, bool, error) {
	var count int
	var banned bool

	err := s.db.Update(func(tx *bolt.Tx) error {
		entries := tx.Bucket(BucketLedgerEntries)
		if entries == nil {
			return fmt.Errorf("bucket not found: %s", BucketLedgerEntries)
		}

		e, err := s.getEntry(entries, userID)
		if err != nil {
			return err
		}
		e.CleanCount++
		if err := s.putEntry(entries, e); err != nil {
			return err
		}

		count = e.ViolationCount
		banned = e.Banned
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return count, banned, nil
}

// IsBanned reports whether the user is banned.
func (s *LedgerStore) IsBanned(ctx context.Context, userID string) (bool, error) {
	var banned bool
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketBannedUsers)
		if bucket == nil {
			return nil
		}
		banned = bucket.Get([]byte(userID)) != nil
		return nil
	})
	return banned, err
}

// ViolationCount returns the user's current violation count.
func (s *LedgerStore) ViolationCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		entries := tx.Bucket(BucketLedgerEntries)
		if entries == nil {
			return nil
		}
		e, err := s.getEntry(entries, userID)
		if err != nil {
			return err
		}
		count = e.ViolationCount
		return nil
	})
	return count, err
}

// BannedUsers returns the identifiers of all banned users in sorted order.
func (s *LedgerStore) BannedUsers(ctx context.Context) ([]string, error) {
	var banned []string
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketBannedUsers)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			banned = append(banned, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(banned)
	return banned, nil
}
