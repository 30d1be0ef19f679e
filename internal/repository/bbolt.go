package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/khushveer007/courseget/internal/status"
)

const (
	progressBucket = "progress"
	metadataBucket = "metadata"
	schemaVersion  = 1
)

// ErrEntryNotFound is returned when a progress entry cannot be found.
var ErrEntryNotFound = errors.New("progress entry not found")

// BboltStore implements ProgressStore on a single bbolt file stored
// alongside the download root. bbolt serializes writers internally, so
// Record is safe under concurrent workers without extra locking.
type BboltStore struct {
	db *bbolt.DB
}

// NewBboltStore opens (or creates) the progress database.
func NewBboltStore(dbPath string) (*BboltStore, error) {
	options := &bbolt.Options{
		Timeout: 1 * time.Second,
	}

	db, err := bbolt.Open(dbPath, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress database: %w", err)
	}

	store := &BboltStore{db: db}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initialize sets up buckets and schema.
func (s *BboltStore) initialize() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(progressBucket))
		if err != nil {
			return fmt.Errorf("failed to create progress bucket: %w", err)
		}

		meta, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return fmt.Errorf("failed to create metadata bucket: %w", err)
		}

		versionBytes := []byte(fmt.Sprintf("%d", schemaVersion))

		err = meta.Put([]byte("schema_version"), versionBytes)
		if err != nil {
			return fmt.Errorf("failed to store schema version: %w", err)
		}

		return nil
	})
}

// Load reads all entries. Any entry found in state Downloading was
// interrupted mid-transfer by a crash; no completion marker can be trusted
// for it, so it is rewritten to Pending before being returned.
func (s *BboltStore) Load() (map[string]Entry, error) {
	entries := make(map[string]Entry)

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(progressBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", progressBucket)
		}

		var interrupted []Entry

		err := bucket.ForEach(func(k, v []byte) error {
			var entry Entry

			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal entry %s: %w", k, err)
			}

			if entry.State == status.Downloading {
				entry.State = status.Pending
				entry.UpdatedAt = time.Now()
				interrupted = append(interrupted, entry)
			}

			entries[entry.AssetID] = entry

			return nil
		})
		if err != nil {
			return err
		}

		for _, entry := range interrupted {
			if err := putEntry(bucket, entry); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Record durably persists a state transition before returning.
func (s *BboltStore) Record(assetID string, state status.State, attempts int, lastErr error) error {
	if assetID == "" {
		return errors.New("asset ID cannot be empty")
	}

	entry := Entry{
		AssetID:   assetID,
		State:     state,
		Attempts:  attempts,
		UpdatedAt: time.Now(),
	}
	if lastErr != nil {
		entry.LastError = lastErr.Error()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(progressBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", progressBucket)
		}

		return putEntry(bucket, entry)
	})
}

// Find retrieves a single entry by asset ID.
func (s *BboltStore) Find(assetID string) (Entry, error) {
	var entry Entry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(progressBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", progressBucket)
		}

		data := bucket.Get([]byte(assetID))
		if data == nil {
			return ErrEntryNotFound
		}

		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return Entry{}, err
	}

	return entry, nil
}

// Reset erases all progress entries. Invoked once at startup when the reset
// flag is set.
func (s *BboltStore) Reset() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(progressBucket)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("failed to delete progress bucket: %w", err)
		}

		_, err := tx.CreateBucket([]byte(progressBucket))
		if err != nil {
			return fmt.Errorf("failed to recreate progress bucket: %w", err)
		}

		return nil
	})
}

// Close closes the database.
func (s *BboltStore) Close() error {
	return s.db.Close()
}

func putEntry(bucket *bbolt.Bucket, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := bucket.Put([]byte(entry.AssetID), data); err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	return nil
}
