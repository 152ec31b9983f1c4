package bolt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Matrix-I/todo-backend/domain"
	"github.com/Matrix-I/todo-backend/repository"
)

// Ledger persists the coordinator's view of scheduled reminders in a local
// BoltDB file, so tracked state survives restarts and reconcile has
// something real to correct against.
type Ledger struct {
	db     *bolt.DB
	bucket []byte
}

var _ repository.ReminderLedger = (*Ledger)(nil)

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Ledger, error) {
	if bucket == "" {
		bucket = "reminders"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Put records a tracked reminder, replacing any earlier record for the
// same task id.
func (l *Ledger) Put(reminder domain.TrackedReminder) error {
	if l == nil || l.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if reminder.TaskID == "" {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(reminder)
	if err != nil {
		return err
	}

	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(l.bucket).Put([]byte(reminder.TaskID), payload)
	})
}

// Get returns the tracked reminder for a task id, or nil when none is
// tracked.
func (l *Ledger) Get(taskID string) (*domain.TrackedReminder, error) {
	if l == nil || l.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}

	var reminder *domain.TrackedReminder
	err := l.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(l.bucket).Get([]byte(taskID))
		if raw == nil {
			return nil
		}
		var r domain.TrackedReminder
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		reminder = &r
		return nil
	})
	return reminder, err
}

// Delete removes the record for a task id. Deleting an untracked id is a
// no-op.
func (l *Ledger) Delete(taskID string) error {
	if l == nil || l.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(l.bucket).Delete([]byte(taskID))
	})
}

// All returns every tracked reminder in task-id order.
func (l *Ledger) All() ([]domain.TrackedReminder, error) {
	if l == nil || l.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}

	var reminders []domain.TrackedReminder
	err := l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(l.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var r domain.TrackedReminder
			if err := json.Unmarshal(v, &r); err != nil {
				continue
			}
			reminders = append(reminders, r)
		}
		return nil
	})
	return reminders, err
}

// Clear drops every tracked reminder.
func (l *Ledger) Clear() error {
	if l == nil || l.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(l.bucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(l.bucket)
		return err
	})
}

// Count returns the number of tracked reminders.
func (l *Ledger) Count() (int, error) {
	if l == nil || l.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := l.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(l.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (l *Ledger) Stats() bolt.Stats {
	if l == nil || l.db == nil {
		return bolt.Stats{}
	}
	return l.db.Stats()
}
