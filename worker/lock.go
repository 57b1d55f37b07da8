package worker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	"voluntariado-backend/models"

	"github.com/google/uuid"
)

// ErrLockHeld is returned when another process holds an unexpired provisioning lock
var ErrLockHeld = errors.New("provisioning lock held by another worker")

// ProvisionLock is a lease stored in a JSON file. Processes sharing the host
// agree on who may create tables; a crashed holder loses the lease after ttl.
type ProvisionLock struct {
	path string
	ttl  time.Duration
	env  string
	now  func() time.Time
}

func NewProvisionLock(path string, ttl time.Duration, env string) *ProvisionLock {
	return &ProvisionLock{path: path, ttl: ttl, env: env, now: time.Now}
}

// Path returns the lease file location
func (l *ProvisionLock) Path() string {
	return l.path
}

// Acquire takes the lease for owner. A live lease held by owner is renewed,
// an expired or unreadable one is taken over.
func (l *ProvisionLock) Acquire(owner string) (*models.LockInfo, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return nil, fmt.Errorf("lock dir: %w", err)
	}
	now := l.now()

	current, err := l.load()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		lease := l.newLease(owner, now)
		if err := l.create(lease); err != nil {
			if errors.Is(err, fs.ErrExist) {
				// lost the race to another process
				return nil, ErrLockHeld
			}
			return nil, err
		}
		return lease, nil
	case err == nil && !current.Expired(now):
		if !current.HeldBy(owner) {
			return nil, fmt.Errorf("%w: %s until %s", ErrLockHeld, current.Owner, current.ExpiresAt.Format(time.RFC3339))
		}
		renewed := *current
		renewed.ExpiresAt = now.Add(l.ttl)
		if err := l.store(&renewed); err != nil {
			return nil, err
		}
		return &renewed, nil
	}

	lease := l.newLease(owner, now)
	if err := l.store(lease); err != nil {
		return nil, err
	}
	return lease, nil
}

// Release drops the lease when held still owns it
func (l *ProvisionLock) Release(held *models.LockInfo) error {
	current, err := l.load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read lock: %w", err)
	}
	if !current.HeldBy(held.Owner) {
		return fmt.Errorf("cannot release lock owned by %s", current.Owner)
	}
	return l.remove()
}

// Sweep deletes the lease file once it has expired
func (l *ProvisionLock) Sweep() error {
	current, err := l.load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if current.Expired(l.now()) {
		return l.remove()
	}
	return nil
}

func (l *ProvisionLock) newLease(owner string, now time.Time) *models.LockInfo {
	return &models.LockInfo{
		ID:          uuid.NewString(),
		Owner:       owner,
		AcquiredAt:  now,
		ExpiresAt:   now.Add(l.ttl),
		Environment: l.env,
	}
}

func (l *ProvisionLock) load() (*models.LockInfo, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	var lease models.LockInfo
	if err := json.Unmarshal(data, &lease); err != nil {
		return nil, fmt.Errorf("parse lock file: %w", err)
	}
	return &lease, nil
}

// create writes a brand new lease and fails with fs.ErrExist if one appeared meanwhile
func (l *ProvisionLock) create(lease *models.LockInfo) error {
	data, err := json.Marshal(lease)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write lock: %w", err)
	}
	return f.Close()
}

// store replaces the lease atomically
func (l *ProvisionLock) store(lease *models.LockInfo) error {
	data, err := json.Marshal(lease)
	if err != nil {
		return err
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write lock: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace lock: %w", err)
	}
	return nil
}

func (l *ProvisionLock) remove() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove lock: %w", err)
	}
	return nil
}
