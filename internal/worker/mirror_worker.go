// Package worker copies persisted snapshots into the spreadsheet mirror.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/sheets"
	"spendwise/internal/storage"
)

// versioned is implemented by stores that track when a key last changed.
type versioned interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}

// MirrorWorker reads snapshot keys from the store and rewrites the mirror.
type MirrorWorker struct {
	kv     storage.KV
	mirror sheets.Mirror
	logger *log.Logger

	mu     sync.Mutex
	synced map[string]time.Time
}

func NewMirrorWorker(kv storage.KV, mirror sheets.Mirror, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentWorker)
	}
	return &MirrorWorker{
		kv:     kv,
		mirror: mirror,
		logger: logger.WithComponent(log.ComponentWorker),
		synced: make(map[string]time.Time),
	}
}

// HandleSnapshotMessage processes a single notification from AMQP.
// Errors are returned only when a retry could help.
func (w *MirrorWorker) HandleSnapshotMessage(ctx context.Context, msg *amqp.SnapshotMessage) error {
	w.logger.InfoContext(ctx, "Processing snapshot message",
		log.FieldKey, msg.Key,
		log.FieldCount, msg.Count)
	return w.SyncKey(ctx, msg.Key)
}

// SyncKey mirrors the current snapshot stored under key.
func (w *MirrorWorker) SyncKey(ctx context.Context, key string) error {
	raw, err := w.kv.Get(ctx, key)
	missing := errors.Is(err, storage.ErrNotFound)
	if err != nil && !missing {
		return fmt.Errorf("read %s snapshot: %w", key, err)
	}

	switch key {
	case storage.KeyExpenses:
		var expenses []core.Expense
		if !missing && !w.decode(ctx, key, raw, &expenses) {
			return nil
		}
		if err := w.mirror.WriteExpenses(ctx, expenses); err != nil {
			return fmt.Errorf("mirror expenses: %w", err)
		}
	case storage.KeyCategories:
		categories := core.DefaultCategories()
		if !missing {
			var decoded []core.Category
			if !w.decode(ctx, key, raw, &decoded) {
				return nil
			}
			if decoded != nil {
				categories = decoded
			}
		}
		if err := w.mirror.WriteCategories(ctx, categories); err != nil {
			return fmt.Errorf("mirror categories: %w", err)
		}
	default:
		w.logger.WarnContext(ctx, "Ignoring snapshot for unknown key", log.FieldKey, key)
		return nil
	}

	w.markSynced(ctx, key)
	return nil
}

// decode reports whether raw was usable. A malformed snapshot cannot be fixed
// by retrying, so it is logged and skipped.
func (w *MirrorWorker) decode(ctx context.Context, key string, raw []byte, dst any) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		w.logger.ErrorContext(ctx, "Malformed snapshot, not mirrored",
			log.FieldKey, key, log.FieldError, err)
		return false
	}
	return true
}

func (w *MirrorWorker) markSynced(ctx context.Context, key string) {
	v, ok := w.kv.(versioned)
	if !ok {
		return
	}
	ts, err := v.UpdatedAt(ctx, key)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.synced[key] = ts
	w.mu.Unlock()
}

// upToDate reports whether key has not changed since it was last mirrored.
func (w *MirrorWorker) upToDate(ctx context.Context, key string) bool {
	v, ok := w.kv.(versioned)
	if !ok {
		return false
	}
	ts, err := v.UpdatedAt(ctx, key)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	last, seen := w.synced[key]
	return seen && last.Equal(ts)
}

// Resync mirrors every key that changed since its last successful sync.
// This is the backup path for lost notifications.
func (w *MirrorWorker) Resync(ctx context.Context) error {
	var errs []error
	for _, key := range []string{storage.KeyExpenses, storage.KeyCategories} {
		if w.upToDate(ctx, key) {
			continue
		}
		if err := w.SyncKey(ctx, key); err != nil {
			w.logger.ErrorContext(ctx, "Resync failed", log.FieldKey, key, log.FieldError, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunPeriodic calls Resync every interval until ctx is done.
func (w *MirrorWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = w.Resync(ctx)
		}
	}
}
