package dualstore

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/apperrors"
)

// Adapter routes reads and writes to the remote store while it is reachable
// and transparently falls back to the local store on any remote failure.
// Once a remote call has failed, all subsequent calls prefer local until
// ResetDegraded is called (manual resync trigger); there is no background
// resync.
type Adapter struct {
	remote DocumentStore
	local  DocumentStore

	remoteDegraded atomic.Bool
	quotaExceeded  atomic.Bool
}

// NewAdapter builds the dual-store facade. remote may be nil for an
// offline-only setup; the adapter then starts degraded.
func NewAdapter(remote DocumentStore, local DocumentStore) *Adapter {
	a := &Adapter{
		remote: remote,
		local:  local,
	}
	if remote == nil {
		a.remoteDegraded.Store(true)
	}
	return a
}

// RemoteDegraded reports whether a remote failure has switched this session
// to the local store.
func (a *Adapter) RemoteDegraded() bool {
	return a.remoteDegraded.Load()
}

// ResetDegraded re-enables the remote store for subsequent calls.
func (a *Adapter) ResetDegraded() {
	if a.remote != nil {
		a.remoteDegraded.Store(false)
	}
}

func (a *Adapter) markDegraded(op string, path string, err error) {
	if a.remoteDegraded.CompareAndSwap(false, true) {
		slog.Warn("remote store degraded, falling back to local",
			slog.String("op", op),
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}

func (a *Adapter) Read(ctx context.Context, path string) ([]byte, error) {
	if !a.remoteDegraded.Load() {
		data, err := a.remote.Read(ctx, path)
		if err == nil || errors.Is(err, ErrNotFound) {
			return data, err
		}
		a.markDegraded("read", path, err)
	}
	return a.local.Read(ctx, path)
}

// ReadAny returns the document from whichever store has it: a remote
// miss does not hide a copy that only landed locally while the remote
// store was unavailable.
func (a *Adapter) ReadAny(ctx context.Context, path string) ([]byte, error) {
	data, err := a.Read(ctx, path)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return data, err
	}
	return a.local.Read(ctx, path)
}

// Exists checks both stores: a document counts as existing if either the
// remote store (when reachable) or the local store has it. Used for
// account-existence checks that must not report a false negative while one
// store is unavailable.
func (a *Adapter) Exists(ctx context.Context, path string) bool {
	if !a.remoteDegraded.Load() {
		_, err := a.remote.Read(ctx, path)
		if err == nil {
			return true
		}
		if !errors.Is(err, ErrNotFound) {
			a.markDegraded("read", path, err)
		}
	}
	_, err := a.local.Read(ctx, path)
	return err == nil
}

func (a *Adapter) Write(ctx context.Context, path string, mutate MutatorFn) error {
	if a.quotaExceeded.Load() {
		return apperrors.New(apperrors.KindQuotaExceeded, "local storage quota exceeded")
	}

	if !a.remoteDegraded.Load() {
		var produced []byte
		err := a.remote.Write(ctx, path, func(cur []byte, found bool) ([]byte, error) {
			out, merr := mutate(cur, found)
			if merr == nil {
				produced = out
			}
			return out, merr
		})
		if err == nil {
			// write-through mirror keeps the device-scoped store able to
			// answer existence checks without network access. The mirror
			// copies the bytes the remote write produced; the mutator runs
			// exactly once, so a diverged local copy cannot change the
			// outcome the caller already observed.
			if lerr := a.writeLocal(ctx, path, func([]byte, bool) ([]byte, error) {
				return produced, nil
			}); lerr != nil {
				slog.Warn("failed to mirror write to local store",
					slog.String("path", path),
					slog.String("error", lerr.Error()))
			}
			return nil
		}
		var me *MutateError
		if errors.As(err, &me) {
			return err
		}
		a.markDegraded("write", path, err)
	}
	return a.writeLocal(ctx, path, mutate)
}

func (a *Adapter) writeLocal(ctx context.Context, path string, mutate MutatorFn) error {
	err := a.local.Write(ctx, path, mutate)
	if err != nil && IsFullError(err) {
		a.quotaExceeded.Store(true)
		return apperrors.Wrap(apperrors.KindQuotaExceeded, "local storage quota exceeded", err)
	}
	return err
}

func (a *Adapter) Delete(ctx context.Context, path string) error {
	if !a.remoteDegraded.Load() {
		if err := a.remote.Delete(ctx, path); err != nil {
			a.markDegraded("delete", path, err)
		}
	}
	return a.local.Delete(ctx, path)
}
