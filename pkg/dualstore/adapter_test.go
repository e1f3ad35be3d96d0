package dualstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/apperrors"
)

// fullStore rejects every write like a filled-up sqlite file.
type fullStore struct {
	writes int
}

func (f *fullStore) Read(ctx context.Context, path string) ([]byte, error) {
	return nil, ErrNotFound
}

func (f *fullStore) Write(ctx context.Context, path string, mutate MutatorFn) error {
	f.writes++
	return errors.New("database or disk is full")
}

func (f *fullStore) Delete(ctx context.Context, path string) error {
	return nil
}

func (f *fullStore) List(ctx context.Context, prefix string) ([]string, error) {
	return nil, nil
}

// failingStore errors on every call, standing in for an unreachable remote.
type failingStore struct {
	calls int
}

var errUnreachable = errors.New("connection refused")

func (f *failingStore) Read(ctx context.Context, path string) ([]byte, error) {
	f.calls++
	return nil, errUnreachable
}

func (f *failingStore) Write(ctx context.Context, path string, mutate MutatorFn) error {
	f.calls++
	return errUnreachable
}

func (f *failingStore) Delete(ctx context.Context, path string) error {
	f.calls++
	return errUnreachable
}

func (f *failingStore) List(ctx context.Context, prefix string) ([]string, error) {
	f.calls++
	return nil, errUnreachable
}

func setDoc(value string) MutatorFn {
	return func(cur []byte, found bool) ([]byte, error) {
		return []byte(value), nil
	}
}

func TestAdapterPrefersRemote(t *testing.T) {
	remote := NewMemStore()
	local := NewMemStore()
	a := NewAdapter(remote, local)
	ctx := context.Background()

	require.NoError(t, a.Write(ctx, "users/1", setDoc(`{"v":1}`)))

	data, err := remote.Read(ctx, "users/1")
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(data))

	// write-through mirror
	data, err = local.Read(ctx, "users/1")
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(data))

	assert.False(t, a.RemoteDegraded())
}

func TestAdapterFallsBackOnRemoteFailure(t *testing.T) {
	remote := &failingStore{}
	local := NewMemStore()
	a := NewAdapter(remote, local)
	ctx := context.Background()

	require.NoError(t, a.Write(ctx, "users/1", setDoc(`{"v":1}`)))
	assert.True(t, a.RemoteDegraded())

	// subsequent reads reflect the locally written document
	data, err := a.Read(ctx, "users/1")
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(data))

	// remote is not retried while degraded
	callsAfterWrite := remote.calls
	_, err = a.Read(ctx, "users/1")
	require.NoError(t, err)
	assert.Equal(t, callsAfterWrite, remote.calls)
}

func TestAdapterResetDegraded(t *testing.T) {
	remote := NewMemStore()
	local := NewMemStore()
	a := NewAdapter(remote, local)
	ctx := context.Background()

	a.remoteDegraded.Store(true)
	require.NoError(t, a.Write(ctx, "users/1", setDoc(`{"v":1}`)))

	_, err := remote.Read(ctx, "users/1")
	assert.ErrorIs(t, err, ErrNotFound)

	a.ResetDegraded()
	require.NoError(t, a.Write(ctx, "users/1", setDoc(`{"v":2}`)))

	data, err := remote.Read(ctx, "users/1")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))
}

func TestAdapterExistsChecksBothStores(t *testing.T) {
	remote := NewMemStore()
	local := NewMemStore()
	a := NewAdapter(remote, local)
	ctx := context.Background()

	assert.False(t, a.Exists(ctx, "account-index/a@b.com"))

	// present only in the local store
	require.NoError(t, local.Write(ctx, "account-index/a@b.com", setDoc(`{}`)))
	assert.True(t, a.Exists(ctx, "account-index/a@b.com"))

	// present only in the remote store
	require.NoError(t, remote.Write(ctx, "account-index/c@d.com", setDoc(`{}`)))
	assert.True(t, a.Exists(ctx, "account-index/c@d.com"))
}

func TestAdapterMutatorErrorSurfacesVerbatim(t *testing.T) {
	remote := NewMemStore()
	local := NewMemStore()
	a := NewAdapter(remote, local)
	ctx := context.Background()

	errAbort := errors.New("abort mutation")
	err := a.Write(ctx, "users/1", func(cur []byte, found bool) ([]byte, error) {
		return nil, errAbort
	})
	assert.ErrorIs(t, err, errAbort)
	// a mutator error is not a transport failure
	assert.False(t, a.RemoteDegraded())
}

func TestAdapterReadNotFound(t *testing.T) {
	a := NewAdapter(NewMemStore(), NewMemStore())
	_, err := a.Read(context.Background(), "users/none")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdapterMirrorDoesNotRerunMutator(t *testing.T) {
	remote := NewMemStore()
	local := NewMemStore()
	a := NewAdapter(remote, local)
	ctx := context.Background()

	// local copy diverged while the remote store was unreachable
	require.NoError(t, local.Write(ctx, "users/1", setDoc(`{"favorite":true}`)))

	runs := 0
	var nowFavorite bool
	require.NoError(t, a.Write(ctx, "users/1", func(cur []byte, found bool) ([]byte, error) {
		runs++
		if found {
			nowFavorite = false
			return []byte(`{}`), nil
		}
		nowFavorite = true
		return []byte(`{"favorite":true}`), nil
	}))

	// the mutator ran once, against remote state only
	assert.Equal(t, 1, runs)
	assert.True(t, nowFavorite)

	// the mirror received the bytes the remote write produced, not a
	// second mutation of the diverged local copy
	data, err := local.Read(ctx, "users/1")
	require.NoError(t, err)
	assert.Equal(t, `{"favorite":true}`, string(data))
}

func TestAdapterQuotaExceededLatches(t *testing.T) {
	local := &fullStore{}
	a := NewAdapter(nil, local) // offline, every write hits the local store
	ctx := context.Background()

	err := a.Write(ctx, "users/1", setDoc(`{"v":1}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindQuotaExceeded, apperrors.KindOf(err))
	assert.Equal(t, 1, local.writes)

	// further writes this session are refused without touching the store
	err = a.Write(ctx, "users/2", setDoc(`{"v":2}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindQuotaExceeded, apperrors.KindOf(err))
	assert.Equal(t, 1, local.writes)
}

func TestAdapterQuotaExceededFromMirror(t *testing.T) {
	remote := NewMemStore()
	local := &fullStore{}
	a := NewAdapter(remote, local)
	ctx := context.Background()

	// the remote write itself succeeds, only the mirror hits the quota
	require.NoError(t, a.Write(ctx, "users/1", setDoc(`{"v":1}`)))

	err := a.Write(ctx, "users/2", setDoc(`{"v":2}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindQuotaExceeded, apperrors.KindOf(err))
}

func TestAdapterReadAnyFindsLocalOnlyDocument(t *testing.T) {
	remote := NewMemStore()
	local := NewMemStore()
	a := NewAdapter(remote, local)
	ctx := context.Background()

	// document only reached the local store, e.g. written while degraded
	require.NoError(t, local.Write(ctx, "accounts/a", setDoc(`{"v":1}`)))

	_, err := a.Read(ctx, "accounts/a")
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := a.ReadAny(ctx, "accounts/a")
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(data))
}
