package challenge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/dualstore"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	s := NewStore(dualstore.NewMemStore())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestIssueGeneratesNumericCode(t *testing.T) {
	s, _ := newTestStore(t)
	ch, err := s.Issue(context.Background(), "A@B.com ", PurposeRegistration)
	require.NoError(t, err)

	assert.Len(t, ch.Code, CHALLENGE_CODE_LENGTH)
	for _, r := range ch.Code {
		assert.True(t, r >= '0' && r <= '9', "code must be numeric, got %q", ch.Code)
	}
	assert.Equal(t, "a@b.com", ch.Email)
	assert.Equal(t, ch.CreatedAt.Add(CHALLENGE_TTL), ch.ExpiresAt)
	assert.Equal(t, 0, ch.AttemptsUsed)
	assert.False(t, ch.Consumed)
}

func TestVerifySingleUse(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ch, err := s.Issue(ctx, "a@b.com", PurposeRegistration)
	require.NoError(t, err)

	res, err := s.Verify(ctx, "a@b.com", PurposeRegistration, ch.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, res.Status)

	// replay with the same correct code is rejected
	res, err = s.Verify(ctx, "a@b.com", PurposeRegistration, ch.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, res.Status)
}

func TestVerifyExpiry(t *testing.T) {
	s, now := newTestStore(t)
	ctx := context.Background()

	ch, err := s.Issue(ctx, "a@b.com", PurposeRegistration)
	require.NoError(t, err)

	// one second past expiry, even the correct code is rejected
	*now = ch.ExpiresAt.Add(time.Second)
	res, err := s.Verify(ctx, "a@b.com", PurposeRegistration, ch.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, res.Status)
}

func TestVerifyAttemptBudget(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ch, err := s.Issue(ctx, "a@b.com", PurposeRegistration)
	require.NoError(t, err)

	res, err := s.Verify(ctx, "a@b.com", PurposeRegistration, "wrong1")
	require.NoError(t, err)
	assert.Equal(t, StatusInvalidCode, res.Status)
	assert.Equal(t, 2, res.RemainingAttempts)

	res, err = s.Verify(ctx, "a@b.com", PurposeRegistration, "wrong2")
	require.NoError(t, err)
	assert.Equal(t, StatusInvalidCode, res.Status)
	assert.Equal(t, 1, res.RemainingAttempts)

	res, err = s.Verify(ctx, "a@b.com", PurposeRegistration, "wrong3")
	require.NoError(t, err)
	assert.Equal(t, StatusTooManyAttempts, res.Status)

	// the correct code no longer helps
	res, err = s.Verify(ctx, "a@b.com", PurposeRegistration, ch.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusTooManyAttempts, res.Status)
}

func TestReissueInvalidatesPriorCode(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.Issue(ctx, "a@b.com", PurposeRegistration)
	require.NoError(t, err)
	second, err := s.Issue(ctx, "a@b.com", PurposeRegistration)
	require.NoError(t, err)

	if first.Code != second.Code {
		res, err := s.Verify(ctx, "a@b.com", PurposeRegistration, first.Code)
		require.NoError(t, err)
		assert.Equal(t, StatusInvalidCode, res.Status)
	}

	res, err := s.Verify(ctx, "a@b.com", PurposeRegistration, second.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, res.Status)
}

func TestPurposesAreIndependent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	reg, err := s.Issue(ctx, "a@b.com", PurposeRegistration)
	require.NoError(t, err)
	_, err = s.Issue(ctx, "a@b.com", PurposePasswordReset)
	require.NoError(t, err)

	// registration challenge untouched by the reset issue
	res, err := s.Verify(ctx, "a@b.com", PurposeRegistration, reg.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, res.Status)
}

func TestVerifyUnknownEmail(t *testing.T) {
	s, _ := newTestStore(t)
	res, err := s.Verify(context.Background(), "nobody@b.com", PurposeRegistration, "123456")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, res.Status)
}

func TestTakeVerified(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ch, err := s.Issue(ctx, "a@b.com", PurposeRegistration)
	require.NoError(t, err)

	ok, err := s.TakeVerified(ctx, "a@b.com", PurposeRegistration)
	require.NoError(t, err)
	assert.False(t, ok, "unverified challenge must not be takeable")

	res, err := s.Verify(ctx, "a@b.com", PurposeRegistration, ch.Code)
	require.NoError(t, err)
	require.Equal(t, StatusVerified, res.Status)

	ok, err = s.TakeVerified(ctx, "a@b.com", PurposeRegistration)
	require.NoError(t, err)
	assert.True(t, ok)

	// single use: the record is gone
	ok, err = s.TakeVerified(ctx, "a@b.com", PurposeRegistration)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPurgeExpired(t *testing.T) {
	s, now := newTestStore(t)
	ctx := context.Background()

	_, err := s.Issue(ctx, "old@b.com", PurposeRegistration)
	require.NoError(t, err)

	*now = now.Add(CHALLENGE_TTL + time.Minute)
	fresh, err := s.Issue(ctx, "fresh@b.com", PurposeRegistration)
	require.NoError(t, err)

	purged, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	res, err := s.Verify(ctx, "fresh@b.com", PurposeRegistration, fresh.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, res.Status)
}
