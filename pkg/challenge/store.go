package challenge

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"time"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/dualstore"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/utils"
)

const codeCharSet = "1234567890"

// Store keeps challenges in a document store under the challenges/ namespace.
// It is device-scoped by design: a code requested on one device is verified
// on the same device.
type Store struct {
	docs dualstore.DocumentStore

	ttl         time.Duration
	attemptsMax int
	codeLength  int
	now         func() time.Time
}

func NewStore(docs dualstore.DocumentStore) *Store {
	return &Store{
		docs:        docs,
		ttl:         CHALLENGE_TTL,
		attemptsMax: CHALLENGE_MAX_ATTEMPTS,
		codeLength:  CHALLENGE_CODE_LENGTH,
		now:         time.Now,
	}
}

func challengePath(email string, purpose Purpose) string {
	return "challenges/" + string(purpose) + "/" + utils.SanitizeEmail(email)
}

// Issue creates a new challenge for (email, purpose), replacing and
// invalidating any prior one.
func (s *Store) Issue(ctx context.Context, email string, purpose Purpose) (Challenge, error) {
	code, err := generateCode(s.codeLength)
	if err != nil {
		return Challenge{}, err
	}

	now := s.now()
	ch := Challenge{
		Email:        utils.SanitizeEmail(email),
		Code:         code,
		Purpose:      purpose,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
		AttemptsUsed: 0,
		AttemptsMax:  s.attemptsMax,
		Consumed:     false,
	}

	err = s.docs.Write(ctx, challengePath(email, purpose), func(cur []byte, found bool) ([]byte, error) {
		return json.Marshal(ch)
	})
	if err != nil {
		return Challenge{}, err
	}
	return ch, nil
}

// Verify checks submittedCode against the live challenge for (email, purpose).
// A wrong code uses up one attempt; the final failed attempt poisons the
// challenge permanently. A match consumes the challenge: a second Verify on
// the same record reports NotFound, never Verified twice.
func (s *Store) Verify(ctx context.Context, email string, purpose Purpose, submittedCode string) (VerifyResult, error) {
	path := challengePath(email, purpose)

	result := VerifyResult{Status: StatusNotFound}
	err := s.docs.Write(ctx, path, func(cur []byte, found bool) ([]byte, error) {
		if !found {
			return nil, errNoChange
		}
		var ch Challenge
		if err := json.Unmarshal(cur, &ch); err != nil {
			return nil, err
		}

		if ch.Consumed {
			result.Status = StatusNotFound
			return nil, errNoChange
		}
		if s.now().After(ch.ExpiresAt) {
			result.Status = StatusExpired
			return nil, errNoChange
		}
		if ch.AttemptsUsed >= ch.AttemptsMax {
			result.Status = StatusTooManyAttempts
			return nil, errNoChange
		}

		if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(submittedCode)) == 1 {
			ch.Consumed = true
			result.Status = StatusVerified
			return json.Marshal(ch)
		}

		ch.AttemptsUsed++
		if ch.AttemptsUsed >= ch.AttemptsMax {
			result.Status = StatusTooManyAttempts
		} else {
			result.Status = StatusInvalidCode
			result.RemainingAttempts = ch.AttemptsMax - ch.AttemptsUsed
		}
		return json.Marshal(ch)
	})
	if err != nil && !errors.Is(err, errNoChange) {
		return VerifyResult{Status: StatusNotFound}, err
	}
	return result, nil
}

// errNoChange aborts a Write from inside the mutator when the stored record
// must stay as it is.
var errNoChange = errors.New("no change")

// HasVerified reports whether a consumed (successfully verified) challenge is
// pending for (email, purpose).
func (s *Store) HasVerified(ctx context.Context, email string, purpose Purpose) (bool, error) {
	data, err := s.docs.Read(ctx, challengePath(email, purpose))
	if err != nil {
		if errors.Is(err, dualstore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	var ch Challenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return false, err
	}
	return ch.Consumed, nil
}

// TakeVerified removes a verified challenge, finalizing its single use.
// Returns false when no verified challenge was pending.
func (s *Store) TakeVerified(ctx context.Context, email string, purpose Purpose) (bool, error) {
	ok, err := s.HasVerified(ctx, email, purpose)
	if err != nil || !ok {
		return false, err
	}
	if err := s.docs.Delete(ctx, challengePath(email, purpose)); err != nil {
		return false, err
	}
	return true, nil
}

// PurgeExpired deletes challenges past their expiry. Used by the cleanup job.
func (s *Store) PurgeExpired(ctx context.Context) (int, error) {
	paths, err := s.docs.List(ctx, "challenges/")
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, path := range paths {
		data, err := s.docs.Read(ctx, path)
		if err != nil {
			continue
		}
		var ch Challenge
		if err := json.Unmarshal(data, &ch); err != nil {
			// unreadable record, drop it
			if err := s.docs.Delete(ctx, path); err == nil {
				purged++
			}
			continue
		}
		if s.now().After(ch.ExpiresAt) {
			if err := s.docs.Delete(ctx, path); err == nil {
				purged++
			}
		}
	}
	return purged, nil
}

// generateCode generates a random numeric code of the given length
func generateCode(length int) (string, error) {
	buffer := make([]byte, length)
	_, err := rand.Read(buffer)
	if err != nil {
		return "", err
	}

	charsetLength := len(codeCharSet)
	for i := 0; i < length; i++ {
		buffer[i] = codeCharSet[int(buffer[i])%charsetLength]
	}
	return string(buffer), nil
}
