// Package challenge implements one-time passcode challenges gating
// registration and password reset.
package challenge

import "time"

type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePasswordReset Purpose = "password-reset"
)

const (
	CHALLENGE_TTL          = 10 * time.Minute
	CHALLENGE_MAX_ATTEMPTS = 3
	CHALLENGE_CODE_LENGTH  = 6
)

// Challenge is a single one-time passcode record. One live challenge per
// (email, purpose); issuing a new one replaces any prior record.
type Challenge struct {
	Email        string    `json:"email"`
	Code         string    `json:"code"`
	Purpose      Purpose   `json:"purpose"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
	AttemptsUsed int       `json:"attemptsUsed"`
	AttemptsMax  int       `json:"attemptsMax"`
	Consumed     bool      `json:"consumed"`
}

type VerifyStatus int

const (
	StatusNotFound VerifyStatus = iota
	StatusVerified
	StatusInvalidCode
	StatusExpired
	StatusTooManyAttempts
)

func (s VerifyStatus) String() string {
	switch s {
	case StatusVerified:
		return "verified"
	case StatusInvalidCode:
		return "invalid code"
	case StatusExpired:
		return "expired"
	case StatusTooManyAttempts:
		return "too many attempts"
	default:
		return "not found"
	}
}

// VerifyResult carries the outcome of one verification attempt.
// RemainingAttempts is meaningful only for StatusInvalidCode.
type VerifyResult struct {
	Status            VerifyStatus
	RemainingAttempts int
}
