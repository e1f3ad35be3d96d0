package types

import (
	"time"
)

const (
	AUTH_TYPE_PASSWORD = "password"
	AUTH_TYPE_EXTERNAL = "external"
)

// Account is the durable identity record for one registered email
// address.
type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`

	AuthType         string `json:"authType"`
	Password         string `json:"password,omitempty"`
	ExternalProvider string `json:"externalProvider,omitempty"`

	EmailVerified bool `json:"emailVerified"`

	Timestamps Timestamps `json:"timestamps"`
}

type Timestamps struct {
	CreatedAt          int64 `json:"createdAt"`
	UpdatedAt          int64 `json:"updatedAt"`
	LastLogin          int64 `json:"lastLogin"`
	LastPasswordChange int64 `json:"lastPasswordChange"`
}

func (a Account) UsesExternalProvider() bool {
	return a.AuthType == AUTH_TYPE_EXTERNAL
}

func (a *Account) Touch(now time.Time) {
	a.Timestamps.UpdatedAt = now.Unix()
}

// AccountIndexEntry is the lightweight lookup record kept next to the
// full account document, so existence checks stay cheap on the local
// store as well.
type AccountIndexEntry struct {
	AccountID string `json:"accountID"`
	Email     string `json:"email"`
	AuthType  string `json:"authType"`
	Provider  string `json:"provider,omitempty"`
}

// Session describes one authenticated account on this device.
type Session struct {
	ID          string `json:"id"`
	AccountID   string `json:"accountID"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	// Provider is the external sign-in provider, or "password"
	Provider string `json:"provider"`
	IssuedAt int64  `json:"issuedAt"`
}
