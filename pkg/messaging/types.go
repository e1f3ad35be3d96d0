package messaging

import (
	"context"
	"time"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/challenge"
)

// CodePayload carries everything a delivery channel needs to render a
// verification code message.
type CodePayload struct {
	Code      string
	Purpose   challenge.Purpose
	ExpiresAt time.Time
}

// CodeSender delivers a verification code to an address.
type CodeSender interface {
	Send(ctx context.Context, address string, payload CodePayload) error
}

type HeaderOverrides struct {
	From      string   `json:"from"`
	Sender    string   `json:"sender"`
	ReplyTo   []string `json:"replyTo"`
	NoReplyTo bool     `json:"noReplyTo"`
}
