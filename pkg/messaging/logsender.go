package messaging

import (
	"context"
	"log/slog"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/utils"
)

// LogCodeSender writes codes to the application log instead of sending
// them out. Meant for local development setups without an SMTP server.
type LogCodeSender struct{}

func (LogCodeSender) Send(ctx context.Context, address string, payload CodePayload) error {
	slog.Info("verification code generated",
		slog.String("to", utils.BlurEmailAddress(address)),
		slog.String("purpose", string(payload.Purpose)),
		slog.String("code", payload.Code),
	)
	return nil
}
