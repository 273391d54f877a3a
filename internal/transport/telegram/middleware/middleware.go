package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

// Logger assigns a rqID to every update and logs its duration.
func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			now := time.Now()

			rqID := uuid.NewString()
			c.Set("rqID", rqID)

			attrs := []any{slog.String("rqID", rqID)}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chatID", chat.ID))
			}
			if cb := c.Callback(); cb != nil {
				attrs = append(attrs, slog.String("callback", cb.Unique+cb.Data))
			} else if c.Message() != nil {
				attrs = append(attrs, slog.String("text", c.Text()))
			}

			slog.Info("start request", attrs...)

			err := next(c)

			slog.Info(
				"request finished",
				slog.String("rqID", rqID),
				slog.Duration("duration", time.Since(now)),
				slog.Bool("failed", err != nil),
			)

			return err
		}
	}
}
