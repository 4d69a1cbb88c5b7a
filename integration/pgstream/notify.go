package pgstream

import (
	"context"
	"errors"
	"regexp"
)

// channelPattern matches valid notification channel names: an unquoted
// PostgreSQL identifier of at most 63 bytes.
var channelPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,62}$`)

// Notification is one LISTEN/NOTIFY message observed on a channel. PID
// identifies the notifying backend.
type Notification struct {
	PID     uint32 `json:"pid"`
	Channel string `json:"channel"`
	Payload string `json:"payload"`
}

// Notify publishes payload on the given notification channel. The channel
// name is validated rather than interpolated, and payload travels as a bind
// parameter, so untrusted input cannot reach the SQL text. Works through a
// pool or an open transaction; in the latter case the notification is sent
// only when the transaction commits.
func Notify(ctx context.Context, db Execer, channel, payload string) error {
	if !channelPattern.MatchString(channel) {
		return ErrInvalidChannel
	}
	if _, err := db.Exec(ctx, "SELECT pg_notify($1, $2)", channel, payload); err != nil {
		return errors.Join(ErrNotifyFailed, err)
	}
	return nil
}
