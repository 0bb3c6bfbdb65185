package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	LoginSucceededEvent = "auth.login_succeeded"
	LoginFailedEvent    = "auth.login_failed"
	// LoginDeniedEvent fires when the email resolves to no account. No audit
	// row is written in that case, so this event is the only trace of the
	// attempt available to security monitoring.
	LoginDeniedEvent = "auth.login_denied"
)

func NewLoginSucceeded(userID int64, email, ip string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      LoginSucceededEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
			"ip":      ip,
		},
	}
}

func NewLoginFailed(userID int64, email, ip string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      LoginFailedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
			"ip":      ip,
		},
	}
}

func NewLoginDenied(email, ip string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      LoginDeniedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"email": email,
			"ip":    ip,
		},
	}
}
