package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLoginSucceeded = "auth.login.succeeded"
	EventTypeLoginFailed    = "auth.login.failed"
	EventTypeUserRegistered = "auth.user.registered"
	EventTypeLogout         = "auth.logout"
)

var AuthEventTypes = []string{
	EventTypeLoginSucceeded,
	EventTypeLoginFailed,
	EventTypeUserRegistered,
	EventTypeLogout,
}

// Login failure reasons carried by LoginFailedEvent.
const (
	ReasonValidation         = "validation"
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonAccountDisabled    = "account_disabled"
)

func newBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

type LoginSucceededEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func NewLoginSucceededEvent(userID, email, role string) *LoginSucceededEvent {
	return &LoginSucceededEvent{
		BaseEvent: newBaseEvent(EventTypeLoginSucceeded),
		UserID:    userID,
		Email:     email,
		Role:      role,
	}
}

type LoginFailedEvent struct {
	BaseEvent
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

func NewLoginFailedEvent(email, reason string) *LoginFailedEvent {
	return &LoginFailedEvent{
		BaseEvent: newBaseEvent(EventTypeLoginFailed),
		Email:     email,
		Reason:    reason,
	}
}

type UserRegisteredEvent struct {
	BaseEvent
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

func NewUserRegisteredEvent(userID, email, department string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent:  newBaseEvent(EventTypeUserRegistered),
		UserID:     userID,
		Email:      email,
		Department: department,
	}
}

type LogoutEvent struct {
	BaseEvent
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
}

func NewLogoutEvent(userID, tokenID string) *LogoutEvent {
	return &LogoutEvent{
		BaseEvent: newBaseEvent(EventTypeLogout),
		UserID:    userID,
		TokenID:   tokenID,
	}
}
