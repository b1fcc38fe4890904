package model

import "time"

// NotificationType enumerates promotional notice kinds.
type NotificationType string

const (
	NotificationPromotion NotificationType = "promotion"
	NotificationFlashSale NotificationType = "flash_sale"
	NotificationBirthday  NotificationType = "birthday"
	NotificationSpecial   NotificationType = "special"
	NotificationCustom    NotificationType = "custom"
)

// NotificationTypes lists every accepted type, in display order.
var NotificationTypes = []NotificationType{
	NotificationPromotion,
	NotificationFlashSale,
	NotificationBirthday,
	NotificationSpecial,
	NotificationCustom,
}

// Valid reports whether t is one of the known types.
func (t NotificationType) Valid() bool {
	for _, known := range NotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ClaimState is the client-observed projection of a notification.
// It is derived from timestamps and counters and never stored.
type ClaimState string

const (
	StateActive    ClaimState = "active"
	StateUpcoming  ClaimState = "upcoming"
	StateClaimed   ClaimState = "claimed"
	StateExpired   ClaimState = "expired"
	StateExhausted ClaimState = "exhausted"
)

// Notification is a time-boxed promotional notice as seen by one member.
type Notification struct {
	ID              int64            `json:"id"`
	Type            NotificationType `json:"type"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	HowToUse        string           `json:"how_to_use,omitempty"`
	Banner          string           `json:"banner,omitempty"`
	StartsAt        *time.Time       `json:"starts_at"`
	EndsAt          *time.Time       `json:"ends_at"`
	MaxClaims       *int             `json:"max_claims"`
	RemainingClaims *int             `json:"remaining_claims"`
	IsRead          bool             `json:"is_read"`
	IsClaimed       bool             `json:"is_claimed"`
	ClaimCode       string           `json:"claim_code,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Expired reports whether the active window closed before now.
func (n *Notification) Expired(now time.Time) bool {
	return n.EndsAt != nil && n.EndsAt.Before(now)
}

// Upcoming reports whether the active window has not opened yet.
func (n *Notification) Upcoming(now time.Time) bool {
	return n.StartsAt != nil && now.Before(*n.StartsAt)
}

// Exhausted reports whether the claim quota is used up.
// A null remaining count means unlimited.
func (n *Notification) Exhausted() bool {
	return n.RemainingClaims != nil && *n.RemainingClaims <= 0
}

// Claimable is the eligibility rule the claim button is bound to.
func (n *Notification) Claimable(now time.Time) bool {
	return !n.IsClaimed && !n.Expired(now) && !n.Exhausted() && !n.Upcoming(now)
}

// State projects the notification onto the claim state machine.
// Claimed wins over every derived state since it is terminal.
func (n *Notification) State(now time.Time) ClaimState {
	switch {
	case n.IsClaimed:
		return StateClaimed
	case n.Expired(now):
		return StateExpired
	case n.Exhausted():
		return StateExhausted
	case n.Upcoming(now):
		return StateUpcoming
	default:
		return StateActive
	}
}

// NotificationListResponse is the API response DTO for GET /api/member/notifications
type NotificationListResponse struct {
	Items       []Notification `json:"items"`
	UnreadCount int            `json:"unread_count"`
}

// ListNotificationsQuery filters the notification list.
type ListNotificationsQuery struct {
	Type string `query:"type" validate:"omitempty,notificationtype"`
}

// ClaimRequest is the DTO for claiming a promotion
type ClaimRequest struct {
	ID *int64 `json:"id" validate:"required,gte=1"`
}

// ClaimResponse is returned by the claim endpoint on success and on rejection.
type ClaimResponse struct {
	Success   bool   `json:"success"`
	ClaimCode string `json:"claim_code,omitempty"`
	Message   string `json:"message,omitempty"`
}
