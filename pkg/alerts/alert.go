package alerts

import (
	"slices"
	"time"
)

// Channel is a transport family through which an alert may be delivered.
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelPush    Channel = "push"
	ChannelInApp   Channel = "in_app"
	ChannelBrowser Channel = "browser"
)

// Severity classifies how urgent an alert is. Channel observers derive
// presentation details (sound, style, display duration) from it.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Type is the closed set of domain event kinds an alert can describe.
type Type string

const (
	TypeReservationConfirmed Type = "reservation_confirmed"
	TypeReservationCancelled Type = "reservation_cancelled"
	TypeReservationReminder  Type = "reservation_reminder"
	TypePaymentConfirmed     Type = "payment_confirmed"
	TypePaymentFailed        Type = "payment_failed"
	TypeSlotReleased         Type = "slot_released"
	TypeChallengeCreated     Type = "challenge_created"
	TypeChallengeAccepted    Type = "challenge_accepted"
	TypeChallengeRejected    Type = "challenge_rejected"
	TypeSystemMaintenance    Type = "system_maintenance"
	TypeAccountUpdate        Type = "account_update"
	TypeCustom               Type = "custom"
)

// Metadata carries domain references consumed by channel-specific rendering.
// All fields are optional; observers read only what their channel needs.
type Metadata struct {
	ReservationID string     `json:"reservation_id,omitempty"`
	CourtID       string     `json:"court_id,omitempty"`
	ClubID        string     `json:"club_id,omitempty"`
	ChallengeID   string     `json:"challenge_id,omitempty"`
	ActionURL     string     `json:"action_url,omitempty"`
	Amount        *float64   `json:"amount,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Preferences holds a recipient's delivery preferences. A nil Preferences
// means no restrictions.
type Preferences struct {
	AllowedChannels []Channel `json:"allowed_channels,omitempty"` // empty = all channels
	EnabledTypes    []Type    `json:"enabled_types,omitempty"`    // empty = all types
	QuietHoursStart string    `json:"quiet_hours_start,omitempty"` // "22:00"
	QuietHoursEnd   string    `json:"quiet_hours_end,omitempty"`   // "07:00"
}

// Recipient is a target user plus the transport addresses needed to reach
// them on each channel.
type Recipient struct {
	UserID      string       `json:"user_id"`
	Name        string       `json:"name,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	PushToken   string       `json:"push_token,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// CanReceive reports whether the recipient's preferences allow delivery on
// the given channel.
func (r Recipient) CanReceive(ch Channel) bool {
	if r.Preferences == nil || len(r.Preferences.AllowedChannels) == 0 {
		return true
	}
	return slices.Contains(r.Preferences.AllowedChannels, ch)
}

// WantsType reports whether the recipient's preferences enable alerts of the
// given type.
func (r Recipient) WantsType(t Type) bool {
	if r.Preferences == nil || len(r.Preferences.EnabledTypes) == 0 {
		return true
	}
	return slices.Contains(r.Preferences.EnabledTypes, t)
}

// InQuietHours reports whether now falls inside the recipient's quiet-hours
// window. Windows may cross midnight ("22:00"–"07:00"). Unparseable or
// unset bounds mean no quiet hours.
func (r Recipient) InQuietHours(now time.Time) bool {
	if r.Preferences == nil || r.Preferences.QuietHoursStart == "" || r.Preferences.QuietHoursEnd == "" {
		return false
	}
	start, err := time.Parse("15:04", r.Preferences.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", r.Preferences.QuietHoursEnd)
	if err != nil {
		return false
	}

	cur := now.Hour()*60 + now.Minute()
	s := start.Hour()*60 + start.Minute()
	e := end.Hour()*60 + end.Minute()

	if s <= e {
		return cur >= s && cur < e
	}
	// Window crosses midnight.
	return cur >= s || cur < e
}

// Alert is one notification occurrence together with its delivery state.
// Identity and classification fields are immutable after creation; lifecycle
// fields (Status, SentAt, DeliveredAt, ReadAt, RetryCount) are mutated only
// by the Dispatcher.
type Alert struct {
	ID           string      `json:"id"`
	Type         Type        `json:"type"`
	Severity     Severity    `json:"severity"`
	Title        string      `json:"title"`
	Message      string      `json:"message"`
	Metadata     Metadata    `json:"metadata"`
	Recipients   []Recipient `json:"recipients"`
	Channels     []Channel   `json:"channels"`
	Status       Status      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	ScheduledFor *time.Time  `json:"scheduled_for,omitempty"`
	SentAt       *time.Time  `json:"sent_at,omitempty"`
	DeliveredAt  *time.Time  `json:"delivered_at,omitempty"`
	ReadAt       *time.Time  `json:"read_at,omitempty"`
	RetryCount   int         `json:"retry_count"`
}

// HasChannel reports whether the alert requests delivery on the given channel.
func (a *Alert) HasChannel(ch Channel) bool {
	return slices.Contains(a.Channels, ch)
}

// IsDue reports whether the alert may be handed to observers at the given
// time. Alerts scheduled for the future are not due until that time passes.
func (a *Alert) IsDue(now time.Time) bool {
	if a.ScheduledFor == nil {
		return true
	}
	return !a.ScheduledFor.After(now)
}

// clone returns a deep copy of the alert. Slices and pointer fields get their
// own backing storage, so mutating the copy never reaches the original.
func (a Alert) clone() Alert {
	out := a
	out.Channels = slices.Clone(a.Channels)
	out.Recipients = slices.Clone(a.Recipients)
	for i, r := range out.Recipients {
		if r.Preferences == nil {
			continue
		}
		prefs := *r.Preferences
		prefs.AllowedChannels = slices.Clone(prefs.AllowedChannels)
		prefs.EnabledTypes = slices.Clone(prefs.EnabledTypes)
		out.Recipients[i].Preferences = &prefs
	}
	if a.Metadata.Amount != nil {
		amount := *a.Metadata.Amount
		out.Metadata.Amount = &amount
	}
	out.Metadata.ExpiresAt = cloneTime(a.Metadata.ExpiresAt)
	out.ScheduledFor = cloneTime(a.ScheduledFor)
	out.SentAt = cloneTime(a.SentAt)
	out.DeliveredAt = cloneTime(a.DeliveredAt)
	out.ReadAt = cloneTime(a.ReadAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
