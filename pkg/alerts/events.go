package alerts

import (
	"context"
	"fmt"
	"time"
)

// Façade helpers for the domain events upstream business logic produces.
// Each builds a fixed alert shape (title, message, metadata, channel set)
// and calls CreateAndNotify; producers that need full control call
// CreateAndNotify directly.

// ReservationDetails identifies a court reservation for notification purposes.
type ReservationDetails struct {
	ReservationID string
	CourtID       string
	CourtName     string
	ClubID        string
	StartsAt      time.Time
	ActionURL     string
}

// ReservationConfirmed notifies recipients that their reservation is booked.
func (d *Dispatcher) ReservationConfirmed(ctx context.Context, recipients []Recipient, det ReservationDetails) (*Alert, []DeliveryResult, error) {
	return d.CreateAndNotify(ctx, CreateParams{
		Type:     TypeReservationConfirmed,
		Severity: SeveritySuccess,
		Title:    "Reservation confirmed",
		Message:  fmt.Sprintf("Your reservation for %s on %s is confirmed.", det.CourtName, det.StartsAt.Format("Mon, Jan 2 at 15:04")),
		Metadata: Metadata{
			ReservationID: det.ReservationID,
			CourtID:       det.CourtID,
			ClubID:        det.ClubID,
			ActionURL:     det.ActionURL,
		},
		Recipients: recipients,
		Channels:   []Channel{ChannelEmail, ChannelPush, ChannelInApp},
	})
}

// ReservationCancelled notifies recipients that a reservation was cancelled.
func (d *Dispatcher) ReservationCancelled(ctx context.Context, recipients []Recipient, det ReservationDetails) (*Alert, []DeliveryResult, error) {
	return d.CreateAndNotify(ctx, CreateParams{
		Type:     TypeReservationCancelled,
		Severity: SeverityWarning,
		Title:    "Reservation cancelled",
		Message:  fmt.Sprintf("Your reservation for %s on %s was cancelled.", det.CourtName, det.StartsAt.Format("Mon, Jan 2 at 15:04")),
		Metadata: Metadata{
			ReservationID: det.ReservationID,
			CourtID:       det.CourtID,
			ClubID:        det.ClubID,
			ActionURL:     det.ActionURL,
		},
		Recipients: recipients,
		Channels:   []Channel{ChannelEmail, ChannelPush, ChannelInApp},
	})
}

// ReservationReminder schedules a reminder ahead of the reservation start.
// With a zero lead the reminder goes out immediately.
func (d *Dispatcher) ReservationReminder(ctx context.Context, recipients []Recipient, det ReservationDetails, lead time.Duration) (*Alert, []DeliveryResult, error) {
	params := CreateParams{
		Type:     TypeReservationReminder,
		Severity: SeverityInfo,
		Title:    "Upcoming reservation",
		Message:  fmt.Sprintf("Reminder: %s on %s.", det.CourtName, det.StartsAt.Format("Mon, Jan 2 at 15:04")),
		Metadata: Metadata{
			ReservationID: det.ReservationID,
			CourtID:       det.CourtID,
			ClubID:        det.ClubID,
			ActionURL:     det.ActionURL,
		},
		Recipients: recipients,
		Channels:   []Channel{ChannelPush, ChannelInApp, ChannelBrowser},
	}
	if lead > 0 {
		remindAt := det.StartsAt.Add(-lead)
		params.ScheduledFor = &remindAt
	}
	return d.CreateAndNotify(ctx, params)
}

// PaymentConfirmed notifies recipients that a payment went through.
func (d *Dispatcher) PaymentConfirmed(ctx context.Context, recipients []Recipient, reservationID string, amount float64, currency string) (*Alert, []DeliveryResult, error) {
	return d.CreateAndNotify(ctx, CreateParams{
		Type:     TypePaymentConfirmed,
		Severity: SeveritySuccess,
		Title:    "Payment confirmed",
		Message:  fmt.Sprintf("Your payment of %.2f %s was received.", amount, currency),
		Metadata: Metadata{
			ReservationID: reservationID,
			Amount:        &amount,
			Currency:      currency,
		},
		Recipients: recipients,
		Channels:   []Channel{ChannelEmail, ChannelInApp},
	})
}

// SlotReleased notifies wait-listed recipients that a court slot opened up.
// The offer expires, so the expiry travels in metadata for rendering.
func (d *Dispatcher) SlotReleased(ctx context.Context, recipients []Recipient, det ReservationDetails, expiresAt time.Time) (*Alert, []DeliveryResult, error) {
	return d.CreateAndNotify(ctx, CreateParams{
		Type:     TypeSlotReleased,
		Severity: SeverityInfo,
		Title:    "A slot opened up",
		Message:  fmt.Sprintf("%s is now available on %s. First come, first served.", det.CourtName, det.StartsAt.Format("Mon, Jan 2 at 15:04")),
		Metadata: Metadata{
			CourtID:   det.CourtID,
			ClubID:    det.ClubID,
			ActionURL: det.ActionURL,
			ExpiresAt: &expiresAt,
		},
		Recipients: recipients,
		Channels:   []Channel{ChannelPush, ChannelInApp, ChannelBrowser},
	})
}

// ChallengeCreated notifies the challenged player about a new match challenge.
func (d *Dispatcher) ChallengeCreated(ctx context.Context, recipients []Recipient, challengeID, challengerName, actionURL string) (*Alert, []DeliveryResult, error) {
	return d.CreateAndNotify(ctx, CreateParams{
		Type:     TypeChallengeCreated,
		Severity: SeverityInfo,
		Title:    "New challenge",
		Message:  fmt.Sprintf("%s challenged you to a match.", challengerName),
		Metadata: Metadata{
			ChallengeID: challengeID,
			ActionURL:   actionURL,
		},
		Recipients: recipients,
		Channels:   []Channel{ChannelPush, ChannelInApp, ChannelBrowser},
	})
}
