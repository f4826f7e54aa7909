package channels

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/courtflow/alertkit/pkg/alerts"
)

// emailTemplateData is the rendering context for email bodies.
type emailTemplateData struct {
	Alert     alerts.Alert
	Recipient alerts.Recipient
	Year      int
}

const emailBaseLayout = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933; max-width: 600px; margin: 0 auto;">
	<h2 style="color: #0f4c81;">{{.Alert.Title}}</h2>
	{{if .Recipient.Name}}<p>Hi {{.Recipient.Name}},</p>{{end}}
	{{block "body" .}}<p>{{.Alert.Message}}</p>{{end}}
	{{block "details" .}}{{end}}
	{{if .Alert.Metadata.ActionURL}}
	<p><a href="{{.Alert.Metadata.ActionURL}}" style="background: #0f4c81; color: #ffffff; padding: 10px 18px; text-decoration: none; border-radius: 4px;">View details</a></p>
	{{end}}
	<hr style="border: none; border-top: 1px solid #d2d6dc;">
	<p style="font-size: 12px; color: #7b8794;">&copy; {{.Year}} Courtflow. You are receiving this because of activity on your account.</p>
</body>
</html>`

// Per-type overrides. Each defines the "body" and optionally the "details"
// block on top of the base layout; types without an override fall back to
// the base layout alone.
var emailTypeOverrides = map[alerts.Type]string{
	alerts.TypeReservationConfirmed: `
{{define "body"}}<p>{{.Alert.Message}}</p><p>Your reservation is confirmed.</p>{{end}}
{{define "details"}}
{{if .Alert.Metadata.ReservationID}}<p style="color: #52606d;">Reservation: {{.Alert.Metadata.ReservationID}}{{if .Alert.Metadata.CourtID}} &middot; Court: {{.Alert.Metadata.CourtID}}{{end}}</p>{{end}}
{{end}}`,

	alerts.TypeReservationCancelled: `
{{define "body"}}<p>{{.Alert.Message}}</p><p>This reservation has been cancelled. If this was unexpected, contact your club.</p>{{end}}
{{define "details"}}
{{if .Alert.Metadata.ReservationID}}<p style="color: #52606d;">Reservation: {{.Alert.Metadata.ReservationID}}</p>{{end}}
{{end}}`,

	alerts.TypeReservationReminder: `
{{define "body"}}<p>{{.Alert.Message}}</p><p>See you on court soon.</p>{{end}}
{{define "details"}}
{{if .Alert.Metadata.CourtID}}<p style="color: #52606d;">Court: {{.Alert.Metadata.CourtID}}</p>{{end}}
{{end}}`,

	alerts.TypePaymentConfirmed: `
{{define "body"}}<p>{{.Alert.Message}}</p>{{end}}
{{define "details"}}
{{if .Alert.Metadata.Amount}}<p style="color: #52606d;">Amount: {{printf "%.2f" (deref .Alert.Metadata.Amount)}} {{.Alert.Metadata.Currency}}</p>{{end}}
{{end}}`,

	alerts.TypeSlotReleased: `
{{define "body"}}<p>{{.Alert.Message}}</p><p>Slots go fast; book before someone else does.</p>{{end}}
{{define "details"}}
{{if .Alert.Metadata.ExpiresAt}}<p style="color: #52606d;">Available until {{formatTime .Alert.Metadata.ExpiresAt}}</p>{{end}}
{{end}}`,

	alerts.TypeChallengeCreated: `
{{define "body"}}<p>{{.Alert.Message}}</p><p>Accept or decline from the app.</p>{{end}}
{{define "details"}}
{{if .Alert.Metadata.ChallengeID}}<p style="color: #52606d;">Challenge: {{.Alert.Metadata.ChallengeID}}</p>{{end}}
{{end}}`,
}

var emailFuncs = template.FuncMap{
	"deref": func(f *float64) float64 {
		if f == nil {
			return 0
		}
		return *f
	},
	"formatTime": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("Mon, 2 Jan 15:04")
	},
}

var emailTemplates = buildEmailTemplates()

func buildEmailTemplates() map[alerts.Type]*template.Template {
	out := make(map[alerts.Type]*template.Template, len(emailTypeOverrides)+1)
	out[""] = template.Must(template.New("email").Funcs(emailFuncs).Parse(emailBaseLayout))
	for typ, override := range emailTypeOverrides {
		tmpl := template.Must(template.New("email").Funcs(emailFuncs).Parse(emailBaseLayout))
		out[typ] = template.Must(tmpl.Parse(override))
	}
	return out
}

// renderEmailBody renders the HTML body for one recipient, falling back to
// the base layout for types without an override.
func renderEmailBody(alert alerts.Alert, recipient alerts.Recipient) (string, error) {
	tmpl, ok := emailTemplates[alert.Type]
	if !ok {
		tmpl = emailTemplates[""]
	}

	var b strings.Builder
	err := tmpl.Execute(&b, emailTemplateData{
		Alert:     alert,
		Recipient: recipient,
		Year:      time.Now().Year(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render email template for type %q: %w", alert.Type, err)
	}
	return b.String(), nil
}
