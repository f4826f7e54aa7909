package channels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtflow/alertkit/pkg/alerts"
)

func TestRenderEmailBody_TypeOverride(t *testing.T) {
	t.Parallel()

	amount := 24.50
	body, err := renderEmailBody(alerts.Alert{
		Type:     alerts.TypePaymentConfirmed,
		Title:    "Payment received",
		Message:  "Thanks for your payment.",
		Metadata: alerts.Metadata{Amount: &amount, Currency: "EUR"},
	}, alerts.Recipient{Name: "Ana"})

	require.NoError(t, err)
	assert.Contains(t, body, "Payment received")
	assert.Contains(t, body, "Hi Ana,")
	assert.Contains(t, body, "24.50 EUR")
}

func TestRenderEmailBody_DefaultFallback(t *testing.T) {
	t.Parallel()

	body, err := renderEmailBody(alerts.Alert{
		Type:    alerts.TypeCustom,
		Title:   "Heads up",
		Message: "The club closes early today.",
	}, alerts.Recipient{})

	require.NoError(t, err)
	assert.Contains(t, body, "Heads up")
	assert.Contains(t, body, "The club closes early today.")
	assert.NotContains(t, body, "Hi ,")
}

func TestRenderEmailBody_EscapesHTML(t *testing.T) {
	t.Parallel()

	body, err := renderEmailBody(alerts.Alert{
		Type:    alerts.TypeCustom,
		Title:   "x",
		Message: `<script>alert("x")</script>`,
	}, alerts.Recipient{})

	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}
