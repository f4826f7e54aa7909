package alerts

import "time"

// DeliveryResult is the outcome of one observer's attempt on one channel.
// Results are never mutated after creation; a retry appends a fresh set to
// the alert's history instead of editing old ones.
type DeliveryResult struct {
	Channel  Channel           `json:"channel"`
	Success  bool              `json:"success"`
	Error    string            `json:"error,omitempty"`
	SentAt   *time.Time        `json:"sent_at,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Succeeded builds a successful result for the given channel stamped with the
// wall clock. Observers that carry their own clock should use SucceededAt so
// the result timestamp follows the same time source as the rest of their
// decisions.
func Succeeded(ch Channel, metadata map[string]string) DeliveryResult {
	return SucceededAt(ch, time.Now(), metadata)
}

// SucceededAt builds a successful result for the given channel stamped with
// the caller-provided time. Optional metadata pairs (provider message id,
// recipient count) are carried through to the delivery history.
func SucceededAt(ch Channel, at time.Time, metadata map[string]string) DeliveryResult {
	return DeliveryResult{
		Channel:  ch,
		Success:  true,
		SentAt:   &at,
		Metadata: metadata,
	}
}

// Failed builds a failed result for the given channel with a human-readable
// error description.
func Failed(ch Channel, errMsg string) DeliveryResult {
	return DeliveryResult{
		Channel: ch,
		Error:   errMsg,
	}
}
