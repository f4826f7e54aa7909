package email

import (
	"context"
	"time"

	"github.com/courtflow/alertkit/pkg/async"
)

// BatchResult pairs one message's receipt with its error. Exactly one of
// Receipt/Err is meaningful.
type BatchResult struct {
	Receipt Receipt
	Err     error
}

// SendBatch sends the messages concurrently through the sender and returns
// one result per message, index-aligned with the input. One message's failure
// never affects the others; slow sends are bounded by timeout, after which
// the straggler settles as a timeout error while the rest keep their results.
func SendBatch(ctx context.Context, sender Sender, msgs []Message, timeout time.Duration) []BatchResult {
	futures := make([]*async.Future[Receipt], 0, len(msgs))
	for _, msg := range msgs {
		futures = append(futures, async.Async(ctx, msg, func(ctx context.Context, m Message) (Receipt, error) {
			return sender.Send(ctx, m)
		}))
	}

	receipts, errs := async.SettleAll(timeout, futures...)

	out := make([]BatchResult, len(msgs))
	for i := range msgs {
		out[i] = BatchResult{Receipt: receipts[i], Err: errs[i]}
	}
	return out
}
