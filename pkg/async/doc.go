// Package async provides small, generic helpers for running computations
// concurrently and collecting their outcomes.
//
// The package is centred around the generic Future type, obtained from Async,
// which starts the supplied function in its own goroutine and returns
// immediately. A caller can block with Await, bound the wait with
// AwaitWithTimeout, or poll with IsComplete.
//
// SettleAll coordinates a set of futures under a single shared deadline and
// never short-circuits: every future gets an index-aligned result and error,
// so one slow or failing task cannot hide the outcome of another. This is the
// primitive fan-out dispatch is built on.
//
// # Usage
//
//	futures := make([]*async.Future[string], 0, len(jobs))
//	for _, job := range jobs {
//	    futures = append(futures, async.Async(ctx, job, process))
//	}
//	results, errs := async.SettleAll(15*time.Second, futures...)
package async
