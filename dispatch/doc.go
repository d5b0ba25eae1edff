// Package dispatch runs blocking units of work on a bounded worker pool and
// delivers their results asynchronously as futures.
//
// # Usage
//
//	d := dispatch.New(4)
//	defer d.Close()
//
//	fut := d.Submit("read_memory", func(ctx context.Context) (any, error) {
//	    return eng.ReadMemory(ctx, addr, typ)
//	})
//	v, err := fut.Wait(ctx)
//
// # Guarantees
//
// No ordering is implied between independently submitted units; callers that
// need serialized access to a shared resource must serialize their own
// submissions (or run the dispatcher with a single worker). A panic or error
// inside the work function is captured and delivered through the future,
// never raised on an unrelated goroutine.
//
// # Timeouts
//
// A per-call timeout (WithTimeout) completes the future with a timeout error
// when it expires. The work function itself cannot be interrupted if it
// ignores its context (the underlying engine may not support interruption),
// so a timed-out call may keep occupying a worker; its eventual result is
// discarded.
//
// # Shutdown
//
// Close stops accepting submissions, lets queued and in-flight work finish,
// and then returns. It never kills running work.
package dispatch
