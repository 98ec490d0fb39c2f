package schedule

import "context"

// Outcome is the single value delivered by Go.
type Outcome struct {
	Result *Result
	Err    error
}

func (o Outcome) Success() bool { return o.Err == nil }

// Go runs op on its own goroutine and delivers exactly one Outcome. The
// channel is buffered, so a caller that stops listening does not leak the
// goroutine. A write already in flight is not rolled back when ctx ends.
func Go(ctx context.Context, op func(context.Context) (*Result, error)) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := op(ctx)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}
