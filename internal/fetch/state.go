package fetch

import "time"

// Phase is where a single request sits in its retry lifecycle.
type Phase int

const (
	Pending Phase = iota
	Retrying
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Retrying:
		return "retrying"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// RequestState is the retry state of one URL. Attempt counts finished attempts;
// Delay is the wait before the next attempt while Retrying.
type RequestState struct {
	Phase   Phase
	Attempt int
	Delay   time.Duration
}

// Terminal reports whether no further attempt will be made.
func (s RequestState) Terminal() bool {
	return s.Phase == Succeeded || s.Phase == Failed
}

// Next applies the outcome of one attempt.
func (s RequestState) Next(ok bool, maxAttempts int, b Backoff) RequestState {
	if s.Terminal() {
		return s
	}
	attempt := s.Attempt + 1
	switch {
	case ok:
		return RequestState{Phase: Succeeded, Attempt: attempt}
	case attempt >= maxAttempts:
		return RequestState{Phase: Failed, Attempt: attempt}
	default:
		return RequestState{Phase: Retrying, Attempt: attempt, Delay: b.Delay(attempt, s.Delay)}
	}
}
