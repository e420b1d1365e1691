package entity

import "time"

// Phase is the lifecycle stage of a remote resource.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// FetchState is the loading/error/data triple for the coin market list.
//
// After a fetch settles it is either an error with stale (possibly empty)
// coins, or fresh coins with no error.
type FetchState struct {
	Coins     []CoinSummary
	Loading   bool
	Err       string
	Currency  Currency
	UpdatedAt time.Time // time of the last successful fetch
}

// Phase derives the lifecycle stage from the state.
func (s FetchState) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Err != "":
		return PhaseError
	case !s.UpdatedAt.IsZero():
		return PhaseSuccess
	default:
		return PhaseIdle
	}
}

// Clone returns a copy whose Coins slice does not alias the receiver's.
func (s FetchState) Clone() FetchState {
	out := s
	if s.Coins != nil {
		out.Coins = make([]CoinSummary, len(s.Coins))
		copy(out.Coins, s.Coins)
	}
	return out
}
