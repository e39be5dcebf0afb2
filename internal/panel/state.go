// Package panel implements the interactive TWS status panel and the plain
// renderings shared with the one-shot commands.
package panel

import (
	"errors"

	"github.com/musher-dev/twsdash/internal/client"
)

// Probe holds the latest outcome of one kind of backend request.
//
// Result and Err are never both set. Every Begin issues a new sequence
// number, and only the resolution carrying the latest one is applied, so a
// slow superseded request cannot overwrite a fresher outcome.
type Probe[T any] struct {
	Result  *T
	Err     *client.APIError
	Loading bool

	seq uint64
}

// Begin marks the probe in flight, clears the previous error, and returns
// the sequence number the resolution must carry. The previous result stays
// visible until the new one arrives.
func (p *Probe[T]) Begin() uint64 {
	p.seq++
	p.Loading = true
	p.Err = nil

	return p.seq
}

// Resolve applies the outcome of request seq. It reports false, leaving the
// probe untouched, when seq has been superseded by a later Begin. A nil
// result without an error is recorded as an "Unexpected Error".
func (p *Probe[T]) Resolve(seq uint64, result *T, err error) bool {
	if seq != p.seq || !p.Loading {
		return false
	}

	p.Loading = false

	if err == nil && result == nil {
		err = errors.New("backend returned neither a result nor an error")
	}

	if err != nil {
		p.Result = nil
		p.Err = client.AsAPIError(err)

		return true
	}

	p.Result = result
	p.Err = nil

	return true
}

// Seq returns the most recently issued sequence number.
func (p *Probe[T]) Seq() uint64 {
	return p.seq
}

// State is everything the panel displays. It lives as long as the panel.
type State struct {
	Time       Probe[client.TimeResult]
	Connection Probe[client.ConnectionStatus]
}

// CanRequestTime reports whether the time control is enabled.
func (s State) CanRequestTime() bool {
	return !s.Time.Loading
}

// ResultKind names which of the result panels is shown.
type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultTimeSuccess
	ResultGatewayFailure
	ResultClientError
)

// ResultPanel picks the single result panel to show, in priority order.
func (s State) ResultPanel() ResultKind {
	switch {
	case s.Time.Result != nil && s.Time.Result.Success:
		return ResultTimeSuccess
	case s.Time.Result != nil:
		return ResultGatewayFailure
	case s.Time.Err != nil:
		return ResultClientError
	default:
		return ResultNone
	}
}
