package source

import "fmt"

// Selector tracks the source and attempt count of a single chunk. It is not
// safe for concurrent use; each chunk owns its own selector.
type Selector struct {
	strategy Strategy
	budget   int
	current  Kind
	attempts int
	failover bool
}

// NewSelector validates endpoints against the strategy and positions the
// selector on the first source to try. A maxRetries below one allows a
// single attempt per source.
func NewSelector(strategy Strategy, maxRetries int, endpoints Endpoints) (*Selector, error) {
	budget := max(maxRetries, 1)

	s := &Selector{strategy: strategy, budget: budget}

	switch strategy {
	case OfficialOnly:
		if !endpoints.has(Official) {
			return nil, fmt.Errorf("%w: %s needs an official URL", ErrNoEndpoint, strategy)
		}

		s.current = Official
	case MirrorOnly:
		if !endpoints.has(Mirror) {
			return nil, fmt.Errorf("%w: %s needs a mirror URL", ErrNoEndpoint, strategy)
		}

		s.current = Mirror
	case Hybrid:
		switch {
		case endpoints.has(Official):
			s.current = Official
			s.failover = endpoints.has(Mirror)
		case endpoints.has(Mirror):
			s.current = Mirror
		default:
			return nil, fmt.Errorf("%w: %s needs at least one URL", ErrNoEndpoint, strategy)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(strategy))
	}

	return s, nil
}

// Current returns the source the next attempt should target.
func (s *Selector) Current() Kind {
	return s.current
}

// Attempts returns the number of failed attempts on the current source.
func (s *Selector) Attempts() int {
	return s.attempts
}

// Budget returns the attempts allowed per source.
func (s *Selector) Budget() int {
	return s.budget
}

// Fail records a failed attempt on the current source. It returns the source
// for the next attempt and whether the switch moved to a new source. ok is
// false once every applicable source is exhausted.
func (s *Selector) Fail() (next Kind, switched bool, ok bool) {
	s.attempts++
	if s.attempts < s.budget {
		return s.current, false, true
	}

	if s.failover && s.current == Official {
		s.current = Mirror
		s.attempts = 0
		s.failover = false

		return s.current, true, true
	}

	return s.current, false, false
}
