package tracker

import (
	"sync"

	"go.uber.org/zap"
)

// HandleTurnFunc processes one drained turn start. last is true when no more
// pending items remain in the current drain cycle, which is the only time
// the countdown display should be re-armed.
type HandleTurnFunc func(pt PlayerTurn, last bool)

// TurnSequencer serializes turn-start processing behind mulligan completion
// and de-duplicates redundant turn-start facts. A sequencer belongs to one
// match context and is discarded with it; the gate opens at most once.
type TurnSequencer struct {
	mu         sync.Mutex
	pending    []PlayerTurn
	pendingSet map[PlayerTurn]bool
	lastTurn   map[Side]int

	gate     chan struct{} // closed when the mulligan resolves
	gateOnce sync.Once
	wake     chan struct{}
	done     chan struct{}
	doneOnce sync.Once

	handle HandleTurnFunc
	logger *zap.Logger
}

// NewTurnSequencer creates a sequencer and starts its drain goroutine. The
// goroutine blocks until the mulligan gate opens, then processes pending turn
// starts in first-observed order.
func NewTurnSequencer(handle HandleTurnFunc, logger *zap.Logger) *TurnSequencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TurnSequencer{
		pendingSet: make(map[PlayerTurn]bool),
		lastTurn:   make(map[Side]int),
		gate:       make(chan struct{}),
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		handle:     handle,
		logger:     logger,
	}
	go s.run()
	return s
}

// SignalMulliganDone opens the gate. Safe to call more than once.
func (s *TurnSequencer) SignalMulliganDone() {
	s.gateOnce.Do(func() { close(s.gate) })
}

// MulliganDone reports whether the gate has opened.
func (s *TurnSequencer) MulliganDone() bool {
	select {
	case <-s.gate:
		return true
	default:
		return false
	}
}

// TurnStart queues a turn start for processing. Turn 0 normalizes to 1.
// Duplicates of an already-pending (side, turn) pair collapse, and a turn
// number at or below the side's last recorded turn is dropped outright.
func (s *TurnSequencer) TurnStart(side Side, turn int) {
	if turn == 0 {
		turn = 1
	}
	pt := PlayerTurn{Side: side, Turn: turn}

	s.mu.Lock()
	if turn <= s.lastTurn[side] {
		s.mu.Unlock()
		s.logger.Debug("stale turn start dropped",
			zap.Stringer("side", side), zap.Int("turn", turn))
		return
	}
	if s.pendingSet[pt] {
		s.mu.Unlock()
		s.logger.Debug("duplicate turn start collapsed",
			zap.Stringer("side", side), zap.Int("turn", turn))
		return
	}
	s.pendingSet[pt] = true
	s.pending = append(s.pending, pt)
	s.lastTurn[side] = turn
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// LastTurn returns the highest turn recorded for the side.
func (s *TurnSequencer) LastTurn(side Side) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTurn[side]
}

// Pending returns the number of queued turn starts.
func (s *TurnSequencer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop terminates the drain goroutine. Queued items are abandoned; the
// sequencer's match context is going away with them.
func (s *TurnSequencer) Stop() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *TurnSequencer) run() {
	select {
	case <-s.gate:
	case <-s.done:
		return
	}

	// Items queued before the gate opened drain immediately.
	s.drain()

	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.done:
			return
		}
	}
}

func (s *TurnSequencer) drain() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		pt := s.pending[0]
		s.pending = s.pending[1:]
		delete(s.pendingSet, pt)
		last := len(s.pending) == 0
		s.mu.Unlock()

		if s.handle != nil {
			s.handle(pt, last)
		}
	}
}
