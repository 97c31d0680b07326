package tracker

import (
	"time"

	"go.uber.org/zap"
)

// MatchState is the lifecycle state of the tracked match.
type MatchState int

const (
	StateInMenu MatchState = iota
	StateStarting
	StateInProgress
	StateEnded
)

var matchStateNames = map[MatchState]string{
	StateInMenu:     "IN_MENU",
	StateStarting:   "STARTING",
	StateInProgress: "IN_PROGRESS",
	StateEnded:      "ENDED",
}

func (s MatchState) String() string {
	if name, ok := matchStateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// MatchStats is the immutable end-of-match statistics snapshot, computed
// exactly once per Ended transition.
type MatchStats struct {
	Result    Result
	Conceded  bool
	Duration  time.Duration
	Turns     int
	Format    Format
	Mode      GameMode
	MatchInfo *MatchInfo // nil when never became available

	LocalHeroCardID    string
	OpponentHeroCardID string
	PlayedCards        []PlayedCard
	EndedAt            time.Time
}

// handleGameStart processes a "game start" fact: InMenu -> Starting ->
// InProgress, with duplicate suppression inside the debounce window and a
// synthesized end for single-player matches that never logged one.
func (e *Engine) handleGameStart(ts time.Time) {
	e.mu.Lock()

	if !e.lastStart.IsZero() && ts.Sub(e.lastStart) < e.cfg.StartDebounce {
		e.mu.Unlock()
		e.logger.Debug("duplicate game start suppressed",
			zap.Duration("since_last", ts.Sub(e.lastStart)))
		return
	}

	var synthStats *MatchStats
	if e.state == StateInProgress {
		mode, ok := e.game.Metadata().GameMode()
		if ok && mode.IsSinglePlayer() {
			// Single-player modes can be abandoned without an end fact.
			// Close the old match out so its statistics are not lost.
			e.logger.Info("synthesizing end for abandoned single-player match")
			synthStats = e.synthesizeEndLocked(ts)
		} else {
			e.logger.Debug("game start while match in progress, treating as restart")
		}
	}

	e.lastStart = ts
	e.state = StateStarting
	e.logger.Info("match starting")

	e.resetLocked()

	e.state = StateInProgress
	e.startedAt = ts
	game := e.game
	e.mu.Unlock()

	if synthStats != nil && e.stats != nil {
		e.stats.MatchEnded(*synthStats)
	}
	if e.watcher != nil {
		e.watcher.Reset()
	}

	// The gate may open immediately: battlegrounds has no mulligan phase.
	e.checkMulliganGate(game)
	e.refresher.RequestReset()
}

// resetLocked replaces the per-match context so the new match never observes
// stale state. Caller holds e.mu.
func (e *Engine) resetLocked() {
	if e.game != nil {
		e.game.Close()
	}
	// The drain callback is bound to this specific context; a stale
	// sequencer can then never reach a newer match's state.
	var game *Game
	game = NewGame(e.cfg.Provider, func(pt PlayerTurn, last bool) {
		e.handleTurnStart(game, pt, last)
	}, e.logger)
	e.wireGame(game)
	e.game = game
	e.statsHandled = false
	e.conceded = false
	e.logger.Info("per-match state reset", zap.String("epoch", game.Epoch.String()))
}

// handleGameEnd processes a "game end" fact: InProgress -> Ended, computing
// the statistics snapshot exactly once.
func (e *Engine) handleGameEnd(ts time.Time) {
	e.mu.Lock()

	if e.state == StateEnded {
		e.mu.Unlock()
		e.logger.Warn("duplicate game end ignored")
		return
	}
	if e.state != StateInProgress {
		e.mu.Unlock()
		e.logger.Debug("game end in incompatible state dropped",
			zap.Stringer("state", e.state))
		return
	}

	e.state = StateEnded
	e.endedAt = ts

	var stats *MatchStats
	if !e.statsHandled {
		e.statsHandled = true
		s := e.buildStatsLocked(ts)
		stats = &s
	}
	e.mu.Unlock()

	e.logger.Info("match ended")
	if stats != nil && e.stats != nil {
		e.stats.MatchEnded(*stats)
	}
	e.refresher.Request()
}

// handleEnteredMenu processes an "entered menu" fact. Idempotent.
func (e *Engine) handleEnteredMenu() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateInMenu {
		return
	}
	e.state = StateInMenu
	e.logger.Info("entered menu")
}

// synthesizeEndLocked injects the concede -> loss -> end sequence for a
// match that will never log its own end. Caller holds e.mu; the returned
// stats must be delivered after the lock is released.
func (e *Engine) synthesizeEndLocked(ts time.Time) *MatchStats {
	if pid := e.game.Player(SidePlayer).EntityID(); pid != 0 {
		e.game.Ledger().SetTag(pid, TagPlayState, PlayStateConceded)
		e.game.Ledger().SetTag(pid, TagPlayState, PlayStateLost)
	}
	e.conceded = true
	e.state = StateEnded
	if e.statsHandled {
		return nil
	}
	e.statsHandled = true
	stats := e.buildStatsLocked(ts)
	return &stats
}

// buildStatsLocked computes the end-of-match snapshot. Caller holds e.mu.
func (e *Engine) buildStatsLocked(ts time.Time) MatchStats {
	g := e.game

	stats := MatchStats{
		Result:      ResultUnknown,
		Conceded:    e.conceded,
		Turns:       e.currentTurnFor(g),
		PlayedCards: g.Ledger().PlayedCards(),
		EndedAt:     ts,
	}
	if !e.startedAt.IsZero() {
		stats.Duration = ts.Sub(e.startedAt)
	}

	if pid := g.Player(SidePlayer).EntityID(); pid != 0 {
		if ent, ok := g.Ledger().Entity(pid); ok {
			switch ent.Tag(TagPlayState) {
			case PlayStateWon:
				stats.Result = ResultWin
			case PlayStateLost:
				stats.Result = ResultLoss
			case PlayStateTied:
				stats.Result = ResultTie
			case PlayStateConceded:
				stats.Result = ResultLoss
				stats.Conceded = true
			}
		}
	}

	if hid := g.Player(SidePlayer).HeroEntityID(); hid != 0 {
		if hero, ok := g.Ledger().Entity(hid); ok {
			stats.LocalHeroCardID = hero.CardID
		}
	}
	if hid := g.Player(SideOpponent).HeroEntityID(); hid != 0 {
		if hero, ok := g.Ledger().Entity(hid); ok {
			stats.OpponentHeroCardID = hero.CardID
		}
	}

	if mode, ok := g.Metadata().GameMode(); ok {
		stats.Mode = mode
	}
	if mi, ok := g.Metadata().MatchInfo(); ok {
		stats.MatchInfo = &mi
		stats.Format = mi.Format
	}

	return stats
}
