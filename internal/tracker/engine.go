package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hearthsim/hstracker-go/internal/tracker/bgs"
	"github.com/hearthsim/hstracker-go/internal/tracker/secrets"
)

// StatsSink accepts one immutable end-of-match statistics snapshot per match.
type StatsSink interface {
	MatchEnded(stats MatchStats)
}

// ImagePrefetcher warms an external image cache for a card. Purely a
// prefetch optimization; errors are ignored.
type ImagePrefetcher interface {
	Prefetch(cardID string) error
}

// RenderListener is the narrow surface the excluded rendering layer hooks
// into. All calls originate off the fact-delivery path.
type RenderListener interface {
	// Refresh signals that tracked state changed; reset means the match was
	// reset and cached display state must be discarded.
	Refresh(reset bool)
	// TurnCountdown arms the turn timer display.
	TurnCountdown(seconds int)
}

// EngineConfig carries the engine's collaborators and timing knobs. All
// collaborators are optional; absence is a supported state, not an error.
type EngineConfig struct {
	Provider   MetadataProvider
	Watcher    secrets.Watcher
	Stats      StatsSink
	Prefetcher ImagePrefetcher
	Render     RenderListener

	StartDebounce        time.Duration
	RefreshInterval      time.Duration
	SnapshotDelay        time.Duration
	TurnCountdownSeconds int
}

// Default timing knobs.
const (
	DefaultStartDebounce        = 3 * time.Second
	DefaultRefreshInterval      = 500 * time.Millisecond
	DefaultSnapshotDelay        = 300 * time.Millisecond
	DefaultTurnCountdownSeconds = 75
)

func (c *EngineConfig) applyDefaults() {
	if c.StartDebounce <= 0 {
		c.StartDebounce = DefaultStartDebounce
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.SnapshotDelay <= 0 {
		c.SnapshotDelay = DefaultSnapshotDelay
	}
	if c.TurnCountdownSeconds <= 0 {
		c.TurnCountdownSeconds = DefaultTurnCountdownSeconds
	}
}

// Engine reconstructs the hidden state of a match from the ordered fact
// stream. Facts are applied from a single delivery goroutine; queries are
// safe from any goroutine and return copies.
type Engine struct {
	logger *zap.Logger
	cfg    EngineConfig

	mu           sync.RWMutex
	game         *Game
	state        MatchState
	lastStart    time.Time
	startedAt    time.Time
	endedAt      time.Time
	statsHandled bool
	conceded     bool

	watcher   secrets.Watcher
	stats     StatsSink
	prefetch  ImagePrefetcher
	render    RenderListener
	refresher *Refresher
	recorder  *Recorder
}

// NewEngine creates an engine in the InMenu state with a fresh match
// context.
func NewEngine(cfg EngineConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()

	e := &Engine{
		logger:   logger,
		cfg:      cfg,
		state:    StateInMenu,
		watcher:  cfg.Watcher,
		stats:    cfg.Stats,
		prefetch: cfg.Prefetcher,
		render:   cfg.Render,
	}
	e.refresher = NewRefresher(cfg.RefreshInterval, func(reset bool) {
		if e.render != nil {
			e.render.Refresh(reset)
		}
	}, logger.Named("refresher"))

	e.mu.Lock()
	e.resetLocked()
	e.mu.Unlock()
	return e
}

// SetRecorder attaches a fact recorder; every applied fact is appended.
func (e *Engine) SetRecorder(r *Recorder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorder = r
}

// wireGame connects a fresh match context's hooks back to the engine.
// Caller holds e.mu.
func (e *Engine) wireGame(game *Game) {
	game.Ledger().SetNotify(func(op Op, ent *Entity, turn int) {
		e.onLedgerOp(game, op, ent, turn)
	})
	game.Ledger().OnEntitiesChanged = func(diffs []EntityDiff) {
		e.onEntitiesChanged(diffs)
	}
}

// Run consumes the fact source until it is exhausted or the context is
// cancelled.
func (e *Engine) Run(ctx context.Context, source FactSource) error {
	for {
		select {
		case fact, ok := <-source.Facts():
			if !ok {
				return nil
			}
			e.Apply(fact)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// factTypeOps maps zone-transition facts to their ledger operation.
var factTypeOps = map[FactType]Op{
	FactCreateInHand:    OpCreateInHand,
	FactCreateInDeck:    OpCreateInDeck,
	FactCreateInPlay:    OpCreateInPlay,
	FactCreateInSecret:  OpCreateInSecret,
	FactDraw:            OpDraw,
	FactPlay:            OpPlay,
	FactHandToDeck:      OpHandToDeck,
	FactHandToPlay:      OpHandToPlay,
	FactPlayToGraveyard: OpPlayToGraveyard,
	FactPlayToHand:      OpPlayToHand,
	FactPlayToDeck:      OpPlayToDeck,
	FactDeckToGraveyard: OpDeckToGraveyard,
	FactSecretTriggered: OpSecretTriggered,
	FactRemoveFromPlay:  OpRemoveFromPlay,
}

// factTypeCreates lists the ops whose fact also creates the entity when it
// is not yet known. Creation racing ahead of the explicit create fact is
// normal for these.
var factTypeCreates = map[FactType]bool{
	FactCreateInHand:   true,
	FactCreateInDeck:   true,
	FactCreateInPlay:   true,
	FactCreateInSecret: true,
}

// Apply processes one fact. All anomalies degrade to "ignore and continue";
// the fact source is uncontrolled and must never crash reconstruction.
func (e *Engine) Apply(fact Fact) {
	e.mu.RLock()
	rec := e.recorder
	e.mu.RUnlock()
	if rec != nil {
		if err := rec.Record(fact); err != nil {
			e.logger.Warn("fact recording failed", zap.Error(err))
		}
	}

	switch fact.Type {
	case FactGameStart:
		e.handleGameStart(timestampOf(fact))
		return
	case FactGameEnd:
		e.handleGameEnd(timestampOf(fact))
		return
	case FactEnteredMenu:
		e.handleEnteredMenu()
		return
	}

	e.mu.RLock()
	game := e.game
	state := e.state
	e.mu.RUnlock()

	if state != StateInProgress && state != StateStarting {
		e.logger.Debug("fact dropped in incompatible state",
			zap.String("fact", string(fact.Type)), zap.Stringer("state", state))
		return
	}

	switch fact.Type {
	case FactEntityCreated, FactFullEntity:
		e.applyCreate(game, fact)

	case FactEntityUpdated, FactShowEntity, FactChangeEntity:
		game.Ledger().SetCardID(fact.EntityID, fact.CardID, fact.Name)
		e.refresher.Request()

	case FactTagChange:
		e.applyTagChange(game, fact)

	case FactTurnStart:
		// Battlegrounds mode metadata can resolve after the start fact;
		// re-check here so a late-opening gate still drains queued turns.
		e.checkMulliganGate(game)
		game.Sequencer().TurnStart(fact.Side, fact.Turn)

	case FactAttack:
		if e.watcher != nil {
			e.watcher.Attack(e.refOf(game, fact.EntityID), e.refOf(game, fact.TargetID))
		}
	case FactHeroPower:
		if e.watcher != nil {
			e.watcher.HeroPower(int(fact.Side))
		}
	case FactDamage:
		if e.watcher != nil {
			e.watcher.Damage(e.refOf(game, fact.EntityID), e.refOf(game, fact.TargetID), fact.Value)
		}
	case FactArmorLost:
		if e.watcher != nil {
			e.watcher.ArmorLost(e.refOf(game, fact.EntityID), fact.Value)
		}

	default:
		if op, ok := factTypeOps[fact.Type]; ok {
			if factTypeCreates[fact.Type] {
				e.applyCreate(game, fact)
			}
			game.Ledger().Apply(op, fact.EntityID, e.currentTurnFor(game))
			e.refresher.Request()
		} else {
			e.logger.Debug("unhandled fact type", zap.String("fact", string(fact.Type)))
		}
	}
}

// applyCreate inserts the fact's entity if unknown and binds well-known
// entity roles (game entity, player entities, heroes).
func (e *Engine) applyCreate(game *Game, fact Fact) {
	ent := NewEntity(fact.EntityID, fact.CardID)
	ent.Name = fact.Name
	if fact.Value != 0 {
		ent.SetTag(TagCardType, fact.Value)
	}
	if fact.Side != SideNeutral {
		ent.SetTag(TagController, int(fact.Side))
	}
	game.Ledger().Add(ent)

	switch fact.Value {
	case CardTypeGame:
		game.BindGameEntity(fact.EntityID)
	case CardTypePlayer:
		if fact.Side != SideNeutral {
			game.Player(fact.Side).BindEntity(fact.EntityID)
		}
	case CardTypeHero:
		if fact.Side != SideNeutral {
			game.Player(fact.Side).BindHero(fact.EntityID)
		}
	}
	e.refresher.Request()
}

// applyTagChange routes a tag change to its side effects.
func (e *Engine) applyTagChange(game *Game, fact Fact) {
	game.Ledger().SetTag(fact.EntityID, fact.Tag, fact.Value)

	switch fact.Tag {
	case TagMulliganState:
		e.checkMulliganGate(game)

	case TagFatigue:
		if side := e.sideOfEntity(game, fact.EntityID); side != SideNeutral {
			game.Player(side).RecordFatigue(fact.Value)
		}

	case TagPlayState:
		if fact.Value == PlayStateConceded && e.sideOfEntity(game, fact.EntityID) == SidePlayer {
			e.mu.Lock()
			e.conceded = true
			e.mu.Unlock()
		}

	case TagTechLevel:
		if hero, ok := game.Ledger().Entity(fact.EntityID); ok && hero.CardID != "" {
			game.Boards().RecordTechLevel(hero.CardID, fact.Value, e.currentTurnFor(game))
		}

	case TagPlayerTriples:
		if hero, ok := game.Ledger().Entity(fact.EntityID); ok && hero.CardID != "" {
			delta := fact.Value - fact.Previous
			game.Boards().RecordTriples(hero.CardID, hero.Tag(TagTechLevel), delta)
		}

	case TagDefending:
		// The board settles shortly after the defending flag flips; capture
		// it after a short delay rather than blocking the fact path.
		if fact.Value != 0 && e.isBattlegrounds(game) {
			heroID := fact.EntityID
			e.scheduleDelayed(game, e.cfg.SnapshotDelay, func() {
				e.captureBoard(game, heroID)
			})
		}
	}
	e.refresher.Request()
}

// onLedgerOp is the ledger's per-op notification hook.
func (e *Engine) onLedgerOp(game *Game, op Op, ent *Entity, turn int) {
	switch op {
	case OpPlay, OpHandToPlay:
		if ent.Controller() != SideNeutral {
			game.Player(ent.Controller()).CardPlayed()
		}
		if e.watcher != nil {
			e.watcher.CardPlayed(entityRef(ent), turn)
		}
	case OpPlayToGraveyard:
		if ent.IsMinion() && e.watcher != nil {
			e.watcher.MinionDeath(entityRef(ent), turn)
		}
	}
	e.refresher.Request()
}

// onEntitiesChanged forwards bulk-update diffs to the secret watcher.
func (e *Engine) onEntitiesChanged(diffs []EntityDiff) {
	if e.watcher != nil {
		ids := make([]int, len(diffs))
		for i, d := range diffs {
			ids[i] = d.New.ID
		}
		e.watcher.EntitiesChanged(ids)
	}
	e.refresher.Request()
}

// handleTurnStart is the sequencer drain callback. It runs on the sequencer
// goroutine, never on the fact-delivery path.
func (e *Engine) handleTurnStart(game *Game, pt PlayerTurn, last bool) {
	e.mu.RLock()
	current := e.game
	e.mu.RUnlock()
	if current != game {
		e.logger.Debug("turn start from stale match dropped",
			zap.String("epoch", game.Epoch.String()))
		return
	}

	game.Player(pt.Side).TurnReset()

	// Temporary cost reductions expire at turn start.
	if pid := game.Player(pt.Side).EntityID(); pid != 0 {
		game.Ledger().SetTag(pid, TagTempResources, 0)
	}

	if e.watcher != nil {
		e.watcher.TurnStart(int(pt.Side))
	}

	if last {
		seconds := e.cfg.TurnCountdownSeconds
		if pid := game.Player(pt.Side).EntityID(); pid != 0 {
			if ent, ok := game.Ledger().Entity(pid); ok && ent.HasTag(TagTimeout) {
				seconds = ent.Tag(TagTimeout)
			}
		}
		if e.render != nil {
			e.render.TurnCountdown(seconds)
		}
	}

	if pt.Side == SidePlayer && e.isBattlegrounds(game) {
		e.captureCurrentOpponentBoard(game)
	}

	e.logger.Debug("turn start handled",
		zap.Stringer("side", pt.Side), zap.Int("turn", pt.Turn), zap.Bool("last", last))
	e.refresher.Request()
}

// checkMulliganGate opens the sequencer gate once the mulligan predicate
// holds: both players resolved, or the mode has no mulligan phase at all.
func (e *Engine) checkMulliganGate(game *Game) {
	if game.Sequencer().MulliganDone() {
		return
	}
	if e.isBattlegrounds(game) {
		game.Sequencer().SignalMulliganDone()
		return
	}
	if game.MulliganResolved() {
		e.logger.Debug("mulligan resolved, opening turn gate")
		game.Sequencer().SignalMulliganDone()
	}
}

func (e *Engine) isBattlegrounds(game *Game) bool {
	mode, ok := game.Metadata().GameMode()
	return ok && mode == GameModeBattlegrounds
}

// scheduleDelayed runs fn after the delay, but only if the match context is
// still the current one. A stale epoch makes the task a logged no-op, so a
// pending delayed effect can never leak into a newer match.
func (e *Engine) scheduleDelayed(game *Game, delay time.Duration, fn func()) {
	epoch := game.Epoch
	time.AfterFunc(delay, func() {
		e.mu.RLock()
		current := e.game
		e.mu.RUnlock()
		if current == nil || current.Epoch != epoch {
			e.logger.Debug("stale delayed effect dropped", zap.String("epoch", epoch.String()))
			return
		}
		fn()
	})
}

// captureBoard snapshots the opposing minions on the shared battlefield
// under the given hero entity's (corrected) card id, then warms the image
// cache for each captured card.
func (e *Engine) captureBoard(game *Game, heroEntityID int) {
	hero, ok := game.Ledger().Entity(heroEntityID)
	if !ok || hero.CardID == "" {
		e.logger.Debug("board capture skipped, hero unknown", zap.Int("entity_id", heroEntityID))
		return
	}

	minionEnts := game.Ledger().Entities(func(ent *Entity) bool {
		return ent.IsMinion() && ent.Zone() == ZonePlay && ent.Controller() == SideOpponent
	})
	minions := make([]bgs.Minion, len(minionEnts))
	for i, m := range minionEnts {
		minions[i] = bgs.Minion{
			EntityID: m.ID,
			CardID:   m.CardID,
			Name:     m.Name,
			Attack:   m.Tag(TagAtk),
			Health:   m.Tag(TagHealth) - m.Tag(TagDamage),
			Position: m.Tag(TagZonePosition),
		}
	}

	game.Boards().Capture(hero.CardID, e.currentTurnFor(game), minions)

	if e.prefetch != nil {
		for _, m := range minions {
			cardID := m.CardID
			go func() {
				// Fire and forget; a miss costs nothing but a later fetch.
				_ = e.prefetch.Prefetch(cardID)
			}()
		}
	}
}

// captureCurrentOpponentBoard captures the board of whichever opposing hero
// is currently bound.
func (e *Engine) captureCurrentOpponentBoard(game *Game) {
	if hid := game.Player(SideOpponent).HeroEntityID(); hid != 0 {
		e.captureBoard(game, hid)
	}
}

func (e *Engine) sideOfEntity(game *Game, id int) Side {
	for _, side := range []Side{SidePlayer, SideOpponent} {
		if game.Player(side).EntityID() == id {
			return side
		}
	}
	return SideNeutral
}

func (e *Engine) refOf(game *Game, id int) secrets.EntityRef {
	ent, ok := game.Ledger().Entity(id)
	if !ok {
		return secrets.EntityRef{EntityID: id}
	}
	return entityRef(ent)
}

func entityRef(ent *Entity) secrets.EntityRef {
	return secrets.EntityRef{
		EntityID:   ent.ID,
		CardID:     ent.CardID,
		Controller: int(ent.Controller()),
		CardType:   ent.Tag(TagCardType),
	}
}

func timestampOf(fact Fact) time.Time {
	if fact.Timestamp.IsZero() {
		return time.Now()
	}
	return fact.Timestamp
}

// currentTurnFor derives the display turn: the raw turn tag halved, gated to
// zero until the mulligan resolves.
func (e *Engine) currentTurnFor(game *Game) int {
	if game == nil || !game.Sequencer().MulliganDone() {
		return 0
	}
	raw := game.RawTurn()
	if raw <= 0 {
		return 0
	}
	return (raw + 1) / 2
}

// --- Read-only queries (consumed by the rendering layer) ---

// State returns the lifecycle state.
func (e *Engine) State() MatchState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Epoch returns the current match episode token.
func (e *Engine) Epoch() uuid.UUID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.game.Epoch
}

// CurrentTurn returns the mulligan-gated display turn number.
func (e *Engine) CurrentTurn() int {
	e.mu.RLock()
	game := e.game
	e.mu.RUnlock()
	return e.currentTurnFor(game)
}

// Entities returns snapshots of all entities matching the predicate.
func (e *Engine) Entities(match func(*Entity) bool) []*Entity {
	e.mu.RLock()
	game := e.game
	e.mu.RUnlock()
	return game.Ledger().Entities(match)
}

// Entity returns a snapshot of one entity.
func (e *Engine) Entity(id int) (*Entity, bool) {
	e.mu.RLock()
	game := e.game
	e.mu.RUnlock()
	return game.Ledger().Entity(id)
}

// HandCount returns the number of cards in the side's hand.
func (e *Engine) HandCount(side Side) int {
	return e.zoneCount(side, ZoneHand)
}

// DeckCount returns the number of cards left in the side's deck.
func (e *Engine) DeckCount(side Side) int {
	return e.zoneCount(side, ZoneDeck)
}

func (e *Engine) zoneCount(side Side, zone Zone) int {
	e.mu.RLock()
	game := e.game
	e.mu.RUnlock()
	return game.Ledger().Count(func(ent *Entity) bool {
		return ent.Zone() == zone && ent.Controller() == side && !ent.IsPlayer() && !ent.IsGameEntity()
	})
}

// Fatigue returns the side's accumulated fatigue damage.
func (e *Engine) Fatigue(side Side) int {
	e.mu.RLock()
	game := e.game
	e.mu.RUnlock()
	return game.Player(side).Fatigue()
}

// CardsPlayedThisTurn returns the side's played counter for the current turn.
func (e *Engine) CardsPlayedThisTurn(side Side) int {
	e.mu.RLock()
	game := e.game
	e.mu.RUnlock()
	return game.Player(side).CardsPlayedThisTurn()
}

// PlayedCards returns the match's played-card history.
func (e *Engine) PlayedCards() []PlayedCard {
	e.mu.RLock()
	game := e.game
	e.mu.RUnlock()
	return game.Ledger().PlayedCards()
}

// BoardSnapshot returns the cached board for the given hero card id,
// applying the hero-id correction.
func (e *Engine) BoardSnapshot(heroCardID string) (bgs.Board, bool) {
	e.mu.RLock()
	game := e.game
	e.mu.RUnlock()
	return game.Boards().Snapshot(heroCardID)
}

// Metadata returns the match's metadata cache.
func (e *Engine) Metadata() *MetadataCache {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.game.Metadata()
}

// Close releases background resources.
func (e *Engine) Close() {
	e.refresher.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.game != nil {
		e.game.Close()
	}
	if e.recorder != nil {
		if err := e.recorder.Close(); err != nil {
			e.logger.Warn("closing recorder", zap.Error(err))
		}
		e.recorder = nil
	}
}
