package tracker

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hearthsim/hstracker-go/internal/tracker/bgs"
)

// Game is the explicit per-match context. It owns every piece of per-match
// state, so resetting for a new match means constructing a fresh Game rather
// than clearing fields in place. The Epoch token identifies the match
// episode; delayed effects re-validate it before touching state.
type Game struct {
	Epoch     uuid.UUID
	CreatedAt time.Time

	ledger    *Ledger
	sequencer *TurnSequencer
	boards    *bgs.Cache
	metadata  *MetadataCache
	players   map[Side]*PlayerState

	gameEntityID int // the shared GAME entity, 0 until discovered
}

// NewGame constructs a fresh match context. handleTurn is the sequencer's
// drain callback.
func NewGame(provider MetadataProvider, handleTurn HandleTurnFunc, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		Epoch:     uuid.New(),
		CreatedAt: time.Now(),
		ledger:    NewLedger(logger.Named("ledger")),
		sequencer: NewTurnSequencer(handleTurn, logger.Named("sequencer")),
		boards:    bgs.NewCache(),
		metadata:  NewMetadataCache(provider, logger.Named("metadata")),
		players: map[Side]*PlayerState{
			SidePlayer:   NewPlayerState(SidePlayer),
			SideOpponent: NewPlayerState(SideOpponent),
		},
	}
}

// Ledger returns the match's entity ledger.
func (g *Game) Ledger() *Ledger { return g.ledger }

// Sequencer returns the match's turn sequencer.
func (g *Game) Sequencer() *TurnSequencer { return g.sequencer }

// Boards returns the battlegrounds board-snapshot cache.
func (g *Game) Boards() *bgs.Cache { return g.boards }

// Metadata returns the match's metadata cache.
func (g *Game) Metadata() *MetadataCache { return g.metadata }

// Player returns the state holder for the given side.
func (g *Game) Player(side Side) *PlayerState { return g.players[side] }

// BindGameEntity records the shared game entity id once discovered.
func (g *Game) BindGameEntity(id int) {
	if g.gameEntityID == 0 {
		g.gameEntityID = id
	}
}

// GameEntity returns a snapshot of the shared game entity.
func (g *Game) GameEntity() (*Entity, bool) {
	if g.gameEntityID == 0 {
		return nil, false
	}
	return g.ledger.Entity(g.gameEntityID)
}

// RawTurn returns the shared game entity's raw turn tag; zero when the game
// entity is unknown.
func (g *Game) RawTurn() int {
	e, ok := g.GameEntity()
	if !ok {
		return 0
	}
	return e.Tag(TagTurn)
}

// MulliganResolved reports whether both players' entities carry a resolved
// mulligan state.
func (g *Game) MulliganResolved() bool {
	for _, side := range []Side{SidePlayer, SideOpponent} {
		id := g.players[side].EntityID()
		if id == 0 {
			return false
		}
		e, ok := g.ledger.Entity(id)
		if !ok || e.Tag(TagMulliganState) != MulliganDone {
			return false
		}
	}
	return true
}

// Close releases the match's background resources.
func (g *Game) Close() {
	g.sequencer.Stop()
}
