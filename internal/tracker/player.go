package tracker

import "sync"

// PlayerState carries the per-side state the ledger cannot derive on its
// own: entity bindings discovered from facts and per-turn counters reset at
// each of that side's turn starts.
type PlayerState struct {
	mu sync.Mutex

	Side Side

	entityID     int // the PLAYER entity, 0 until discovered
	heroEntityID int

	fatigue             int
	cardsPlayedThisTurn int
}

// NewPlayerState creates the state holder for one side.
func NewPlayerState(side Side) *PlayerState {
	return &PlayerState{Side: side}
}

// BindEntity records the side's player entity id once discovered.
func (p *PlayerState) BindEntity(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entityID == 0 {
		p.entityID = id
	}
}

// EntityID returns the bound player entity id, 0 when unknown.
func (p *PlayerState) EntityID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entityID
}

// BindHero records the side's current hero entity id. Heroes can be
// replaced mid-match, so later bindings overwrite.
func (p *PlayerState) BindHero(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.heroEntityID = id
}

// HeroEntityID returns the bound hero entity id, 0 when unknown.
func (p *PlayerState) HeroEntityID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.heroEntityID
}

// RecordFatigue keeps the highest fatigue value observed for the side.
func (p *PlayerState) RecordFatigue(value int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if value > p.fatigue {
		p.fatigue = value
	}
}

// Fatigue returns the side's accumulated fatigue damage.
func (p *PlayerState) Fatigue() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fatigue
}

// CardPlayed increments the side's played-this-turn counter.
func (p *PlayerState) CardPlayed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cardsPlayedThisTurn++
}

// CardsPlayedThisTurn returns the per-turn played counter.
func (p *PlayerState) CardsPlayedThisTurn() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cardsPlayedThisTurn
}

// TurnReset applies the side's start-of-turn resets.
func (p *PlayerState) TurnReset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cardsPlayedThisTurn = 0
}
