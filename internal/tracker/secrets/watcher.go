// Package secrets defines the boundary between the reconciliation engine and
// the secret-inference collaborator. The engine only dispatches relevant
// facts; the inference logic itself lives behind the Watcher interface.
package secrets

// EntityRef identifies an entity involved in a dispatched event without
// exposing the engine's live entity.
type EntityRef struct {
	EntityID   int
	CardID     string
	Controller int // side value of the controlling player
	CardType   int
}

// Watcher receives game events relevant to secret inference. Implementations
// must be safe for calls from the engine's fact-delivery goroutine.
type Watcher interface {
	// Reset clears all inference state at match start.
	Reset()
	CardPlayed(card EntityRef, turn int)
	TurnStart(side int)
	Attack(attacker, defender EntityRef)
	MinionDeath(minion EntityRef, turn int)
	HeroPower(side int)
	Damage(source, target EntityRef, amount int)
	ArmorLost(target EntityRef, amount int)
	// EntitiesChanged receives the ids of entities whose observable state
	// changed at a bulk-update boundary.
	EntitiesChanged(changed []int)
}

// CandidateSet is the set of secret cards currently considered possible,
// reported back by the collaborator for display.
type CandidateSet struct {
	SourceEntityID int
	CardIDs        []string
}

// CandidateFunc is the callback shape the collaborator uses to publish its
// current candidate set.
type CandidateFunc func(CandidateSet)
