package tracker

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Op names a directional zone-transition operation applied to the ledger.
// Each op enforces its own source-zone precondition; free-form zone mutation
// is not exposed.
type Op string

const (
	OpCreateInHand    Op = "CREATE_IN_HAND"
	OpCreateInDeck    Op = "CREATE_IN_DECK"
	OpCreateInPlay    Op = "CREATE_IN_PLAY"
	OpCreateInSecret  Op = "CREATE_IN_SECRET"
	OpDraw            Op = "DRAW"
	OpPlay            Op = "PLAY"
	OpHandToDeck      Op = "HAND_TO_DECK"
	OpHandToPlay      Op = "HAND_TO_PLAY"
	OpPlayToGraveyard Op = "PLAY_TO_GRAVEYARD"
	OpPlayToHand      Op = "PLAY_TO_HAND"
	OpPlayToDeck      Op = "PLAY_TO_DECK"
	OpDeckToGraveyard Op = "DECK_TO_GRAVEYARD"
	OpSecretTriggered Op = "SECRET_TRIGGERED"
	OpRemoveFromPlay  Op = "REMOVE_FROM_PLAY"
)

// PlayedCard is one entry in the per-match played-card history.
type PlayedCard struct {
	EntityID int
	CardID   string
	Side     Side
	Turn     int
}

// opTransition describes one op's source precondition and destination zone.
// A nil sources slice means the op creates the entity's first zone.
type opTransition struct {
	sources []Zone
	dest    Zone
}

var opTransitions = map[Op]opTransition{
	OpCreateInHand:    {sources: nil, dest: ZoneHand},
	OpCreateInDeck:    {sources: nil, dest: ZoneDeck},
	OpCreateInPlay:    {sources: nil, dest: ZonePlay},
	OpCreateInSecret:  {sources: nil, dest: ZoneSecret},
	OpDraw:            {sources: []Zone{ZoneDeck}, dest: ZoneHand},
	OpPlay:            {sources: []Zone{ZoneHand}, dest: ZonePlay},
	OpHandToDeck:      {sources: []Zone{ZoneHand}, dest: ZoneDeck},
	OpHandToPlay:      {sources: []Zone{ZoneHand}, dest: ZonePlay},
	OpPlayToGraveyard: {sources: []Zone{ZonePlay, ZoneSecret}, dest: ZoneGraveyard},
	OpPlayToHand:      {sources: []Zone{ZonePlay}, dest: ZoneHand},
	OpPlayToDeck:      {sources: []Zone{ZonePlay}, dest: ZoneDeck},
	OpDeckToGraveyard: {sources: []Zone{ZoneDeck}, dest: ZoneGraveyard},
	OpSecretTriggered: {sources: []Zone{ZoneSecret}, dest: ZoneGraveyard},
	OpRemoveFromPlay:  {sources: []Zone{ZonePlay}, dest: ZoneSetAside},
}

// opsRecordedAsPlayed lists the ops that append to the played-card history.
var opsRecordedAsPlayed = map[Op]bool{
	OpPlay:       true,
	OpHandToPlay: true,
}

// OpNotifyFunc observes a successfully applied operation. The entity passed
// is a snapshot copy.
type OpNotifyFunc func(op Op, entity *Entity, turn int)

// Ledger maintains the id -> Entity map for all known entities of the current
// match. Live entities never leave the ledger; all reads return snapshots.
type Ledger struct {
	mu       sync.RWMutex
	entities map[int]*Entity
	played   []PlayedCard
	notify   OpNotifyFunc
	// OnEntitiesChanged receives the diff list produced at bulk-update
	// boundaries. Set before facts flow; not synchronized afterwards.
	OnEntitiesChanged func([]EntityDiff)
	logger            *zap.Logger
}

// NewLedger creates an empty ledger.
func NewLedger(logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		entities: make(map[int]*Entity),
		logger:   logger,
	}
}

// SetNotify installs the per-op notification hook.
func (l *Ledger) SetNotify(fn OpNotifyFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notify = fn
}

// Add inserts the entity if its id is not already present. Duplicate
// creation facts are absorbed: the existing entity is left untouched.
func (l *Ledger) Add(e *Entity) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entities[e.ID]; ok {
		l.logger.Debug("duplicate entity creation ignored", zap.Int("entity_id", e.ID))
		return
	}
	l.entities[e.ID] = e
}

// Entity returns a snapshot of the entity with the given id.
func (l *Ledger) Entity(id int) (*Entity, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.entities[id]
	if !ok {
		return nil, false
	}
	return e.Snapshot(), true
}

// Entities returns snapshots of all entities matching the predicate, sorted
// by id for stable iteration.
func (l *Ledger) Entities(match func(*Entity) bool) []*Entity {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Entity, 0, len(l.entities))
	for _, e := range l.entities {
		if match == nil || match(e) {
			out = append(out, e.Snapshot())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of entities matching the predicate.
func (l *Ledger) Count(match func(*Entity) bool) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, e := range l.entities {
		if match == nil || match(e) {
			n++
		}
	}
	return n
}

// SetTag applies a tag change to the entity. Unknown ids are a no-op.
func (l *Ledger) SetTag(id int, tag GameTag, value int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entities[id]
	if !ok {
		l.logger.Debug("tag change for unknown entity",
			zap.Int("entity_id", id), zap.Stringer("tag", tag))
		return
	}
	e.SetTag(tag, value)
}

// SetCardID assigns or corrects the card id of an entity (a hidden entity
// gaining a known identity). Unknown ids are a no-op.
func (l *Ledger) SetCardID(id int, cardID, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entities[id]
	if !ok {
		l.logger.Debug("card id reveal for unknown entity", zap.Int("entity_id", id))
		return
	}
	e.CardID = cardID
	if name != "" {
		e.Name = name
	}
}

// Apply performs the named zone-transition operation on the entity. The
// operation is a no-op when the entity is unknown (facts can race ahead of
// creation) or not in an allowed source zone. On success the notify hook
// fires with a snapshot of the post-op entity.
func (l *Ledger) Apply(op Op, id int, turn int) {
	l.mu.Lock()

	tr, ok := opTransitions[op]
	if !ok {
		l.mu.Unlock()
		l.logger.Debug("unknown ledger op", zap.String("op", string(op)))
		return
	}

	e, ok := l.entities[id]
	if !ok {
		l.mu.Unlock()
		l.logger.Debug("op on unknown entity",
			zap.String("op", string(op)), zap.Int("entity_id", id))
		return
	}

	if tr.sources != nil {
		allowed := false
		for _, z := range tr.sources {
			if e.Zone() == z {
				allowed = true
				break
			}
		}
		if !allowed {
			l.mu.Unlock()
			l.logger.Debug("op precondition failed",
				zap.String("op", string(op)),
				zap.Int("entity_id", id),
				zap.Stringer("zone", e.Zone()))
			return
		}
	}

	e.SetZone(tr.dest)

	if opsRecordedAsPlayed[op] {
		l.played = append(l.played, PlayedCard{
			EntityID: id,
			CardID:   e.CardID,
			Side:     e.Controller(),
			Turn:     turn,
		})
	}

	snap := e.Snapshot()
	notify := l.notify
	l.mu.Unlock()

	if notify != nil {
		notify(op, snap, turn)
	}
}

// PlayedCards returns a copy of the played-card history.
func (l *Ledger) PlayedCards() []PlayedCard {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]PlayedCard, len(l.played))
	copy(out, l.played)
	return out
}

// ReplaceAll swaps in a full replacement entity map and reports per-entity
// diffs to OnEntitiesChanged. It serves fact sources that export their whole
// entity table at once; the in-stream fact path mutates entities individually
// and never routes through it. Only ids present in both maps with unequal
// snapshots are reported; callers needing additions or removals must diff the
// key sets themselves.
func (l *Ledger) ReplaceAll(next map[int]*Entity) {
	l.mu.Lock()
	prev := l.entities
	l.entities = next
	hook := l.OnEntitiesChanged

	var diffs []EntityDiff
	ids := make([]int, 0, len(prev))
	for id := range prev {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		oldE := prev[id]
		newE, ok := next[id]
		if !ok {
			continue
		}
		if !oldE.Equal(newE) {
			diffs = append(diffs, EntityDiff{Old: oldE.Snapshot(), New: newE.Snapshot()})
		}
	}
	l.mu.Unlock()

	if hook != nil && len(diffs) > 0 {
		hook(diffs)
	}
}

// Reset discards all entities and the played-card history.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entities = make(map[int]*Entity)
	l.played = nil
}
