package tracker

// Entity is a uniquely-identified game object with tag-valued attributes.
// The ledger owns live entities exclusively; everything handed outward is a
// Snapshot copy, because live entities keep mutating as facts arrive.
type Entity struct {
	ID     int
	CardID string
	Name   string
	tags   map[GameTag]int
}

// NewEntity creates an entity with no tags set.
func NewEntity(id int, cardID string) *Entity {
	return &Entity{
		ID:     id,
		CardID: cardID,
		tags:   make(map[GameTag]int),
	}
}

// Tag returns the value of the given tag, or zero when unset.
func (e *Entity) Tag(tag GameTag) int {
	return e.tags[tag]
}

// HasTag reports whether the tag is set to a non-zero value.
func (e *Entity) HasTag(tag GameTag) bool {
	return e.tags[tag] != 0
}

// SetTag sets a tag value. A zero value clears the tag.
func (e *Entity) SetTag(tag GameTag, value int) {
	if value == 0 {
		delete(e.tags, tag)
		return
	}
	e.tags[tag] = value
}

// Zone returns the zone the entity currently occupies.
func (e *Entity) Zone() Zone {
	return Zone(e.tags[TagZone])
}

// SetZone moves the entity to the given zone.
func (e *Entity) SetZone(zone Zone) {
	e.SetTag(TagZone, int(zone))
}

// Controller returns the side controlling the entity.
func (e *Entity) Controller() Side {
	return Side(e.tags[TagController])
}

// IsMinion reports whether the entity is a minion card.
func (e *Entity) IsMinion() bool {
	return e.tags[TagCardType] == CardTypeMinion
}

// IsPlayer reports whether the entity is one of the two player entities.
func (e *Entity) IsPlayer() bool {
	return e.tags[TagCardType] == CardTypePlayer
}

// IsGameEntity reports whether the entity is the shared game entity.
func (e *Entity) IsGameEntity() bool {
	return e.tags[TagCardType] == CardTypeGame
}

// Snapshot returns a deep copy decoupled from the live entity.
func (e *Entity) Snapshot() *Entity {
	tags := make(map[GameTag]int, len(e.tags))
	for k, v := range e.tags {
		tags[k] = v
	}
	return &Entity{
		ID:     e.ID,
		CardID: e.CardID,
		Name:   e.Name,
		tags:   tags,
	}
}

// Equal reports whether two entities carry identical observable state.
func (e *Entity) Equal(other *Entity) bool {
	if other == nil {
		return false
	}
	if e.ID != other.ID || e.CardID != other.CardID || e.Name != other.Name {
		return false
	}
	if len(e.tags) != len(other.tags) {
		return false
	}
	for k, v := range e.tags {
		if other.tags[k] != v {
			return false
		}
	}
	return true
}

// EntityDiff pairs the previous and current snapshot of one entity id. It is
// only produced when the two snapshots differ.
type EntityDiff struct {
	Old *Entity
	New *Entity
}

// PlayerTurn is an immutable (side, turn) pair used to queue turn starts.
type PlayerTurn struct {
	Side Side
	Turn int
}
