package bgs

import (
	"sort"
	"sync"
)

// Cache holds one Board per opposing hero, keyed by corrected hero card id.
// Boards are created lazily, mutated in place, and cleared on match reset.
type Cache struct {
	mu     sync.RWMutex
	boards map[string]*Board
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{boards: make(map[string]*Board)}
}

func (c *Cache) board(heroCardID string) *Board {
	key := CorrectHeroID(heroCardID)
	b, ok := c.boards[key]
	if !ok {
		b = &Board{HeroCardID: key}
		c.boards[key] = b
	}
	return b
}

// Capture stores the given minions as the hero's current composition,
// replacing any previous one. Minions are sorted by board position; the
// hero's cumulative progression vectors carry forward unchanged.
func (c *Cache) Capture(heroCardID string, turn int, minions []Minion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sorted := make([]Minion, len(minions))
	copy(sorted, minions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	b := c.board(heroCardID)
	b.Turn = turn
	b.Minions = sorted
}

// RecordTechLevel records the turn a hero first reached the given tavern
// tier. Out-of-range levels are ignored. Last write wins, matching the
// "current" semantics of the underlying tag.
func (c *Cache) RecordTechLevel(heroCardID string, level, turn int) {
	if level < MinTechLevel || level > MaxTechLevel {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board(heroCardID).TechLevelTurns[level] = turn
}

// RecordTriples accumulates triples made at the given tavern tier.
// Out-of-range levels and non-positive counts are ignored.
func (c *Cache) RecordTriples(heroCardID string, level, count int) {
	if level < MinTechLevel || level > MaxTechLevel || count <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board(heroCardID).Triples[level] += count
}

// Snapshot returns a copy of the board for the given hero, applying the same
// hero-id correction used on capture. The second return is false when no
// board has been observed for that hero.
func (c *Cache) Snapshot(heroCardID string) (Board, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.boards[CorrectHeroID(heroCardID)]
	if !ok {
		return Board{}, false
	}
	out := *b
	out.Minions = make([]Minion, len(b.Minions))
	copy(out.Minions, b.Minions)
	return out, true
}

// Heroes returns the corrected hero ids with at least one observation.
func (c *Cache) Heroes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.boards))
	for id := range c.boards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reset discards all boards. Called on match reset.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boards = make(map[string]*Board)
}
