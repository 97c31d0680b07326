// Package bgs caches opponent board state for battlegrounds lobbies, where
// the board is only visible while fighting that opponent. Snapshots are kept
// for the life of the match so the next encounter can show the last-known
// composition.
package bgs

// MinTechLevel and MaxTechLevel bound the valid tavern tier range.
const (
	MinTechLevel = 1
	MaxTechLevel = 6
)

// Minion is a detached copy of one board minion at capture time.
type Minion struct {
	EntityID int
	CardID   string
	Name     string
	Attack   int
	Health   int
	Position int
}

// Board is the last-observed composition for one opposing hero, plus the
// cumulative progression vectors for that hero across the whole match.
type Board struct {
	HeroCardID string
	Turn       int
	Minions    []Minion
	// TechLevelTurns[level] is the turn the hero first reached that tavern
	// tier; zero means never observed. Index 0 is unused.
	TechLevelTurns [MaxTechLevel + 1]int
	// Triples[level] is the accumulated triple count per tier. Index 0 unused.
	Triples [MaxTechLevel + 1]int
}

// heroBaseIDs maps transformed hero variants to their canonical base id, so
// state captured under a transformed identity is still found under the hero
// the player actually picked.
var heroBaseIDs = map[string]string{
	"TB_BaconShop_HERO_59t": "TB_BaconShop_HERO_59",
	"TB_BaconShop_HERO_63t": "TB_BaconShop_HERO_63",
	"TB_BaconShop_HERO_98t": "TB_BaconShop_HERO_98",
	"BG20_HERO_202t":        "BG20_HERO_202",
	"BG21_HERO_030t":        "BG21_HERO_030",
}

// CorrectHeroID resolves a possibly-transformed hero card id to its
// canonical base id.
func CorrectHeroID(heroCardID string) string {
	if base, ok := heroBaseIDs[heroCardID]; ok {
		return base
	}
	return heroCardID
}
