package tracker

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// StateChecksum is a deterministic digest of the reconstructed state, used
// to compare two reconstructions of the same fact stream when debugging
// divergence.
type StateChecksum struct {
	Hash    string
	Version int
}

const checksumVersion = 1

// Checksum computes the engine's current state digest. Only deterministic
// fields participate: epochs and wall-clock timestamps are excluded.
func (e *Engine) Checksum() StateChecksum {
	e.mu.RLock()
	game := e.game
	state := e.state
	e.mu.RUnlock()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "STATE:%s|%d\n", state, e.currentTurnFor(game))

	entities := game.Ledger().Entities(nil)
	for _, ent := range entities {
		fmt.Fprintf(&buf, "ENTITY:%d|%s|%s\n", ent.ID, ent.CardID, ent.Name)
		tags := make([]GameTag, 0, len(ent.tags))
		for tag := range ent.tags {
			tags = append(tags, tag)
		}
		sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
		for _, tag := range tags {
			fmt.Fprintf(&buf, "  TAG:%s=%d\n", tag, ent.tags[tag])
		}
	}

	for _, pc := range game.Ledger().PlayedCards() {
		fmt.Fprintf(&buf, "PLAYED:%d|%s|%s|%d\n", pc.EntityID, pc.CardID, pc.Side, pc.Turn)
	}

	for _, heroID := range game.Boards().Heroes() {
		board, ok := game.Boards().Snapshot(heroID)
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "BOARD:%s|%d\n", board.HeroCardID, board.Turn)
		for _, m := range board.Minions {
			fmt.Fprintf(&buf, "  MINION:%d|%s|%d|%d|%d\n", m.EntityID, m.CardID, m.Attack, m.Health, m.Position)
		}
		fmt.Fprintf(&buf, "  TECH:%v TRIPLES:%v\n", board.TechLevelTurns, board.Triples)
	}

	sum := sha256.Sum256(buf.Bytes())
	return StateChecksum{Hash: hex.EncodeToString(sum[:]), Version: checksumVersion}
}
