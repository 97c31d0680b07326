package bgs

import "testing"

func TestSnapshotAliasingBothDirections(t *testing.T) {
	c := NewCache()

	c.Capture("TB_BaconShop_HERO_59t", 4, []Minion{{EntityID: 1, CardID: "BGS_001"}})

	if _, ok := c.Snapshot("TB_BaconShop_HERO_59"); !ok {
		t.Fatal("snapshot under aliased id not found via base id")
	}

	c2 := NewCache()
	c2.Capture("TB_BaconShop_HERO_59", 4, []Minion{{EntityID: 1, CardID: "BGS_001"}})
	if _, ok := c2.Snapshot("TB_BaconShop_HERO_59t"); !ok {
		t.Fatal("snapshot under base id not found via aliased id")
	}
}

func TestCaptureSortsByBoardPosition(t *testing.T) {
	c := NewCache()
	c.Capture("BG_HERO_X", 7, []Minion{
		{EntityID: 3, Position: 3},
		{EntityID: 1, Position: 1},
		{EntityID: 2, Position: 2},
	})

	board, ok := c.Snapshot("BG_HERO_X")
	if !ok {
		t.Fatal("expected board")
	}
	for i, m := range board.Minions {
		if m.Position != i+1 {
			t.Fatalf("minion %d out of order: position %d", i, m.Position)
		}
	}
}

func TestCaptureCarriesProgressionForward(t *testing.T) {
	c := NewCache()
	c.RecordTechLevel("BG_HERO_X", 2, 3)
	c.RecordTriples("BG_HERO_X", 2, 1)

	c.Capture("BG_HERO_X", 5, []Minion{{EntityID: 1}})

	board, _ := c.Snapshot("BG_HERO_X")
	if board.TechLevelTurns[2] != 3 {
		t.Fatalf("tech level lost on capture: %v", board.TechLevelTurns)
	}
	if board.Triples[2] != 1 {
		t.Fatalf("triples lost on capture: %v", board.Triples)
	}
}

func TestRecordTechLevelLastWriteWins(t *testing.T) {
	c := NewCache()
	c.RecordTechLevel("BG_HERO_X", 3, 5)
	c.RecordTechLevel("BG_HERO_X", 3, 7)

	board, _ := c.Snapshot("BG_HERO_X")
	if board.TechLevelTurns[3] != 7 {
		t.Fatalf("expected last write 7, got %d", board.TechLevelTurns[3])
	}
}

func TestRecordTriplesAccumulates(t *testing.T) {
	c := NewCache()
	c.RecordTriples("BG_HERO_X", 3, 1)
	c.RecordTriples("BG_HERO_X", 3, 2)

	board, _ := c.Snapshot("BG_HERO_X")
	if board.Triples[3] != 3 {
		t.Fatalf("expected accumulated 3, got %d", board.Triples[3])
	}
}

func TestInvalidLevelsAndCountsIgnored(t *testing.T) {
	c := NewCache()
	c.RecordTechLevel("BG_HERO_X", 0, 1)
	c.RecordTechLevel("BG_HERO_X", 7, 1)
	c.RecordTriples("BG_HERO_X", 3, 0)
	c.RecordTriples("BG_HERO_X", 3, -2)

	if _, ok := c.Snapshot("BG_HERO_X"); ok {
		t.Fatal("invalid records must not create a board")
	}
}

func TestSnapshotReturnsDetachedCopy(t *testing.T) {
	c := NewCache()
	c.Capture("BG_HERO_X", 2, []Minion{{EntityID: 1, Attack: 2}})

	board, _ := c.Snapshot("BG_HERO_X")
	board.Minions[0].Attack = 99

	again, _ := c.Snapshot("BG_HERO_X")
	if again.Minions[0].Attack != 2 {
		t.Fatal("snapshot mutation leaked into the cache")
	}
}

func TestResetClearsBoards(t *testing.T) {
	c := NewCache()
	c.Capture("BG_HERO_X", 2, nil)
	c.Reset()

	if _, ok := c.Snapshot("BG_HERO_X"); ok {
		t.Fatal("expected no boards after reset")
	}
	if len(c.Heroes()) != 0 {
		t.Fatal("expected no heroes after reset")
	}
}

func TestCorrectHeroIDPassthrough(t *testing.T) {
	if got := CorrectHeroID("BG_HERO_PLAIN"); got != "BG_HERO_PLAIN" {
		t.Fatalf("unaliased id must pass through, got %q", got)
	}
}
