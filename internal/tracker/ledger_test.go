package tracker

import "testing"

func TestLedgerAddIsIdempotent(t *testing.T) {
	l := NewLedger(nil)

	first := NewEntity(7, "CS2_182")
	first.SetTag(TagZone, int(ZoneHand))
	l.Add(first)

	dup := NewEntity(7, "OTHER")
	l.Add(dup)

	got, ok := l.Entity(7)
	if !ok {
		t.Fatal("expected entity 7 to exist")
	}
	if got.CardID != "CS2_182" {
		t.Fatalf("duplicate add overwrote entity: card id %q", got.CardID)
	}
	if n := l.Count(nil); n != 1 {
		t.Fatalf("expected 1 entity, got %d", n)
	}
}

func TestLedgerOpMovesEntityBetweenZones(t *testing.T) {
	l := NewLedger(nil)
	e := NewEntity(1, "EX1_001")
	e.SetZone(ZoneDeck)
	l.Add(e)

	l.Apply(OpDraw, 1, 2)

	got, _ := l.Entity(1)
	if got.Zone() != ZoneHand {
		t.Fatalf("expected HAND after draw, got %s", got.Zone())
	}
}

func TestLedgerOpPreconditionBlocksWrongSourceZone(t *testing.T) {
	l := NewLedger(nil)
	e := NewEntity(1, "EX1_001")
	e.SetZone(ZoneGraveyard)
	l.Add(e)

	l.Apply(OpPlay, 1, 3)

	got, _ := l.Entity(1)
	if got.Zone() != ZoneGraveyard {
		t.Fatalf("play from graveyard should be a no-op, entity moved to %s", got.Zone())
	}
}

func TestLedgerOpOnUnknownEntityIsNoOp(t *testing.T) {
	l := NewLedger(nil)
	// Must not panic or create the entity.
	l.Apply(OpDraw, 42, 1)
	if _, ok := l.Entity(42); ok {
		t.Fatal("op on unknown id must not create the entity")
	}
}

func TestLedgerPlayAppendsHistoryAndNotifies(t *testing.T) {
	l := NewLedger(nil)
	e := NewEntity(5, "EX1_005")
	e.SetZone(ZoneHand)
	e.SetTag(TagController, int(SidePlayer))
	l.Add(e)

	var notified []Op
	l.SetNotify(func(op Op, ent *Entity, turn int) {
		notified = append(notified, op)
		if ent.ID != 5 {
			t.Fatalf("notify got entity %d", ent.ID)
		}
		if turn != 4 {
			t.Fatalf("notify got turn %d", turn)
		}
	})

	l.Apply(OpPlay, 5, 4)

	history := l.PlayedCards()
	if len(history) != 1 {
		t.Fatalf("expected 1 played card, got %d", len(history))
	}
	if history[0].CardID != "EX1_005" || history[0].Side != SidePlayer || history[0].Turn != 4 {
		t.Fatalf("unexpected history entry: %+v", history[0])
	}
	if len(notified) != 1 || notified[0] != OpPlay {
		t.Fatalf("expected one OpPlay notification, got %v", notified)
	}
}

func TestLedgerSecretTriggeredLeavesSecretZone(t *testing.T) {
	l := NewLedger(nil)
	e := NewEntity(9, "EX1_611")
	e.SetZone(ZoneSecret)
	l.Add(e)

	l.Apply(OpSecretTriggered, 9, 6)

	got, _ := l.Entity(9)
	if got.Zone() != ZoneGraveyard {
		t.Fatalf("expected GRAVEYARD after trigger, got %s", got.Zone())
	}
	if len(l.PlayedCards()) != 0 {
		t.Fatal("secret trigger must not appear in played history")
	}
}

func TestLedgerReplaceAllDiffsOnlyCommonChangedIDs(t *testing.T) {
	l := NewLedger(nil)

	a := NewEntity(1, "A")
	a.SetTag(TagDamage, 1)
	b := NewEntity(2, "B")
	removed := NewEntity(3, "GONE")
	l.Add(a)
	l.Add(b)
	l.Add(removed)

	var diffs []EntityDiff
	l.OnEntitiesChanged = func(d []EntityDiff) { diffs = d }

	a2 := NewEntity(1, "A")
	a2.SetTag(TagDamage, 3) // changed
	b2 := NewEntity(2, "B") // unchanged
	added := NewEntity(4, "NEW")
	l.ReplaceAll(map[int]*Entity{1: a2, 2: b2, 4: added})

	if len(diffs) != 1 {
		t.Fatalf("expected exactly 1 diff, got %d", len(diffs))
	}
	if diffs[0].Old.Tag(TagDamage) != 1 || diffs[0].New.Tag(TagDamage) != 3 {
		t.Fatalf("unexpected diff: old=%d new=%d",
			diffs[0].Old.Tag(TagDamage), diffs[0].New.Tag(TagDamage))
	}
}

func TestLedgerReplaceAllWithoutChangesEmitsNothing(t *testing.T) {
	l := NewLedger(nil)
	a := NewEntity(1, "A")
	l.Add(a)

	called := false
	l.OnEntitiesChanged = func([]EntityDiff) { called = true }

	l.ReplaceAll(map[int]*Entity{1: a.Snapshot()})

	if called {
		t.Fatal("identical replacement must not emit diffs")
	}
}

func TestLedgerSetCardIDRevealsHiddenEntity(t *testing.T) {
	l := NewLedger(nil)
	l.Add(NewEntity(8, ""))

	l.SetCardID(8, "EX1_008", "Argent Squire")

	got, _ := l.Entity(8)
	if got.CardID != "EX1_008" || got.Name != "Argent Squire" {
		t.Fatalf("reveal not applied: %+v", got)
	}
}
