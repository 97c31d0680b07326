package tracker

import "testing"

func validMatchInfo() MatchInfo {
	medal := MedalInfo{Stars: 12, StarLevel: 30, StarMultiplier: 2}
	player := PlayerInfo{Name: "Alice", Standard: medal, Wild: medal, Classic: medal}
	opponent := PlayerInfo{Name: "Bob", Standard: medal, Wild: medal, Classic: medal}
	return MatchInfo{LocalPlayer: player, OpposingPlayer: opponent, Format: FormatStandard, Mode: GameModeRanked}
}

func TestMetadataMemoizesOnFirstSuccess(t *testing.T) {
	p := newFakeProvider()
	p.setGameMode(GameModeRanked)
	c := NewMetadataCache(p, nil)

	for i := 0; i < 3; i++ {
		mode, ok := c.GameMode()
		if !ok || mode != GameModeRanked {
			t.Fatalf("fetch %d: got %v %v", i, mode, ok)
		}
	}
	if n := p.fetches("gameMode"); n != 1 {
		t.Fatalf("expected 1 provider fetch, got %d", n)
	}
}

func TestMetadataRetriesAfterUnavailable(t *testing.T) {
	p := newFakeProvider()
	c := NewMetadataCache(p, nil)

	if _, ok := c.GameMode(); ok {
		t.Fatal("expected unavailable")
	}
	if _, ok := c.GameMode(); ok {
		t.Fatal("expected still unavailable")
	}
	// No negative caching: every miss goes back to the provider.
	if n := p.fetches("gameMode"); n != 2 {
		t.Fatalf("expected 2 provider fetches, got %d", n)
	}

	p.setGameMode(GameModeArena)
	mode, ok := c.GameMode()
	if !ok || mode != GameModeArena {
		t.Fatalf("expected ARENA after provider recovers, got %v %v", mode, ok)
	}
}

func TestMatchInfoValidationRejectsOutOfRangeStarLevel(t *testing.T) {
	p := newFakeProvider()
	mi := validMatchInfo()
	mi.LocalPlayer.Wild.StarLevel = 52
	p.setMatchInfo(mi)
	c := NewMetadataCache(p, nil)

	if _, ok := c.MatchInfo(); ok {
		t.Fatal("invalid medal record must be treated as unavailable")
	}
	// The invalid fetch must not be cached; a corrected record is accepted.
	mi.LocalPlayer.Wild.StarLevel = 51
	p.setMatchInfo(mi)

	got, ok := c.MatchInfo()
	if !ok {
		t.Fatal("valid match info rejected")
	}
	if got.LocalPlayer.Wild.StarLevel != 51 {
		t.Fatalf("unexpected star level %d", got.LocalPlayer.Wild.StarLevel)
	}
}

func TestMatchInfoImmutableOnceAccepted(t *testing.T) {
	p := newFakeProvider()
	p.setMatchInfo(validMatchInfo())
	c := NewMetadataCache(p, nil)

	first, ok := c.MatchInfo()
	if !ok {
		t.Fatal("expected match info")
	}

	changed := validMatchInfo()
	changed.LocalPlayer.Name = "Mallory"
	p.setMatchInfo(changed)

	second, _ := c.MatchInfo()
	if second.LocalPlayer.Name != first.LocalPlayer.Name {
		t.Fatal("accepted match info changed after caching")
	}
}

func TestMedalValidationBounds(t *testing.T) {
	cases := []struct {
		name  string
		medal MedalInfo
		valid bool
	}{
		{"zeroes", MedalInfo{}, true},
		{"max", MedalInfo{Stars: 1000, StarLevel: 51, StarMultiplier: 20}, true},
		{"stars over", MedalInfo{Stars: 1001}, false},
		{"level over", MedalInfo{StarLevel: 52}, false},
		{"multiplier over", MedalInfo{StarMultiplier: 21}, false},
		{"negative stars", MedalInfo{Stars: -1}, false},
	}
	for _, tc := range cases {
		if got := tc.medal.Valid(); got != tc.valid {
			t.Errorf("%s: Valid() = %v, want %v", tc.name, got, tc.valid)
		}
	}
}

func TestMetadataInvalidateClearsEverything(t *testing.T) {
	p := newFakeProvider()
	p.setGameMode(GameModeRanked)
	c := NewMetadataCache(p, nil)

	if _, ok := c.GameMode(); !ok {
		t.Fatal("expected game mode")
	}
	c.Invalidate()
	if _, ok := c.GameMode(); !ok {
		t.Fatal("expected refetch after invalidate")
	}
	if n := p.fetches("gameMode"); n != 2 {
		t.Fatalf("expected refetch to hit the provider, got %d fetches", n)
	}
}

func TestMetadataNilProviderAlwaysUnavailable(t *testing.T) {
	c := NewMetadataCache(nil, nil)

	if _, ok := c.Spectator(); ok {
		t.Fatal("nil provider must report unavailable")
	}
	if _, ok := c.MatchInfo(); ok {
		t.Fatal("nil provider must report unavailable")
	}
	if _, ok := c.AvailableRaces(); ok {
		t.Fatal("nil provider must report unavailable")
	}
}
