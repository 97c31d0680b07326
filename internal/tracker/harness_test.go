package tracker

import (
	"sync"
	"testing"
	"time"

	"github.com/hearthsim/hstracker-go/internal/tracker/secrets"
)

type secretsRef = secrets.EntityRef

// fakeProvider is a controllable metadata provider. Zero value reports
// everything as not yet available.
type fakeProvider struct {
	mu sync.Mutex

	spectator   *bool
	gameType    *int
	gameMode    *GameMode
	matchInfo   *MatchInfo
	serverInfo  *ServerInfo
	bgsRating   *int
	races       []string
	bannedRaces []string
	fetchCounts map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{fetchCounts: make(map[string]int)}
}

func (p *fakeProvider) count(name string) {
	p.fetchCounts[name]++
}

func (p *fakeProvider) fetches(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchCounts[name]
}

func (p *fakeProvider) Spectator() (bool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count("spectator")
	if p.spectator == nil {
		return false, false
	}
	return *p.spectator, true
}

func (p *fakeProvider) GameType() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count("gameType")
	if p.gameType == nil {
		return 0, false
	}
	return *p.gameType, true
}

func (p *fakeProvider) GameMode() (GameMode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count("gameMode")
	if p.gameMode == nil {
		return GameModeUnknown, false
	}
	return *p.gameMode, true
}

func (p *fakeProvider) MatchInfo() (MatchInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count("matchInfo")
	if p.matchInfo == nil {
		return MatchInfo{}, false
	}
	return *p.matchInfo, true
}

func (p *fakeProvider) ServerInfo() (ServerInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count("serverInfo")
	if p.serverInfo == nil {
		return ServerInfo{}, false
	}
	return *p.serverInfo, true
}

func (p *fakeProvider) BattlegroundsRating() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count("bgsRating")
	if p.bgsRating == nil {
		return 0, false
	}
	return *p.bgsRating, true
}

func (p *fakeProvider) AvailableRaces() ([]string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count("races")
	if p.races == nil {
		return nil, false
	}
	return p.races, true
}

func (p *fakeProvider) UnavailableRaces() ([]string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count("bannedRaces")
	if p.bannedRaces == nil {
		return nil, false
	}
	return p.bannedRaces, true
}

func (p *fakeProvider) setGameMode(mode GameMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gameMode = &mode
}

func (p *fakeProvider) setMatchInfo(mi MatchInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.matchInfo = &mi
}

// fakeSink records delivered match statistics.
type fakeSink struct {
	mu    sync.Mutex
	stats []MatchStats
}

func (s *fakeSink) MatchEnded(stats MatchStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = append(s.stats, stats)
}

func (s *fakeSink) delivered() []MatchStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MatchStats, len(s.stats))
	copy(out, s.stats)
	return out
}

// fakeWatcher records secret-inference dispatch calls.
type fakeWatcher struct {
	mu          sync.Mutex
	resets      int
	turnStarts  []int
	cardsPlayed []int
	deaths      []int
	changed     [][]int
}

func (w *fakeWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resets++
}

func (w *fakeWatcher) CardPlayed(card secretsRef, turn int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cardsPlayed = append(w.cardsPlayed, card.EntityID)
}

func (w *fakeWatcher) TurnStart(side int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turnStarts = append(w.turnStarts, side)
}

func (w *fakeWatcher) Attack(attacker, defender secretsRef) {}

func (w *fakeWatcher) MinionDeath(minion secretsRef, turn int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deaths = append(w.deaths, minion.EntityID)
}

func (w *fakeWatcher) HeroPower(side int) {}

func (w *fakeWatcher) Damage(source, target secretsRef, amount int) {}

func (w *fakeWatcher) ArmorLost(target secretsRef, amount int) {}

func (w *fakeWatcher) EntitiesChanged(changed []int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.changed = append(w.changed, changed)
}

func (w *fakeWatcher) turnStartSides() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]int, len(w.turnStarts))
	copy(out, w.turnStarts)
	return out
}

// fakeRender records refresh and countdown calls.
type fakeRender struct {
	mu         sync.Mutex
	refreshes  int
	resets     int
	countdowns []int
}

func (r *fakeRender) Refresh(reset bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshes++
	if reset {
		r.resets++
	}
}

func (r *fakeRender) TurnCountdown(seconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countdowns = append(r.countdowns, seconds)
}

func (r *fakeRender) countdownValues() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.countdowns))
	copy(out, r.countdowns)
	return out
}

// waitFor polls until cond holds or the deadline expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting: %s", msg)
}

// testEngine builds an engine with fast timings and the given collaborators.
func testEngine(t *testing.T, cfg EngineConfig) *Engine {
	t.Helper()
	if cfg.StartDebounce == 0 {
		cfg.StartDebounce = 50 * time.Millisecond
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = 10 * time.Millisecond
	}
	if cfg.SnapshotDelay == 0 {
		cfg.SnapshotDelay = 20 * time.Millisecond
	}
	e := NewEngine(cfg, nil)
	t.Cleanup(e.Close)
	return e
}

// startMatch applies the canonical opening facts: game start, the shared
// game entity, and both player entities.
func startMatch(e *Engine) {
	e.Apply(Fact{Type: FactGameStart})
	e.Apply(Fact{Type: FactEntityCreated, EntityID: 1, Value: CardTypeGame})
	e.Apply(Fact{Type: FactEntityCreated, EntityID: 2, Value: CardTypePlayer, Side: SidePlayer})
	e.Apply(Fact{Type: FactEntityCreated, EntityID: 3, Value: CardTypePlayer, Side: SideOpponent})
}

// resolveMulligan marks both players' mulligans done.
func resolveMulligan(e *Engine) {
	e.Apply(Fact{Type: FactTagChange, EntityID: 2, Tag: TagMulliganState, Value: MulliganDone})
	e.Apply(Fact{Type: FactTagChange, EntityID: 3, Tag: TagMulliganState, Value: MulliganDone})
}
