package tracker

import (
	"sync"

	"go.uber.org/zap"
)

// Medal validation bounds. Values outside these ranges indicate the fact
// source was read mid-write and the whole record must be refetched.
const (
	maxMedalStars          = 1000
	maxMedalStarLevel      = 51
	maxMedalStarMultiplier = 20
)

// MedalInfo is one ranked-ladder standing record.
type MedalInfo struct {
	Stars          int
	StarLevel      int
	StarMultiplier int
	LegendRank     int
}

// Valid reports whether the record's fields are within plausible bounds.
func (m MedalInfo) Valid() bool {
	return m.Stars >= 0 && m.Stars <= maxMedalStars &&
		m.StarLevel >= 0 && m.StarLevel <= maxMedalStarLevel &&
		m.StarMultiplier >= 0 && m.StarMultiplier <= maxMedalStarMultiplier
}

// PlayerInfo is one player's out-of-band identity and standings.
type PlayerInfo struct {
	Name      string
	AccountID int64
	Standard  MedalInfo
	Wild      MedalInfo
	Classic   MedalInfo
}

// MatchInfo is the out-of-band metadata attached to one match. It is
// immutable once accepted by the cache.
type MatchInfo struct {
	LocalPlayer    PlayerInfo
	OpposingPlayer PlayerInfo
	Format         Format
	Mode           GameMode
	BrawlSeasonID  int
}

// Valid checks all six medal records (two players, three formats).
func (mi MatchInfo) Valid() bool {
	for _, m := range []MedalInfo{
		mi.LocalPlayer.Standard, mi.LocalPlayer.Wild, mi.LocalPlayer.Classic,
		mi.OpposingPlayer.Standard, mi.OpposingPlayer.Wild, mi.OpposingPlayer.Classic,
	} {
		if !m.Valid() {
			return false
		}
	}
	return true
}

// ServerInfo describes the game server hosting the current match.
type ServerInfo struct {
	Address      string
	Version      string
	GameHandle   int
	ClientHandle int64
	Mission      int
}

// MetadataProvider is the out-of-band metadata source. Every query may
// report "not yet available" via a false second return; such results are
// retried on the next access.
type MetadataProvider interface {
	Spectator() (bool, bool)
	GameType() (int, bool)
	GameMode() (GameMode, bool)
	MatchInfo() (MatchInfo, bool)
	ServerInfo() (ServerInfo, bool)
	BattlegroundsRating() (int, bool)
	AvailableRaces() ([]string, bool)
	UnavailableRaces() ([]string, bool)
}

// MetadataCache memoizes each provider query independently: first success is
// cached for the rest of the match, failures are retried on next access with
// no negative caching. MatchInfo additionally validates before caching.
type MetadataCache struct {
	mu       sync.Mutex
	provider MetadataProvider
	logger   *zap.Logger

	spectator        *bool
	gameType         *int
	gameMode         *GameMode
	matchInfo        *MatchInfo
	serverInfo       *ServerInfo
	bgsRating        *int
	availableRaces   []string
	unavailableRaces []string
}

// NewMetadataCache creates a cache over the given provider. A nil provider
// leaves every query permanently unavailable.
func NewMetadataCache(provider MetadataProvider, logger *zap.Logger) *MetadataCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetadataCache{provider: provider, logger: logger}
}

// Spectator reports whether the local client is spectating.
func (c *MetadataCache) Spectator() (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spectator != nil {
		return *c.spectator, true
	}
	if c.provider == nil {
		return false, false
	}
	v, ok := c.provider.Spectator()
	if !ok {
		return false, false
	}
	c.spectator = &v
	return v, true
}

// GameType returns the raw game type reported by the fact source.
func (c *MetadataCache) GameType() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gameType != nil {
		return *c.gameType, true
	}
	if c.provider == nil {
		return 0, false
	}
	v, ok := c.provider.GameType()
	if !ok {
		return 0, false
	}
	c.gameType = &v
	return v, true
}

// GameMode returns the coarse game mode.
func (c *MetadataCache) GameMode() (GameMode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gameMode != nil {
		return *c.gameMode, true
	}
	if c.provider == nil {
		return GameModeUnknown, false
	}
	v, ok := c.provider.GameMode()
	if !ok {
		return GameModeUnknown, false
	}
	c.gameMode = &v
	return v, true
}

// MatchInfo returns the validated match metadata. A fetch that fails
// validation is treated as not yet available and retried later, guarding
// against reading the record mid-write.
func (c *MetadataCache) MatchInfo() (MatchInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.matchInfo != nil {
		return *c.matchInfo, true
	}
	if c.provider == nil {
		return MatchInfo{}, false
	}
	v, ok := c.provider.MatchInfo()
	if !ok {
		return MatchInfo{}, false
	}
	if !v.Valid() {
		c.logger.Debug("match info failed medal validation, will retry")
		return MatchInfo{}, false
	}
	c.matchInfo = &v
	return v, true
}

// ServerInfo returns the game server description.
func (c *MetadataCache) ServerInfo() (ServerInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.serverInfo != nil {
		return *c.serverInfo, true
	}
	if c.provider == nil {
		return ServerInfo{}, false
	}
	v, ok := c.provider.ServerInfo()
	if !ok {
		return ServerInfo{}, false
	}
	c.serverInfo = &v
	return v, true
}

// BattlegroundsRating returns the local player's battlegrounds rating.
func (c *MetadataCache) BattlegroundsRating() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bgsRating != nil {
		return *c.bgsRating, true
	}
	if c.provider == nil {
		return 0, false
	}
	v, ok := c.provider.BattlegroundsRating()
	if !ok {
		return 0, false
	}
	c.bgsRating = &v
	return v, true
}

// AvailableRaces returns the minion races present in the current lobby.
func (c *MetadataCache) AvailableRaces() ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.availableRaces != nil {
		return append([]string(nil), c.availableRaces...), true
	}
	if c.provider == nil {
		return nil, false
	}
	v, ok := c.provider.AvailableRaces()
	if !ok || v == nil {
		return nil, false
	}
	c.availableRaces = append([]string(nil), v...)
	return append([]string(nil), c.availableRaces...), true
}

// UnavailableRaces returns the minion races banned from the current lobby.
func (c *MetadataCache) UnavailableRaces() ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unavailableRaces != nil {
		return append([]string(nil), c.unavailableRaces...), true
	}
	if c.provider == nil {
		return nil, false
	}
	v, ok := c.provider.UnavailableRaces()
	if !ok || v == nil {
		return nil, false
	}
	c.unavailableRaces = append([]string(nil), v...)
	return append([]string(nil), c.unavailableRaces...), true
}

// Invalidate clears every cached value. The engine constructs a fresh cache
// per match, so it never calls this itself; it exists for holders that keep
// one cache across match episodes.
func (c *MetadataCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spectator = nil
	c.gameType = nil
	c.gameMode = nil
	c.matchInfo = nil
	c.serverInfo = nil
	c.bgsRating = nil
	c.availableRaces = nil
	c.unavailableRaces = nil
}
