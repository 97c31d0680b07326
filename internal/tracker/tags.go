package tracker

import "fmt"

// GameTag identifies an integer-valued attribute on an entity.
type GameTag int

const (
	TagTurn GameTag = iota + 1
	TagZone
	TagZonePosition
	TagController
	TagCardType
	TagMulliganState
	TagPlayState
	TagResources
	TagResourcesUsed
	TagTempResources
	TagFatigue
	TagDamage
	TagHealth
	TagAtk
	TagArmor
	TagTimeout
	TagCurrentPlayer
	TagFirstPlayer
	TagNumCardsPlayedThisTurn
	TagTechLevel
	TagPlayerTriples
	TagDefending
	TagBaconDuoTeamID
)

var tagNames = map[GameTag]string{
	TagTurn:                   "TURN",
	TagZone:                   "ZONE",
	TagZonePosition:           "ZONE_POSITION",
	TagController:             "CONTROLLER",
	TagCardType:               "CARDTYPE",
	TagMulliganState:          "MULLIGAN_STATE",
	TagPlayState:              "PLAYSTATE",
	TagResources:              "RESOURCES",
	TagResourcesUsed:          "RESOURCES_USED",
	TagTempResources:          "TEMP_RESOURCES",
	TagFatigue:                "FATIGUE",
	TagDamage:                 "DAMAGE",
	TagHealth:                 "HEALTH",
	TagAtk:                    "ATK",
	TagArmor:                  "ARMOR",
	TagTimeout:                "TIMEOUT",
	TagCurrentPlayer:          "CURRENT_PLAYER",
	TagFirstPlayer:            "FIRST_PLAYER",
	TagNumCardsPlayedThisTurn: "NUM_CARDS_PLAYED_THIS_TURN",
	TagTechLevel:              "TECH_LEVEL",
	TagPlayerTriples:          "PLAYER_TRIPLES",
	TagDefending:              "DEFENDING",
	TagBaconDuoTeamID:         "BACON_DUO_TEAM_ID",
}

func (t GameTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TAG_%d", int(t))
}

// Zone is a named location an entity occupies.
type Zone int

const (
	ZoneInvalid Zone = iota
	ZoneDeck
	ZoneHand
	ZonePlay
	ZoneGraveyard
	ZoneSecret
	ZoneSetAside
	ZoneRemovedFromGame
)

var zoneNames = map[Zone]string{
	ZoneInvalid:         "INVALID",
	ZoneDeck:            "DECK",
	ZoneHand:            "HAND",
	ZonePlay:            "PLAY",
	ZoneGraveyard:       "GRAVEYARD",
	ZoneSecret:          "SECRET",
	ZoneSetAside:        "SETASIDE",
	ZoneRemovedFromGame: "REMOVEDFROMGAME",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(z))
}

// Side distinguishes the two seats of a match.
type Side int

const (
	SideNeutral Side = iota
	SidePlayer
	SideOpponent
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "PLAYER"
	case SideOpponent:
		return "OPPONENT"
	default:
		return "NEUTRAL"
	}
}

// MulliganState values for TagMulliganState.
const (
	MulliganInvalid = iota
	MulliganInput
	MulliganDealing
	MulliganWaiting
	MulliganDone
)

// PlayState values for TagPlayState.
const (
	PlayStateInvalid = iota
	PlayStatePlaying
	PlayStateWinning
	PlayStateLosing
	PlayStateWon
	PlayStateLost
	PlayStateTied
	PlayStateDisconnected
	PlayStateConceded
)

// CardType values for TagCardType.
const (
	CardTypeInvalid = iota
	CardTypeGame
	CardTypePlayer
	CardTypeHero
	CardTypeMinion
	CardTypeSpell
	CardTypeEnchantment
	CardTypeWeapon
	CardTypeHeroPower
)

// GameMode is the coarse mode a match is played in.
type GameMode int

const (
	GameModeUnknown GameMode = iota
	GameModeRanked
	GameModeCasual
	GameModeArena
	GameModeBattlegrounds
	GameModeDuels
	GameModePractice
	GameModeAdventure
	GameModeFriendly
	GameModeSpectator
)

var gameModeNames = map[GameMode]string{
	GameModeUnknown:       "UNKNOWN",
	GameModeRanked:        "RANKED",
	GameModeCasual:        "CASUAL",
	GameModeArena:         "ARENA",
	GameModeBattlegrounds: "BATTLEGROUNDS",
	GameModeDuels:         "DUELS",
	GameModePractice:      "PRACTICE",
	GameModeAdventure:     "ADVENTURE",
	GameModeFriendly:      "FRIENDLY",
	GameModeSpectator:     "SPECTATOR",
}

func (m GameMode) String() string {
	if name, ok := gameModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MODE_%d", int(m))
}

// IsSinglePlayer reports whether the mode has no remote opponent. Such modes
// may never log an explicit end-of-match, which the lifecycle machine has to
// compensate for.
func (m GameMode) IsSinglePlayer() bool {
	switch m {
	case GameModePractice, GameModeAdventure:
		return true
	default:
		return false
	}
}

// Format is a ranked-ladder format.
type Format int

const (
	FormatUnknown Format = iota
	FormatStandard
	FormatWild
	FormatClassic
)

func (f Format) String() string {
	switch f {
	case FormatStandard:
		return "STANDARD"
	case FormatWild:
		return "WILD"
	case FormatClassic:
		return "CLASSIC"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of a match from the local player's perspective.
type Result int

const (
	ResultUnknown Result = iota
	ResultWin
	ResultLoss
	ResultTie
)

func (r Result) String() string {
	switch r {
	case ResultWin:
		return "WIN"
	case ResultLoss:
		return "LOSS"
	case ResultTie:
		return "TIE"
	default:
		return "UNKNOWN"
	}
}
