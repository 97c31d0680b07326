package tracker

import "time"

// FactType indicates the category of an observed game fact.
type FactType string

const (
	// Lifecycle facts
	FactGameStart   FactType = "GAME_START"
	FactGameEnd     FactType = "GAME_END"
	FactEnteredMenu FactType = "ENTERED_MENU"

	// Entity facts
	FactEntityCreated FactType = "ENTITY_CREATED"
	FactEntityUpdated FactType = "ENTITY_UPDATED"
	FactTagChange     FactType = "TAG_CHANGE"
	FactShowEntity    FactType = "SHOW_ENTITY" // hidden entity gains a card id
	FactFullEntity    FactType = "FULL_ENTITY"
	FactChangeEntity  FactType = "CHANGE_ENTITY" // card id corrected after the fact

	// Zone-transition facts, one per named ledger operation
	FactCreateInHand    FactType = "CREATE_IN_HAND"
	FactCreateInDeck    FactType = "CREATE_IN_DECK"
	FactCreateInPlay    FactType = "CREATE_IN_PLAY"
	FactCreateInSecret  FactType = "CREATE_IN_SECRET"
	FactDraw            FactType = "DRAW"
	FactPlay            FactType = "PLAY"
	FactHandToDeck      FactType = "HAND_TO_DECK"
	FactHandToPlay      FactType = "HAND_TO_PLAY"
	FactPlayToGraveyard FactType = "PLAY_TO_GRAVEYARD"
	FactPlayToHand      FactType = "PLAY_TO_HAND"
	FactPlayToDeck      FactType = "PLAY_TO_DECK"
	FactDeckToGraveyard FactType = "DECK_TO_GRAVEYARD"
	FactSecretTriggered FactType = "SECRET_TRIGGERED"
	FactRemoveFromPlay  FactType = "REMOVE_FROM_PLAY"

	// Turn boundary
	FactTurnStart FactType = "TURN_START"

	// Combat-adjacent facts forwarded to the secret watcher
	FactAttack    FactType = "ATTACK"
	FactHeroPower FactType = "HERO_POWER"
	FactDamage    FactType = "DAMAGE"
	FactArmorLost FactType = "ARMOR_LOST"
)

// Fact is one atomic, timestamped observation from the fact source. Fields
// are interpreted per FactType; unused fields stay zero.
type Fact struct {
	Type      FactType
	Timestamp time.Time // logical ordering timestamp attached by the source
	EntityID  int
	TargetID  int // attack defender, damage target
	CardID    string
	Name      string
	Tag       GameTag
	Value     int
	Previous  int
	Side      Side
	Turn      int
}

// FactSource is the external producer of ordered facts.
type FactSource interface {
	// Facts returns the channel the source delivers facts on. The channel is
	// closed when the source is exhausted.
	Facts() <-chan Fact
}
