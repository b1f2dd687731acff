package game

// AreaFlag marks the semantic role of an Area. Roles are not mutually
// exclusive by construction, but conventionally each area carries one.
type AreaFlag string

const (
	FlagPlayArea    AreaFlag = "PLAY_AREA"
	FlagDrawArea    AreaFlag = "DRAW_AREA"
	FlagHandArea    AreaFlag = "HAND_AREA"
	FlagDiscardArea AreaFlag = "DISCARD_AREA"
)

// AreaFlags is the set of roles an area carries.
type AreaFlags map[AreaFlag]bool

// NewAreaFlags builds a flag set from the provided roles.
func NewAreaFlags(flags ...AreaFlag) AreaFlags {
	set := make(AreaFlags, len(flags))
	for _, f := range flags {
		set[f] = true
	}
	return set
}

// Has reports whether the area carries the given role.
func (s AreaFlags) Has(f AreaFlag) bool { return s[f] }

// CardFlag is a behavioral modifier on a card, consulted by the kernel's
// default move policy and eligibility checks.
type CardFlag string

const (
	// FlagPlayAnyTime marks a card that can be played even when it is not
	// the player's turn, without using up a play action.
	FlagPlayAnyTime CardFlag = "PLAY_ANY_TIME"
	// FlagAlwaysGetEvents marks a card whose handlers are polled and
	// notified even while it is not in a play area.
	FlagAlwaysGetEvents CardFlag = "ALWAYS_GET_EVENTS"
	// FlagOnlyPlayToSelf restricts the card to the playing player's own area.
	FlagOnlyPlayToSelf CardFlag = "ONLY_PLAY_TO_SELF"
	// FlagNoPlayToSelf forbids playing the card to the playing player's own area.
	FlagNoPlayToSelf CardFlag = "NO_PLAY_TO_SELF"
	// FlagOnlyPlayToCenter restricts the card to the shared center area.
	FlagOnlyPlayToCenter CardFlag = "ONLY_PLAY_TO_CENTER"
	// FlagNoPlayToCenter forbids playing the card to the shared center area.
	FlagNoPlayToCenter CardFlag = "NO_PLAY_TO_CENTER"
)

// CardFlags is the set of behavioral modifiers on a card.
type CardFlags map[CardFlag]bool

// NewCardFlags builds a flag set from the provided modifiers.
func NewCardFlags(flags ...CardFlag) CardFlags {
	set := make(CardFlags, len(flags))
	for _, f := range flags {
		set[f] = true
	}
	return set
}

// Has reports whether the card carries the given modifier.
func (s CardFlags) Has(f CardFlag) bool { return s[f] }

// Tags is a free-form string set other cards key off of.
type Tags map[string]bool

// NewTags builds a tag set from the provided strings.
func NewTags(tags ...string) Tags {
	set := make(Tags, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}

// Has reports whether the tag is present.
func (t Tags) Has(tag string) bool { return t[tag] }
