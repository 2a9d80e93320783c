package library

// CardType is the patron category, stored as a single character.
type CardType string

const (
	CardTypeStudent CardType = "S"
	CardTypeTeacher CardType = "T"
)

// ParseCardType accepts the stored single-character form as well as the
// spelled-out names used on the wire.
func ParseCardType(s string) (CardType, error) {
	switch s {
	case "S", "Student", "student":
		return CardTypeStudent, nil
	case "T", "Teacher", "teacher":
		return CardTypeTeacher, nil
	default:
		return "", ErrInvalidCardType
	}
}

// IsValid reports whether the card type is one of the two allowed values.
func (t CardType) IsValid() bool {
	return t == CardTypeStudent || t == CardTypeTeacher
}

// Card represents one patron card. CardID is assigned by the store on
// registration. The tuple (Name, Department, Type) is the natural key and must
// be unique across all cards.
type Card struct {
	CardID     int64
	Name       string
	Department string
	Type       CardType
}

// Validate checks the invariants a card must satisfy before it can be stored.
func (c Card) Validate() error {
	if !c.Type.IsValid() {
		return ErrInvalidCardType
	}

	return nil
}

// CardList holds all registered cards, ordered by CardID ascending.
type CardList struct {
	Count int
	Cards []Card
}
