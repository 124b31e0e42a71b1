package orders

// ItemStatus is the per-line-item fulfillment stage. The spelling of the
// stored values is part of the wire format and must not change.
type ItemStatus string

const (
	StatusInPreparation ItemStatus = "in_preperation"
	StatusReadyToBeSent ItemStatus = "ready_to_be_sent"
	StatusSent          ItemStatus = "sent"
	StatusDelivered     ItemStatus = "delivered"
	StatusCancelled     ItemStatus = "cancelled"
)

// Forward-only, with cancellation allowed from any non-terminal state.
var validNext = map[ItemStatus]map[ItemStatus]bool{
	StatusInPreparation: {StatusReadyToBeSent: true, StatusCancelled: true},
	StatusReadyToBeSent: {StatusSent: true, StatusCancelled: true},
	StatusSent:          {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:     {},
	StatusCancelled:     {},
}

func CanTransition(from, to ItemStatus) bool {
	return validNext[from][to]
}

func ValidStatus(s ItemStatus) bool {
	_, ok := validNext[s]
	return ok
}

func Terminal(s ItemStatus) bool {
	return len(validNext[s]) == 0 && ValidStatus(s)
}

func (s ItemStatus) Label() string {
	switch s {
	case StatusInPreparation:
		return "En préparation"
	case StatusReadyToBeSent:
		return "Prêt à être envoyé"
	case StatusSent:
		return "Envoyé"
	case StatusDelivered:
		return "Livré"
	case StatusCancelled:
		return "Annulé"
	}
	return string(s)
}
