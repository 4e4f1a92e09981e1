package models

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

var actions = map[string]Status{
	"confirm": StatusConfirmed,
	"reject":  StatusRejected,
	"ship":    StatusShipped,
	"deliver": StatusDelivered,
	"cancel":  StatusCancelled,
}

// ActionTarget maps an admin action such as "ship" to the status it sets.
func ActionTarget(action string) (Status, bool) {
	s, ok := actions[action]
	return s, ok
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal statuses have no outgoing transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// ReleasesStock reports whether entering s returns reserved stock to the catalog.
func (s Status) ReleasesStock() bool {
	return s == StatusRejected || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}
