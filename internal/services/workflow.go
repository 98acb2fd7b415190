package services

import "judicial-archive/internal/models"

var transitions = map[models.Status][]models.Status{
	models.StatusPending:  {models.StatusActive},
	models.StatusActive:   {models.StatusArchived},
	models.StatusArchived: {models.StatusActive},
}

// CanTransition reports whether a document may move from one status to
// another under the enforced workflow. Staying put is always allowed.
func CanTransition(from, to models.Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses reachable from s in one step.
func NextStatuses(s models.Status) []models.Status {
	return append([]models.Status(nil), transitions[s]...)
}
