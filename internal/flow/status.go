package flow

import "github.com/casaflow/casaflow/internal/domain"

// statusTransitions defines the legal property-status moves. Each key is a
// source status, the value is the set of valid targets. reserved->published
// is the cancel/re-publish edge; sold is terminal.
var statusTransitions = map[domain.PropertyStatus]map[domain.PropertyStatus]bool{
	domain.StatusPurchased:  {domain.StatusRenovating: true},
	domain.StatusRenovating: {domain.StatusPublished: true, domain.StatusPurchased: true},
	domain.StatusPublished:  {domain.StatusReserved: true, domain.StatusRenovating: true},
	domain.StatusReserved:   {domain.StatusSold: true, domain.StatusPublished: true},
	domain.StatusSold:       {},
}

// IsValidStatusTransition checks if a property-status transition is legal.
func IsValidStatusTransition(from, to domain.PropertyStatus) bool {
	targets, ok := statusTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}
