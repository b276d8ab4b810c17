package services

import (
	"fmt"

	"github.com/vitcanteen/canteen-backend/internal/models"
)

type actor int

const (
	actorOwner actor = iota
	actorOwningStudent
)

// edge is the single legal way into a target status.
type edge struct {
	from models.OrderStatus
	by   actor
}

// Every non-initial status has exactly one source. pending is only entered by
// creation.
var edges = map[models.OrderStatus]edge{
	models.StatusAccepted:  {from: models.StatusPending, by: actorOwner},
	models.StatusReady:     {from: models.StatusAccepted, by: actorOwner},
	models.StatusCompleted: {from: models.StatusReady, by: actorOwner},
	models.StatusCancelled: {from: models.StatusPending, by: actorOwningStudent},
}

// ParseStatus accepts exactly the five lifecycle values, case-sensitive.
func ParseStatus(s string) (models.OrderStatus, bool) {
	switch st := models.OrderStatus(s); st {
	case models.StatusPending, models.StatusAccepted, models.StatusReady,
		models.StatusCompleted, models.StatusCancelled:
		return st, true
	}
	return "", false
}

// parseTarget validates a requested transition target.
func parseTarget(s string) (models.OrderStatus, edge, error) {
	st, ok := ParseStatus(s)
	if !ok {
		return "", edge{}, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	e, ok := edges[st]
	if !ok {
		return "", edge{}, fmt.Errorf("%w: %s cannot be requested", ErrInvalidStatus, st)
	}
	return st, e, nil
}

func canTransition(from, to models.OrderStatus) bool {
	e, ok := edges[to]
	return ok && e.from == from
}

func isTerminal(s models.OrderStatus) bool {
	return s == models.StatusCompleted || s == models.StatusCancelled
}

func illegalTransition(current, to models.OrderStatus) error {
	if to == models.StatusCancelled {
		return fmt.Errorf("%w: order already processed", ErrIllegalTransition)
	}
	if isTerminal(current) {
		return fmt.Errorf("%w: order is already %s", ErrIllegalTransition, current)
	}
	return fmt.Errorf("%w: order is %s, cannot move to %s", ErrIllegalTransition, current, to)
}
