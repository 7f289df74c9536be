package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/utils"
)

var allowedTransitions = map[models.TableStatus][]models.TableStatus{
	models.TableFree:     {models.TableReserved, models.TableSeated},
	models.TableReserved: {models.TableSeated},
	models.TableSeated:   {models.TableDirty},
	models.TableDirty:    {models.TableFree},
}

// CanTransition reports whether from -> to is on the floor's status graph.
func CanTransition(from, to models.TableStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTargets lists the statuses reachable from from in one step.
func AllowedTargets(from models.TableStatus) []models.TableStatus {
	targets := allowedTransitions[from]
	out := make([]models.TableStatus, len(targets))
	copy(out, targets)
	return out
}

// TransitionRequest carries the target status and, for reserved, the time.
type TransitionRequest struct {
	Status          models.TableStatus `json:"status" binding:"required"`
	ReservationTime *time.Time         `json:"reservation_time"`
}

// StatusGuard validates and applies status changes.
type StatusGuard struct {
	store FloorStore
}

func NewStatusGuard(store FloorStore) *StatusGuard {
	return &StatusGuard{store: store}
}

// Transition -> ubah status meja kalau transisinya valid; field waktu dibersihkan di sini
func (g *StatusGuard) Transition(tableID string, req TransitionRequest) (models.Table, error) {
	var from models.TableStatus
	table, err := g.store.Update(tableID, func(t *models.Table) error {
		from = t.Status
		return ApplyTransition(t, req)
	})
	if err != nil {
		return models.Table{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id": tableID,
		"from":     from,
		"to":       table.Status,
	}).Info("table status changed")
	return table, nil
}

// ApplyTransition mutates t in place. On error t is not modified.
func ApplyTransition(t *models.Table, req TransitionRequest) error {
	if !req.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q (want one of %v)", models.ErrInvalidTransition, req.Status, models.TableStatuses())
	}
	if !CanTransition(t.Status, req.Status) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, t.Status, req.Status)
	}

	switch req.Status {
	case models.TableReserved:
		if req.ReservationTime == nil {
			return fmt.Errorf("%w: reservation_time is required to reserve a table", models.ErrMissingField)
		}
		rt := *req.ReservationTime
		t.ReservationTime = &rt
		t.SeatedDuration = nil
	case models.TableSeated:
		zero := models.Duration(0)
		t.SeatedDuration = &zero
		t.ReservationTime = nil
	case models.TableDirty, models.TableFree:
		t.ReservationTime = nil
		t.SeatedDuration = nil
	}
	// pacing is tracked per seating
	t.OverlayMarkers = withoutMarker(t.OverlayMarkers, PacingMarker)
	t.Status = req.Status
	return nil
}
