package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/utils"
)

// FloorStore is the part of the table store the floor services write through.
type FloorStore interface {
	Get(id string) (models.Table, bool)
	Update(id string, fn func(*models.Table) error) (models.Table, error)
}

// AlertPipeline attaches and clears alerts on tables.
type AlertPipeline struct {
	store FloorStore
	now   func() time.Time
}

func NewAlertPipeline(store FloorStore) *AlertPipeline {
	return &AlertPipeline{store: store, now: time.Now}
}

// Attach -> tambahkan alert di akhir daftar (urutan kedatangan, tanpa dedup per kind)
func (p *AlertPipeline) Attach(tableID string, alert models.Alert) (models.Table, error) {
	if err := alert.Validate(); err != nil {
		return models.Table{}, err
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = p.now()
	}
	alert = alert.Clone()

	table, err := p.store.Update(tableID, func(t *models.Table) error {
		t.Alerts = append(t.Alerts, alert)
		return nil
	})
	if err != nil {
		return models.Table{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id": tableID,
		"kind":     alert.Kind,
		"severity": alert.Severity,
	}).Info("alert attached")
	return table, nil
}

// Dismiss removes the alert at index in the table's current sequence. The
// index is checked against the record as it is now, inside the store's
// read-modify-write, not against whatever the caller read earlier.
func (p *AlertPipeline) Dismiss(tableID string, index int) (models.Table, error) {
	return p.dismiss(tableID, index, false)
}

// DismissActionable is Dismiss for staff-facing clears: only alerts that
// require action can be cleared (ErrNotDismissible otherwise).
func (p *AlertPipeline) DismissActionable(tableID string, index int) (models.Table, error) {
	return p.dismiss(tableID, index, true)
}

func (p *AlertPipeline) dismiss(tableID string, index int, actionableOnly bool) (models.Table, error) {
	var removed models.Alert
	table, err := p.store.Update(tableID, func(t *models.Table) error {
		if index < 0 || index >= len(t.Alerts) {
			return fmt.Errorf("table %s index %d (have %d): %w", tableID, index, len(t.Alerts), models.ErrOutOfRange)
		}
		if actionableOnly && !t.Alerts[index].ActionRequired {
			return fmt.Errorf("table %s index %d: %w", tableID, index, models.ErrNotDismissible)
		}
		removed = t.Alerts[index]
		alerts := make([]models.Alert, 0, len(t.Alerts)-1)
		alerts = append(alerts, t.Alerts[:index]...)
		t.Alerts = append(alerts, t.Alerts[index+1:]...)
		return nil
	})
	if err != nil {
		return models.Table{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id": tableID,
		"index":    index,
		"kind":     removed.Kind,
	}).Info("alert dismissed")
	return table, nil
}

// VisibleForRole filters alerts down to the ones role may see, keeping order.
func VisibleForRole(table models.Table, role models.Role) []models.Alert {
	out := make([]models.Alert, 0, len(table.Alerts))
	for _, a := range table.Alerts {
		if a.VisibleFor(role) {
			out = append(out, a.Clone())
		}
	}
	return out
}

// SeverityGroup is one bucket of the read-time severity projection.
type SeverityGroup struct {
	Severity models.Severity `json:"severity"`
	Alerts   []models.Alert  `json:"alerts"`
}

// GroupBySeverity buckets alerts high, medium, low for display. Within each
// bucket the original arrival order is kept; the input is not modified.
func GroupBySeverity(alerts []models.Alert) []SeverityGroup {
	groups := make([]SeverityGroup, 0, len(models.Severities))
	for _, sev := range models.Severities {
		g := SeverityGroup{Severity: sev, Alerts: []models.Alert{}}
		for _, a := range alerts {
			if a.Severity == sev {
				g.Alerts = append(g.Alerts, a.Clone())
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// WithRoleView returns a copy of table whose alerts are filtered for role.
// An empty role returns the table untouched.
func WithRoleView(table models.Table, role models.Role) models.Table {
	if role == "" {
		return table
	}
	out := table.Clone()
	out.Alerts = VisibleForRole(table, role)
	return out
}
