package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/store"
	"github.com/yeremiapane/dinecommand/utils"
)

const PacingMarker = "pacing"

// PacingStore is what the pacing monitor needs from the table store.
type PacingStore interface {
	FloorStore
	ListFiltered(pred store.Predicate) []models.Table
}

// PacingMonitor is the in-process event feed: on every tick it advances the
// seated duration of seated tables and raises a slow_pacing alert once a
// table has been seated longer than Threshold.
type PacingMonitor struct {
	Store     PacingStore
	StopChan  chan struct{}
	Interval  time.Duration
	Threshold time.Duration

	now      func() time.Time
	lastTick time.Time
}

func NewPacingMonitor(s PacingStore, interval, threshold time.Duration) *PacingMonitor {
	return &PacingMonitor{
		Store:     s,
		StopChan:  make(chan struct{}),
		Interval:  interval,
		Threshold: threshold,
		now:       time.Now,
	}
}

func (pm *PacingMonitor) Start() {
	pm.lastTick = pm.now()
	go func() {
		ticker := time.NewTicker(pm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				pm.Tick()
			case <-pm.StopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Printf("Pacing monitor started (interval=%s, threshold=%s)", pm.Interval, pm.Threshold)
}

func (pm *PacingMonitor) Stop() {
	close(pm.StopChan)
}

// Tick runs one pacing pass. Each table is handled by its own atomic
// read-modify-write, so feed upserts landing in between are never clobbered.
func (pm *PacingMonitor) Tick() int {
	now := pm.now()
	if pm.lastTick.IsZero() {
		pm.lastTick = now
	}
	elapsed := now.Sub(pm.lastTick)
	pm.lastTick = now

	raised := 0
	seated := pm.Store.ListFiltered(func(t models.Table) bool { return t.Status == models.TableSeated })
	for _, t := range seated {
		var alerted bool
		_, err := pm.Store.Update(t.ID, func(cur *models.Table) error {
			alerted = false
			// status may have moved on since the listing
			if cur.Status != models.TableSeated {
				return nil
			}
			var d time.Duration
			if cur.SeatedDuration != nil {
				d = time.Duration(*cur.SeatedDuration)
			}
			d += elapsed
			sd := models.Duration(d)
			cur.SeatedDuration = &sd

			// the marker records that this seating was already flagged, so a
			// dismissed alert is not raised again
			if pm.Threshold > 0 && d >= pm.Threshold && !hasMarker(cur.OverlayMarkers, PacingMarker) {
				cur.Alerts = append(cur.Alerts, SlowPacingAlert(d, now))
				cur.OverlayMarkers = append(cur.OverlayMarkers, PacingMarker)
				alerted = true
			}
			return nil
		})
		if err != nil {
			utils.ErrorLogger.WithField("table_id", t.ID).Warnf("pacing update skipped: %v", err)
			continue
		}
		if alerted {
			raised++
			utils.InfoLogger.WithFields(logrus.Fields{
				"table_id": t.ID,
				"label":    t.Label,
			}).Info("slow pacing alert raised")
		}
	}
	return raised
}

// SlowPacingAlert -> alert standar untuk meja yang terlalu lama duduk
func SlowPacingAlert(seatedFor time.Duration, at time.Time) models.Alert {
	return models.Alert{
		Kind:           models.AlertSlowPacing,
		Severity:       models.SeverityHigh,
		Message:        fmt.Sprintf("Pacing alert! Seated for %s.", seatedFor.Round(time.Minute)),
		CreatedAt:      at,
		ActionRequired: true,
		VisibleTo:      []models.Role{models.RoleServer, models.RoleManager},
	}
}

func withoutMarker(markers []string, m string) []string {
	out := make([]string, 0, len(markers))
	for _, x := range markers {
		if x != m {
			out = append(out, x)
		}
	}
	return out
}

func hasMarker(markers []string, m string) bool {
	for _, x := range markers {
		if x == m {
			return true
		}
	}
	return false
}
