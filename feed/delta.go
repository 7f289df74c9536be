package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/utils"
)

// Delta is one message from an external event feed: the full record for a table.
type Delta struct {
	TableID string       `json:"table_id"`
	Table   models.Table `json:"table"`
}

// Sink receives decoded deltas. The table store satisfies it.
type Sink interface {
	Upsert(table models.Table)
}

// Source is an external producer of table deltas. Run blocks until ctx is
// done or the source fails.
type Source interface {
	Name() string
	Run(ctx context.Context, sink Sink) error
}

// Decode parses and checks a raw feed payload.
func Decode(payload []byte) (Delta, error) {
	var d Delta
	if err := json.Unmarshal(payload, &d); err != nil {
		return Delta{}, fmt.Errorf("decode delta: %w", err)
	}
	return d.Normalize()
}

// Normalize fills the record id from table_id, rejects mismatched ids and
// invalid records. The HTTP upsert goes through the same checks.
func (d Delta) Normalize() (Delta, error) {
	if d.Table.ID == "" {
		d.Table.ID = d.TableID
	}
	if d.TableID != d.Table.ID {
		return Delta{}, fmt.Errorf("delta table_id %q does not match record id %q", d.TableID, d.Table.ID)
	}
	if err := d.Table.Validate(); err != nil {
		return Delta{}, err
	}
	d.Table.DropInapplicableTimes()
	if d.Table.Alerts == nil {
		d.Table.Alerts = []models.Alert{}
	}
	return d, nil
}

// Apply decodes payload and upserts it. Bad payloads are logged and skipped
// so a single malformed message never stops a feed.
func Apply(source string, payload []byte, sink Sink) bool {
	d, err := Decode(payload)
	if err != nil {
		utils.ErrorLogger.WithField("source", source).Warnf("dropping feed message: %v", err)
		return false
	}
	sink.Upsert(d.Table)
	utils.InfoLogger.WithFields(logrus.Fields{
		"source":   source,
		"table_id": d.TableID,
		"status":   d.Table.Status,
	}).Debug("feed delta applied")
	return true
}

// RunAll starts every source on its own goroutine and logs when one stops.
func RunAll(ctx context.Context, sink Sink, sources ...Source) {
	for _, src := range sources {
		go func(src Source) {
			utils.InfoLogger.Printf("event feed %s started", src.Name())
			if err := src.Run(ctx, sink); err != nil && ctx.Err() == nil {
				utils.ErrorLogger.Errorf("event feed %s stopped: %v", src.Name(), err)
				return
			}
			utils.InfoLogger.Printf("event feed %s stopped", src.Name())
		}(src)
	}
}
