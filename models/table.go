package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type TableStatus string

const (
	TableFree     TableStatus = "free"
	TableReserved TableStatus = "reserved"
	TableSeated   TableStatus = "seated"
	TableDirty    TableStatus = "dirty"
)

var tableStatuses = []TableStatus{TableFree, TableReserved, TableSeated, TableDirty}

// Valid -> true kalau status termasuk salah satu dari empat status meja
func (s TableStatus) Valid() bool {
	switch s {
	case TableFree, TableReserved, TableSeated, TableDirty:
		return true
	}
	return false
}

// TableStatuses returns every known status in floor order.
func TableStatuses() []TableStatus {
	out := make([]TableStatus, len(tableStatuses))
	copy(out, tableStatuses)
	return out
}

// Duration is a time.Duration that travels as text ("45m0s") in JSON.
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Table is one seating position on the floor. GuestID and ServerID are weak
// references into the guest/staff directory; a dangling id is not an error.
// ReservationTime is only meaningful while reserved, SeatedDuration only while seated.
type Table struct {
	ID              string      `json:"id"`
	Label           string      `json:"label"`
	Status          TableStatus `json:"status"`
	GuestID         *string     `json:"guest_id,omitempty"`
	ServerID        *string     `json:"server_id,omitempty"`
	OrderID         *string     `json:"order_id,omitempty"`
	Alerts          []Alert     `json:"alerts"`
	OverlayMarkers  []string    `json:"overlay_markers"`
	Highlight       string      `json:"highlight,omitempty"`
	IsVIP           bool        `json:"is_vip"`
	ReservationTime *time.Time  `json:"reservation_time,omitempty"`
	SeatedDuration  *Duration   `json:"seated_duration,omitempty"`
}

// DropInapplicableTimes clears the time field that does not belong to the
// current status: SeatedDuration unless seated, ReservationTime unless reserved.
func (t *Table) DropInapplicableTimes() {
	if t.Status != TableSeated {
		t.SeatedDuration = nil
	}
	if t.Status != TableReserved {
		t.ReservationTime = nil
	}
}

// Clone returns a deep copy so callers never share slices or pointers with the store.
func (t Table) Clone() Table {
	out := t
	out.GuestID = cloneString(t.GuestID)
	out.ServerID = cloneString(t.ServerID)
	out.OrderID = cloneString(t.OrderID)
	if t.Alerts != nil {
		out.Alerts = make([]Alert, len(t.Alerts))
		for i, a := range t.Alerts {
			out.Alerts[i] = a.Clone()
		}
	}
	if t.OverlayMarkers != nil {
		out.OverlayMarkers = append([]string(nil), t.OverlayMarkers...)
	}
	if t.ReservationTime != nil {
		rt := *t.ReservationTime
		out.ReservationTime = &rt
	}
	if t.SeatedDuration != nil {
		sd := *t.SeatedDuration
		out.SeatedDuration = &sd
	}
	return out
}

// Validate checks the record that arrives from a feed or the API before it is upserted.
func (t Table) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("table id is required")
	}
	if !t.Status.Valid() {
		return fmt.Errorf("unknown table status %q", t.Status)
	}
	for i, a := range t.Alerts {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("alert %d: %w", i, err)
		}
	}
	return nil
}

// HasAlertKind -> cek apakah meja sudah punya alert dengan kind tertentu
func (t Table) HasAlertKind(kind AlertKind) bool {
	for _, a := range t.Alerts {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
