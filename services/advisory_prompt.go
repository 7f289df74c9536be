package services

import (
	"encoding/json"
	"fmt"

	"github.com/yeremiapane/dinecommand/models"
)

const (
	UnknownGuestNotes = "Unknown guest"
	UnassignedServer  = "Unassigned"
)

// TableSnapshot is the point-in-time view of a table sent for analysis.
type TableSnapshot struct {
	TableStatus models.TableStatus `json:"table_status"`
	Duration    *models.Duration   `json:"duration,omitempty"`
	IsVIP       bool               `json:"is_vip"`
	Alerts      []string           `json:"alerts"`
	GuestNotes  string             `json:"guest_notes"`
	GuestSpend  *float64           `json:"guest_spend,omitempty"`
	Server      string             `json:"server"`
}

// BuildSnapshot copies what the advisory needs out of table and its directory entries.
func BuildSnapshot(table models.Table, guest *models.Guest, staff *models.Staff) TableSnapshot {
	snap := TableSnapshot{
		TableStatus: table.Status,
		IsVIP:       table.IsVIP,
		Alerts:      make([]string, 0, len(table.Alerts)),
		GuestNotes:  UnknownGuestNotes,
		Server:      UnassignedServer,
	}
	if table.Status == models.TableSeated && table.SeatedDuration != nil {
		d := *table.SeatedDuration
		snap.Duration = &d
	}
	for _, a := range table.Alerts {
		snap.Alerts = append(snap.Alerts, a.Message)
	}
	if guest != nil {
		if guest.Notes != nil && *guest.Notes != "" {
			snap.GuestNotes = *guest.Notes
		}
		spend := guest.AverageSpend
		snap.GuestSpend = &spend
	}
	if staff != nil && staff.Name != "" {
		snap.Server = staff.Name
	}
	return snap
}

const advisoryInstructions = `You are an expert Restaurant Manager AI. Analyze the following table context and provide actionable insights for the floor manager.

Context: %s

Provide:
1. A brief analysis of the situation (max 2 sentences).
2. Three concrete suggested actions for the staff.
3. A priority score from 1-10 (10 being urgent intervention needed).

Respond with JSON only: {"analysis": string, "suggested_actions": string[], "priority_score": number}.`

// BuildPrompt embeds the snapshot into the fixed advisory instruction.
func BuildPrompt(snap TableSnapshot) (string, error) {
	ctx, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return fmt.Sprintf(advisoryInstructions, ctx), nil
}

// validateAdvisory rejects responses that parsed but are not usable.
func validateAdvisory(res models.AdvisoryResult) error {
	if res.Analysis == "" {
		return fmt.Errorf("empty analysis")
	}
	if res.PriorityScore < 0 || res.PriorityScore > models.MaxPriorityScore {
		return fmt.Errorf("priority score %d outside 0-%d", res.PriorityScore, models.MaxPriorityScore)
	}
	return nil
}
