package models

import (
	"fmt"
	"time"
)

type AlertKind string

const (
	AlertSlowPacing AlertKind = "slow_pacing"
	AlertVIPSeated  AlertKind = "vip_seated"
	AlertLowRating  AlertKind = "low_rating"
	AlertHighSpend  AlertKind = "high_spend"
)

func (k AlertKind) Valid() bool {
	switch k {
	case AlertSlowPacing, AlertVIPSeated, AlertLowRating, AlertHighSpend:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Severities in display order, highest first.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// Rank orders severities for display grouping: high=3, medium=2, low=1, unknown=0.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

type Role string

const (
	RoleServer  Role = "server"
	RoleHost    Role = "host"
	RoleManager Role = "manager"
)

func (r Role) Valid() bool {
	switch r {
	case RoleServer, RoleHost, RoleManager:
		return true
	}
	return false
}

// Alert is an operational notice on a table. VisibleTo always holds the full
// role set; filtering by caller role happens at read time.
type Alert struct {
	Kind           AlertKind `json:"type"`
	Severity       Severity  `json:"severity"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
	ActionRequired bool      `json:"action_required"`
	VisibleTo      []Role    `json:"visible_to"`
}

func (a Alert) Clone() Alert {
	out := a
	if a.VisibleTo != nil {
		out.VisibleTo = append([]Role(nil), a.VisibleTo...)
	}
	return out
}

func (a Alert) Validate() error {
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAlert, a.Kind)
	}
	if !a.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidAlert, a.Severity)
	}
	for _, r := range a.VisibleTo {
		if !r.Valid() {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidAlert, r)
		}
	}
	return nil
}

// VisibleFor reports whether role is in the alert's visibility set.
func (a Alert) VisibleFor(role Role) bool {
	for _, r := range a.VisibleTo {
		if r == role {
			return true
		}
	}
	return false
}
