package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dinecommand/config"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/utils"
)

// Advisor is the external insight-generation capability.
type Advisor interface {
	Analyze(ctx context.Context, prompt string) (models.AdvisoryResult, error)
}

// Directory resolves the weak guest/staff references held by tables.
type Directory interface {
	Guest(id string) (*models.Guest, bool)
	Staff(id string) (*models.Staff, bool)
}

type flight struct {
	done   chan struct{}
	result models.AdvisoryResult
}

// AdvisoryDispatcher issues advisory calls with at most one external call in
// flight per table id. Calls run on their own goroutine, detached from the
// requesting context, and always resolve to a result (fallback on failure).
type AdvisoryDispatcher struct {
	store     FloorStore
	directory Directory
	advisor   Advisor
	policy    config.PendingPolicy
	timeout   time.Duration

	mu      sync.Mutex
	flights map[string]*flight

	calls atomic.Int64
}

func NewAdvisoryDispatcher(store FloorStore, directory Directory, advisor Advisor, cfg config.AdvisoryConfig) *AdvisoryDispatcher {
	policy := cfg.PendingPolicy
	if policy == "" {
		policy = config.PolicyCoalesce
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &AdvisoryDispatcher{
		store:     store,
		directory: directory,
		advisor:   advisor,
		policy:    policy,
		timeout:   timeout,
		flights:   make(map[string]*flight),
	}
}

// Analyze returns the advisory result for tableID. A concurrent request for
// the same id either joins the pending call (coalesce) or gets
// ErrAlreadyPending (reject). If ctx ends first the call keeps running and
// its result is simply not delivered to this caller.
func (d *AdvisoryDispatcher) Analyze(ctx context.Context, tableID string) (models.AdvisoryResult, error) {
	d.mu.Lock()
	f, pending := d.flights[tableID]
	if pending && d.policy == config.PolicyReject {
		d.mu.Unlock()
		return models.AdvisoryResult{}, fmt.Errorf("table %s: %w", tableID, models.ErrAlreadyPending)
	}
	if !pending {
		table, ok := d.store.Get(tableID)
		if !ok {
			d.mu.Unlock()
			return models.AdvisoryResult{}, fmt.Errorf("table %s: %w", tableID, models.ErrTableNotFound)
		}
		f = &flight{done: make(chan struct{})}
		d.flights[tableID] = f
		go d.run(tableID, table, f)
	}
	d.mu.Unlock()

	select {
	case <-f.done:
		return f.result.Clone(), nil
	case <-ctx.Done():
		return models.AdvisoryResult{}, ctx.Err()
	}
}

// Admit reports whether a request for tableID would be accepted right now:
// ErrTableNotFound for unknown ids, ErrAlreadyPending under the reject policy.
func (d *AdvisoryDispatcher) Admit(tableID string) error {
	if _, ok := d.store.Get(tableID); !ok {
		return fmt.Errorf("table %s: %w", tableID, models.ErrTableNotFound)
	}
	if d.policy == config.PolicyReject && d.Pending(tableID) {
		return fmt.Errorf("table %s: %w", tableID, models.ErrAlreadyPending)
	}
	return nil
}

// Pending reports whether tableID has a call in flight.
func (d *AdvisoryDispatcher) Pending(tableID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.flights[tableID]
	return ok
}

// ExternalCalls is the number of calls made to the advisor so far.
func (d *AdvisoryDispatcher) ExternalCalls() int64 {
	return d.calls.Load()
}

func (d *AdvisoryDispatcher) run(tableID string, table models.Table, f *flight) {
	result := d.resolve(tableID, table)

	d.mu.Lock()
	delete(d.flights, tableID)
	f.result = result
	close(f.done)
	d.mu.Unlock()
}

func (d *AdvisoryDispatcher) resolve(tableID string, table models.Table) models.AdvisoryResult {
	log := utils.InfoLogger.WithField("table_id", tableID)

	var guest *models.Guest
	var staff *models.Staff
	if d.directory != nil {
		if table.GuestID != nil {
			guest, _ = d.directory.Guest(*table.GuestID)
		}
		if table.ServerID != nil {
			staff, _ = d.directory.Staff(*table.ServerID)
		}
	}

	prompt, err := BuildPrompt(BuildSnapshot(table, guest, staff))
	if err != nil {
		return d.fallback(tableID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	d.calls.Add(1)
	start := time.Now()
	result, err := d.advisor.Analyze(ctx, prompt)
	if err != nil {
		return d.fallback(tableID, err)
	}
	if err := validateAdvisory(result); err != nil {
		return d.fallback(tableID, fmt.Errorf("malformed advisory: %w", err))
	}

	log.WithFields(logrus.Fields{
		"priority": result.PriorityScore,
		"latency":  time.Since(start).String(),
	}).Info("advisory analysis completed")
	return result.Clone()
}

func (d *AdvisoryDispatcher) fallback(tableID string, err error) models.AdvisoryResult {
	utils.ErrorLogger.WithField("table_id", tableID).Warnf("advisory analysis failed, using fallback: %v", err)
	return models.FallbackAdvisory()
}

// ConsoleState is what a staff console shows for its selected table.
type ConsoleState struct {
	SelectedTableID string                 `json:"selected_table_id"`
	Pending         bool                   `json:"pending"`
	Result          *models.AdvisoryResult `json:"result,omitempty"`
}

// Console tracks one staff member's focus and the advisory results cached for it.
// Moving focus to another table drops the cached result of the table left behind.
type Console struct {
	dispatcher *AdvisoryDispatcher

	mu         sync.Mutex
	selected   string
	generation uint64
	cache      map[string]models.AdvisoryResult
	pending    map[string]int
}

func NewConsole(dispatcher *AdvisoryDispatcher) *Console {
	return &Console{
		dispatcher: dispatcher,
		cache:      make(map[string]models.AdvisoryResult),
		pending:    make(map[string]int),
	}
}

// Select -> pindah fokus ke meja lain; cache meja sebelumnya dibuang
func (c *Console) Select(tableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectLocked(tableID)
}

func (c *Console) selectLocked(tableID string) {
	if tableID == c.selected {
		return
	}
	delete(c.cache, c.selected)
	c.selected = tableID
	c.generation++
}

// Selected returns the table id currently in focus ("" when none).
func (c *Console) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// RequestAnalysis focuses tableID and asks for a fresh analysis. The result is
// cached only if focus is still on the same table when the call resolves.
// A rejected request leaves focus and cache as they were.
func (c *Console) RequestAnalysis(ctx context.Context, tableID string) (models.AdvisoryResult, error) {
	if err := c.dispatcher.Admit(tableID); err != nil {
		return models.AdvisoryResult{}, err
	}

	c.mu.Lock()
	c.selectLocked(tableID)
	gen := c.generation
	c.pending[tableID]++
	c.mu.Unlock()

	result, err := c.dispatcher.Analyze(ctx, tableID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[tableID]--
	if c.pending[tableID] <= 0 {
		delete(c.pending, tableID)
	}
	if err != nil {
		return models.AdvisoryResult{}, err
	}
	if c.generation == gen && c.selected == tableID {
		c.cache[tableID] = result.Clone()
	}
	return result, nil
}

// Cached returns the cached result for tableID, if any.
func (c *Console) Cached(tableID string) (models.AdvisoryResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.cache[tableID]
	if !ok {
		return models.AdvisoryResult{}, false
	}
	return res.Clone(), true
}

// State reports focus, pending flag and cached result for the selected table.
func (c *Console) State() ConsoleState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := ConsoleState{SelectedTableID: c.selected}
	if c.selected == "" {
		return st
	}
	st.Pending = c.pending[c.selected] > 0 || c.dispatcher.Pending(c.selected)
	if res, ok := c.cache[c.selected]; ok {
		r := res.Clone()
		st.Result = &r
	}
	return st
}
