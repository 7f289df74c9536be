package store

import (
	"fmt"
	"sync"

	"github.com/yeremiapane/dinecommand/models"
)

// Stats are the floor aggregates shown in the header.
type Stats struct {
	SeatedCount     int `json:"seated"`
	TotalAlertCount int `json:"alerts"`
	VIPSeatedCount  int `json:"vip"`
}

// Change is published to subscribers after every successful write.
type Change struct {
	Table models.Table `json:"table"`
	Stats Stats        `json:"stats"`
}

// Predicate selects tables for ListFiltered.
type Predicate func(models.Table) bool

var (
	FilterAll   Predicate = func(models.Table) bool { return true }
	FilterAlert Predicate = func(t models.Table) bool { return len(t.Alerts) > 0 }
	FilterVIP   Predicate = func(t models.Table) bool { return t.IsVIP }
)

// ParseFilter maps the standing filter names used by the floor view.
func ParseFilter(name string) (Predicate, error) {
	switch name {
	case "", "all":
		return FilterAll, nil
	case "alert":
		return FilterAlert, nil
	case "vip":
		return FilterVIP, nil
	}
	return nil, fmt.Errorf("unknown filter %q", name)
}

// TableStore is the single source of truth for table state. Every record is
// copied on the way in and on the way out, so no caller can observe or cause
// a partially updated table.
type TableStore struct {
	mu     sync.RWMutex
	tables map[string]models.Table
	order  []string

	subMu  sync.Mutex
	subs   map[int]chan Change
	nextID int
}

func NewTableStore() *TableStore {
	return &TableStore{
		tables: make(map[string]models.Table),
		subs:   make(map[int]chan Change),
	}
}

// Get -> ambil satu meja berdasarkan id
func (s *TableStore) Get(id string) (models.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	if !ok {
		return models.Table{}, false
	}
	return t.Clone(), true
}

// Upsert replaces the whole record for table.ID, inserting it if new.
func (s *TableStore) Upsert(table models.Table) {
	s.Save(table)
}

// Save is Upsert that also reports whether the record was newly inserted.
func (s *TableStore) Save(table models.Table) (created bool) {
	table = table.Clone()

	s.mu.Lock()
	if _, exists := s.tables[table.ID]; !exists {
		s.order = append(s.order, table.ID)
		created = true
	}
	s.tables[table.ID] = table
	// published under the write lock so subscribers see changes in commit order
	s.publish(Change{Table: table.Clone(), Stats: s.statsLocked()})
	s.mu.Unlock()
	return created
}

// Update runs fn against the current record under the write lock. If fn
// returns an error the stored record is left untouched.
func (s *TableStore) Update(id string, fn func(*models.Table) error) (models.Table, error) {
	s.mu.Lock()
	current, ok := s.tables[id]
	if !ok {
		s.mu.Unlock()
		return models.Table{}, fmt.Errorf("table %s: %w", id, models.ErrTableNotFound)
	}

	working := current.Clone()
	if err := fn(&working); err != nil {
		s.mu.Unlock()
		return models.Table{}, err
	}
	// id is immutable once created
	working.ID = id
	s.tables[id] = working
	s.publish(Change{Table: working.Clone(), Stats: s.statsLocked()})
	s.mu.Unlock()

	return working.Clone(), nil
}

// ListFiltered returns matching tables in insertion order.
func (s *TableStore) ListFiltered(pred Predicate) []models.Table {
	if pred == nil {
		pred = FilterAll
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Table, 0, len(s.order))
	for _, id := range s.order {
		t := s.tables[id]
		if pred(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// AggregateStats is recomputed from the current contents on every call.
func (s *TableStore) AggregateStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

func (s *TableStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}

func (s *TableStore) statsLocked() Stats {
	var st Stats
	for _, t := range s.tables {
		st.TotalAlertCount += len(t.Alerts)
		if t.Status == models.TableSeated {
			st.SeatedCount++
			if t.IsVIP {
				st.VIPSeatedCount++
			}
		}
	}
	return st
}

// Subscribe registers a listener for store changes. A subscriber that falls
// behind by more than buffer events misses changes rather than blocking writers.
func (s *TableStore) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *TableStore) publish(change Change) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
