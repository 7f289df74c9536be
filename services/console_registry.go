package services

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// ConsoleRegistry hands out one Console per staff session. Consoles that are
// not touched for the idle TTL are evicted together with their cached results.
type ConsoleRegistry struct {
	dispatcher *AdvisoryDispatcher
	consoles   *cache.Cache
	mu         sync.Mutex
}

func NewConsoleRegistry(dispatcher *AdvisoryDispatcher, idleTTL time.Duration) *ConsoleRegistry {
	if idleTTL <= 0 {
		idleTTL = 2 * time.Hour
	}
	return &ConsoleRegistry{
		dispatcher: dispatcher,
		consoles:   cache.New(idleTTL, idleTTL/2),
	}
}

// Console -> ambil console untuk session id, buat baru kalau belum ada
func (r *ConsoleRegistry) Console(sessionID string) *Console {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.consoles.Get(sessionID); found {
		c := x.(*Console)
		// sliding expiry
		r.consoles.SetDefault(sessionID, c)
		return c
	}
	c := NewConsole(r.dispatcher)
	r.consoles.SetDefault(sessionID, c)
	return c
}

// Close drops a session's console.
func (r *ConsoleRegistry) Close(sessionID string) {
	r.consoles.Delete(sessionID)
}

func (r *ConsoleRegistry) Len() int {
	return r.consoles.ItemCount()
}
