package session

import (
	"context"
	"sync"
	"time"

	"github.com/muhidtech/ecohaven/internal/kv"
	"github.com/muhidtech/ecohaven/internal/user"
)

// Hub hands out one Manager per client key. Managers for the same key share
// kv snapshots, so two tabs of one client overwrite each other last-write-wins.
//
// A single janitor goroutine sweeps the managers on an interval: expired
// sessions are dropped, and managers holding no session are evicted so
// one-off anonymous clients do not accumulate state for the life of the
// process. An evicted client is rehydrated from its kv snapshot on next use.
type Hub struct {
	users  user.Store
	store  kv.Store
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewHub(users user.Store, store kv.Store, cfg Config) *Hub {
	cfg.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		users:    users,
		store:    store,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		managers: make(map[string]*Manager),
	}
	go h.run()
	return h
}

// Manager returns the manager for the client, constructing and rehydrating
// it on first use.
func (h *Hub) Manager(ctx context.Context, clientID string) *Manager {
	h.mu.Lock()
	if m, ok := h.managers[clientID]; ok {
		h.mu.Unlock()
		return m
	}

	cfg := h.cfg
	cfg.StorageKey = "session:" + clientID
	m := NewManager(h.users, h.store, cfg)
	h.managers[clientID] = m
	h.mu.Unlock()

	m.Load(ctx)
	return m
}

func (h *Hub) run() {
	ticker := time.NewTicker(h.cfg.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.sweep()
		case <-h.ctx.Done():
			return
		}
	}
}

// sweep drops expired sessions and evicts sessionless managers. Current()
// handles the expiry transition, so an expired manager is evicted on the
// same pass.
func (h *Hub) sweep() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, m := range h.managers {
		if m.Current() == nil {
			delete(h.managers, id)
		}
	}
}

// Close stops the janitor.
func (h *Hub) Close() {
	h.cancel()
}
