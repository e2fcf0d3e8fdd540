package room

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry is the process-wide directory of rooms. Creation on first
// reference is atomic under concurrent joiners; an optional background
// sweeper evicts rooms idle past the configured timeout.
type Registry struct {
	rooms sync.Map // roomId -> *Room

	opts        Options
	idleTimeout time.Duration
	ticker      *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once

	log *zap.Logger
}

// NewRegistry builds a registry applying opts to every room it creates.
// With idleTimeout > 0 a sweeper goroutine runs every sweepInterval.
func NewRegistry(opts Options, idleTimeout, sweepInterval time.Duration, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	reg := &Registry{
		opts:        opts,
		idleTimeout: idleTimeout,
		done:        make(chan struct{}),
		log:         log.Named("registry"),
	}
	if idleTimeout > 0 && sweepInterval > 0 {
		reg.ticker = time.NewTicker(sweepInterval)
		go reg.sweepLoop()
	}
	return reg
}

// GetOrCreate returns the room for id, creating it lazily. Concurrent
// first-touch from multiple joiners yields the same instance.
func (reg *Registry) GetOrCreate(id string) *Room {
	if val, ok := reg.rooms.Load(id); ok {
		return val.(*Room)
	}
	created := New(id, reg.opts)
	actual, loaded := reg.rooms.LoadOrStore(id, created)
	if !loaded {
		reg.log.Info("room created", zap.String("roomId", id))
	}
	return actual.(*Room)
}

// Get returns an existing room without creating one.
func (reg *Registry) Get(id string) (*Room, bool) {
	val, ok := reg.rooms.Load(id)
	if !ok {
		return nil, false
	}
	return val.(*Room), true
}

// Remove destroys a room. Used by transports when the last connected
// player is gone and by the idle sweeper.
func (reg *Registry) Remove(id string) {
	if _, ok := reg.rooms.LoadAndDelete(id); ok {
		reg.log.Info("room removed", zap.String("roomId", id))
	}
}

// Count returns the number of live rooms.
func (reg *Registry) Count() int {
	n := 0
	reg.rooms.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// List returns the discovery entries for every live room.
func (reg *Registry) List() []Info {
	infos := make([]Info, 0)
	reg.rooms.Range(func(_, val any) bool {
		infos = append(infos, val.(*Room).Info())
		return true
	})
	return infos
}

// Close stops the sweeper. Rooms themselves hold no resources.
func (reg *Registry) Close() {
	reg.closeOnce.Do(func() {
		if reg.ticker != nil {
			reg.ticker.Stop()
		}
		close(reg.done)
	})
}

func (reg *Registry) sweepLoop() {
	for {
		select {
		case <-reg.done:
			return
		case <-reg.ticker.C:
			reg.evictIdle()
		}
	}
}

func (reg *Registry) evictIdle() {
	cutoff := time.Now().Add(-reg.idleTimeout)
	reg.rooms.Range(func(key, val any) bool {
		room := val.(*Room)
		if room.LastActive().Before(cutoff) {
			reg.rooms.Delete(key)
			reg.log.Info("evicted idle room",
				zap.String("roomId", key.(string)),
				zap.Time("lastActive", room.LastActive()))
		}
		return true
	})
}
