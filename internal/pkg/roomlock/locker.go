// Package roomlock serializes the booking consistency boundary per room.
package roomlock

import (
	"context"
	"sync"
)

// Locker grants exclusive access to one room. Lock blocks until the room is
// free or ctx is done; the returned release func is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, roomID int64) (release func(), err error)
}

type entry struct {
	slot chan struct{}
	refs int
}

// KeyedMutex is the in-process Locker. It is enough for a single API
// instance; multi-instance deployments use RedisLocker.
type KeyedMutex struct {
	mu    sync.Mutex
	rooms map[int64]*entry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{rooms: make(map[int64]*entry)}
}

func (k *KeyedMutex) Lock(ctx context.Context, roomID int64) (func(), error) {
	k.mu.Lock()
	e, ok := k.rooms[roomID]
	if !ok {
		e = &entry{slot: make(chan struct{}, 1)}
		k.rooms[roomID] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		k.drop(roomID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.slot
			k.drop(roomID, e)
		})
	}, nil
}

func (k *KeyedMutex) drop(roomID int64, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.rooms, roomID)
	}
}

// held is used by tests to check that idle rooms are forgotten.
func (k *KeyedMutex) held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.rooms)
}
