package service

import (
	"fmt"
	"sync"
)

// resourceLocks serialises check-then-write sequences per driver and vehicle.
// Two concurrent requests booking the same resource otherwise both read a
// clean snapshot and double-book it.
type resourceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newResourceLocks() *resourceLocks {
	return &resourceLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *resourceLocks) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

// acquire locks the driver and vehicle keys for an assignment, always in
// driver-then-vehicle order so competing requests cannot deadlock. The
// returned release function is safe to defer even when no key was locked.
func (l *resourceLocks) acquire(driverID, vehicleID int64) func() {
	var held []*sync.Mutex
	if driverID > 0 {
		m := l.get(fmt.Sprintf("driver:%d", driverID))
		m.Lock()
		held = append(held, m)
	}
	if vehicleID > 0 {
		m := l.get(fmt.Sprintf("vehicle:%d", vehicleID))
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
