package sales

import (
	"context"
	"sync"
)

var _ AccountLocker = (*LocalLocker)(nil)

// LocalLocker serializa las ventas de cada cuenta dentro del proceso.
// Se usa cuando no hay Redis configurado.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocalLocker construye un locker en memoria.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

// Lock espera el turno de la cuenta o la cancelación de ctx.
func (l *LocalLocker) Lock(ctx context.Context, companyID string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[companyID]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[companyID] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
