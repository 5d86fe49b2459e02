// Package events delivers committed events of a model to subscribers.
package events

import (
	"maps"
	"slices"
	"sync"

	"github.com/iudanet/gophsync/internal/models"
)

// Listener получает атомарные события
type Listener func(ev *models.Event)

// TransactionListener получает транзакционное событие целиком
type TransactionListener func(txn *models.Event)

type subscription struct {
	atomic Listener
	txn    TransactionListener
	scope  models.Address
}

// Bus is an event bus for one model. Listeners are attached to a scope
// address (the model, an object or a field) and receive every atomic event
// whose changed entity lies in that scope, in commit order. Transaction
// listeners additionally receive each grouped transaction event once, after
// its atomic events were delivered.
//
// Publish is called by the single writer of the model; listeners must not
// publish to the same bus.
type Bus struct {
	subs map[int]subscription
	mu   sync.RWMutex
	next int
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[int]subscription)}
}

// Subscribe registers a listener for atomic events below scope.
// The returned function removes the subscription.
func (b *Bus) Subscribe(scope models.Address, fn Listener) func() {
	return b.add(subscription{scope: scope, atomic: fn})
}

// SubscribeTransactions registers a listener for transaction events
func (b *Bus) SubscribeTransactions(fn TransactionListener) func() {
	return b.add(subscription{txn: fn})
}

func (b *Bus) add(s subscription) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = s
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers a log entry: atomic events first, then the transaction event
func (b *Bus) Publish(entry *models.Event) {
	if entry == nil {
		return
	}

	b.mu.RLock()
	// Порядок подписки сохраняется для детерминированной доставки
	ids := slices.Sorted(maps.Keys(b.subs))
	subs := make([]subscription, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, b.subs[id])
	}
	b.mu.RUnlock()

	for _, ev := range entry.Atomic() {
		for _, s := range subs {
			if s.atomic != nil && s.scope.Contains(ev.ChangedEntity) {
				s.atomic(ev)
			}
		}
	}

	if !entry.IsTransaction() {
		return
	}
	for _, s := range subs {
		if s.txn != nil {
			s.txn(entry)
		}
	}
}
