// Package changelog implements the per-model append-only log of events.
package changelog

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sort"
	"sync"

	"github.com/iudanet/gophsync/internal/models"
)

var (
	// ErrOutOfOrder возвращается при добавлении записи с ревизией не больше текущей
	ErrOutOfOrder = errors.New("event revision is not greater than current log revision")
	// ErrGap возвращается, если запись не продолжает текущую ревизию журнала
	ErrGap = errors.New("event does not continue current log revision")
	// ErrWrongModel возвращается при добавлении события чужой модели
	ErrWrongModel = errors.New("event belongs to another model")
)

// Unbounded используется как конец диапазона "до текущей ревизии"
const Unbounded int64 = -1

// Log is an append-only sequence of events (atomic or transaction events)
// keyed by the model revision each one produced.
//
// A log may start above revision zero: base is the model revision the log
// was started from (for example a snapshot revision on a replica).
type Log struct {
	model   models.Address
	entries []*models.Event
	mu      sync.RWMutex
	base    int64
}

// New creates an empty log for the model. base is the model revision
// preceding the first entry, RevisionNotSet for a log starting with the
// model's creation.
func New(model models.Address, base int64) *Log {
	return &Log{model: model, base: base}
}

// Model returns the address of the model this log belongs to
func (l *Log) Model() models.Address {
	return l.model
}

// Append adds an entry and returns its revision. The entry must continue
// the log: its OldModelRevision equals the current revision. The entry that
// creates the model is exempt.
func (l *Log) Append(ev *models.Event) (int64, error) {
	if ev == nil {
		return models.RevisionFailed, fmt.Errorf("nil event")
	}
	if ev.ChangedEntity.ModelAddress() != l.model {
		return models.RevisionFailed, fmt.Errorf("%s: %w", ev.ChangedEntity, ErrWrongModel)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if ev.RevisionNumber <= l.currentLocked() {
		return models.RevisionFailed, fmt.Errorf("revision %d after %d: %w", ev.RevisionNumber, l.currentLocked(), ErrOutOfOrder)
	}
	if !createsModel(ev) && ev.OldModelRevision != l.currentLocked() {
		return models.RevisionFailed, fmt.Errorf("revision %d based on %d, log at %d: %w",
			ev.RevisionNumber, ev.OldModelRevision, l.currentLocked(), ErrGap)
	}

	l.entries = append(l.entries, ev)
	return ev.RevisionNumber, nil
}

// FirstRevision returns the revision of the first entry, or the revision
// following the base when the log is empty.
func (l *Log) FirstRevision() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) > 0 {
		return l.entries[0].RevisionNumber
	}
	if l.base < 0 {
		return 0
	}
	return l.base + 1
}

// BaseRevision returns the model revision preceding the first entry
func (l *Log) BaseRevision() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.base
}

// CurrentRevision returns the revision of the last entry (the base when empty)
func (l *Log) CurrentRevision() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentLocked()
}

func createsModel(ev *models.Event) bool {
	return !ev.IsTransaction() && ev.Kind == models.ChangeAdd && ev.ChangedEntity.Type() == models.TypeModel
}

func (l *Log) currentLocked() int64 {
	if len(l.entries) == 0 {
		return l.base
	}
	return l.entries[len(l.entries)-1].RevisionNumber
}

// Len returns the number of entries
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// EventsInRange returns the entries with begin <= revision <= end.
// end == Unbounded means up to the current revision. The sequence reads a
// snapshot taken at call time: entries appended later are not visible, and
// iterating again yields the same entries.
func (l *Log) EventsInRange(begin, end int64) iter.Seq[*models.Event] {
	l.mu.RLock()
	snapshot := l.entries
	l.mu.RUnlock()

	return func(yield func(*models.Event) bool) {
		start := sort.Search(len(snapshot), func(i int) bool {
			return snapshot[i].RevisionNumber >= begin
		})
		for _, ev := range snapshot[start:] {
			if end != Unbounded && ev.RevisionNumber > end {
				return
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// Events collects EventsInRange into a slice
func (l *Log) Events(begin, end int64) []*models.Event {
	return slices.Collect(l.EventsInRange(begin, end))
}

// Get returns the entry with the given revision
func (l *Log) Get(rev int64) (*models.Event, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, found := sort.Find(len(l.entries), func(i int) int {
		switch {
		case rev < l.entries[i].RevisionNumber:
			return -1
		case rev > l.entries[i].RevisionNumber:
			return 1
		default:
			return 0
		}
	})
	if !found {
		return nil, false
	}
	return l.entries[i], true
}

// TruncateAfter drops every entry with revision > rev and returns the
// dropped entries in log order. Used by replicas to discard unconfirmed
// local history; iterators created earlier keep their snapshot.
func (l *Log) TruncateAfter(rev int64) []*models.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	cut := sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].RevisionNumber > rev
	})
	if cut == len(l.entries) {
		return nil
	}

	dropped := slices.Clone(l.entries[cut:])
	// Новый массив, чтобы последующие Append не перезаписали снимки итераторов
	l.entries = slices.Clone(l.entries[:cut])
	return dropped
}

// Reset discards all entries and restarts the log at base
func (l *Log) Reset(base int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.base = base
}
