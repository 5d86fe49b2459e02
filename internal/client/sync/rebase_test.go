package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/models"
)

func TestRebase(t *testing.T) {
	mapping := map[int64]int64{6: 9, 7: 10}

	tests := []struct {
		name     string
		cmd      *models.Command
		expected []int64
		ok       bool
	}{
		{
			name:     "confirmed revision kept",
			cmd:      models.NewChangeValueCommand(fieldF, 5, models.StringValue("v")),
			expected: []int64{5},
			ok:       true,
		},
		{
			name:     "local revision mapped",
			cmd:      models.NewChangeValueCommand(fieldF, 6, models.StringValue("v")),
			expected: []int64{9},
			ok:       true,
		},
		{
			name:     "sentinels kept",
			cmd:      models.NewAddCommand(notesAddr, models.RevisionNew, "o2"),
			expected: []int64{models.RevisionNew},
			ok:       true,
		},
		{
			name: "transaction members mapped",
			cmd: models.NewTransaction(objAddr,
				models.NewChangeValueCommand(fieldF, 7, models.StringValue("v")),
				models.NewChangeValueCommand(fieldG, 4, models.StringValue("w")),
			),
			expected: []int64{10, 4},
			ok:       true,
		},
		{
			name: "unknown local revision",
			cmd:  models.NewRemoveCommand(objAddr, 8),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.cmd.Clone()

			got, ok := rebase(tt.cmd, 5, mapping)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, before, tt.cmd, "original command must not change")
			if !ok {
				return
			}

			revs := make([]int64, 0, len(got.Atomic()))
			for _, sub := range got.Atomic() {
				revs = append(revs, sub.Revision)
			}
			assert.Equal(t, tt.expected, revs)
		})
	}
}

func TestConflicts(t *testing.T) {
	valueEvent := func(addr models.Address) *models.Event {
		return &models.Event{Kind: models.ChangeValue, ChangedEntity: addr}
	}
	removeEvent := func(addr models.Address) *models.Event {
		return &models.Event{Kind: models.ChangeRemove, ChangedEntity: addr}
	}

	tests := []struct {
		name     string
		cmd      *models.Command
		remote   []*models.Event
		expected bool
	}{
		{
			name:     "same field",
			cmd:      models.NewChangeValueCommand(fieldF, 5, models.StringValue("a")),
			remote:   []*models.Event{valueEvent(fieldF)},
			expected: true,
		},
		{
			name:   "sibling field",
			cmd:    models.NewChangeValueCommand(fieldF, 5, models.StringValue("a")),
			remote: []*models.Event{valueEvent(fieldG)},
		},
		{
			name:     "remote removal of parent",
			cmd:      models.NewChangeValueCommand(fieldF, 5, models.StringValue("a")),
			remote:   []*models.Event{removeEvent(objAddr)},
			expected: true,
		},
		{
			name:     "local removal of parent",
			cmd:      models.NewRemoveCommand(objAddr, 5),
			remote:   []*models.Event{valueEvent(fieldG)},
			expected: true,
		},
		{
			name:   "local add next to remote change",
			cmd:    models.NewAddCommand(objAddr, models.RevisionForced, "h"),
			remote: []*models.Event{valueEvent(fieldG)},
		},
		{
			name: "transaction member conflicts",
			cmd: models.NewTransaction(notesAddr,
				models.NewAddCommand(notesAddr, models.RevisionNew, "o2"),
				models.NewChangeValueCommand(fieldG, 4, models.StringValue("a")),
			),
			remote:   []*models.Event{valueEvent(fieldG)},
			expected: true,
		},
		{
			name: "no remote events",
			cmd:  models.NewRemoveCommand(objAddr, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, conflicts(tt.cmd, tt.remote))
		})
	}
}

func TestContiguous(t *testing.T) {
	entry := func(old, rev int64) *models.Event {
		return &models.Event{Kind: models.ChangeAdd, ChangedEntity: notesAddr.Child("o"), OldModelRevision: old, RevisionNumber: rev}
	}
	creation := &models.Event{Kind: models.ChangeAdd, ChangedEntity: notesAddr, OldModelRevision: models.RevisionNotSet, RevisionNumber: 7}

	assert.True(t, contiguous(5, nil))
	assert.True(t, contiguous(5, []*models.Event{entry(5, 6), entry(6, 7)}))
	assert.False(t, contiguous(5, []*models.Event{entry(6, 7)}), "gap")
	assert.False(t, contiguous(5, []*models.Event{entry(5, 6), entry(7, 8)}), "gap inside")
	assert.False(t, contiguous(5, []*models.Event{creation}), "recreated model")

	assert.Equal(t, int64(5), lastRevision(5, nil))
	assert.Equal(t, int64(7), lastRevision(5, []*models.Event{entry(5, 6), entry(6, 7)}))
}
