package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/changelog"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/tree"
)

const (
	repoID  models.ID = "repo"
	modelID models.ID = "notes"
	actor   models.ID = "alice"
)

var (
	modelAddr = models.NewModelAddress(repoID, modelID)
	objAddr   = models.NewObjectAddress(repoID, modelID, "n1")
	fieldAddr = models.NewFieldAddress(repoID, modelID, "n1", "title")
)

// fixture репозиторий с одной моделью и ее журналом
type fixture struct {
	repo  *tree.Repository
	model *tree.Model
	log   *changelog.Log
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := tree.NewRepository(repoID)
	p, err := ExecuteRepositoryCommand(repo, models.NewAddCommand(repo.Address(), models.RevisionNew, modelID), actor)
	require.NoError(t, err)
	require.Equal(t, int64(0), p.Result())

	l := changelog.New(modelAddr, models.RevisionNotSet)
	_, err = l.Append(p.Event)
	require.NoError(t, err)

	m, ok := repo.Model(modelID)
	require.True(t, ok)

	return &fixture{repo: repo, model: m, log: l}
}

// exec выполняет команду и добавляет событие в журнал
func (f *fixture) exec(t *testing.T, cmd *models.Command) int64 {
	t.Helper()

	p, err := Execute(f.model, cmd, actor)
	require.NoError(t, err)
	if p.Event != nil {
		_, err = f.log.Append(p.Event)
		require.NoError(t, err)
	}
	return p.Result()
}

// populate создает объект n1 с полями title="hello" и body
func (f *fixture) populate(t *testing.T) {
	t.Helper()

	rev := f.exec(t, models.NewTransaction(modelAddr,
		models.NewAddCommand(modelAddr, models.RevisionNew, "n1"),
		models.NewAddCommand(objAddr, models.RevisionThisTransaction, "title"),
		models.NewAddCommand(objAddr, models.RevisionThisTransaction, "body"),
		models.NewChangeValueCommand(fieldAddr, models.RevisionThisTransaction, models.StringValue("hello")),
	))
	require.Equal(t, int64(1), rev)
}

func TestExecute_AddObjectAndFields(t *testing.T) {
	f := newFixture(t)
	f.populate(t)

	assert.Equal(t, int64(1), f.model.Revision())
	obj, ok := f.model.Object("n1")
	require.True(t, ok)
	assert.Equal(t, int64(1), obj.Revision())

	title, ok := obj.Field("title")
	require.True(t, ok)
	assert.Equal(t, int64(1), title.Revision())
	assert.Equal(t, "hello", title.Value().String())

	entry, ok := f.log.Get(1)
	require.True(t, ok)
	require.True(t, entry.IsTransaction())
	require.Len(t, entry.Events, 4)
	for _, ev := range entry.Events {
		assert.True(t, ev.InTransaction)
		assert.Equal(t, actor, ev.Actor)
		assert.Equal(t, int64(0), ev.OldModelRevision)
		assert.Equal(t, int64(1), ev.RevisionNumber)
	}
	assert.Equal(t, models.RevisionNotSet, entry.Events[0].OldObjectRevision)
	assert.Equal(t, int64(1), entry.Events[1].OldObjectRevision, "object was produced earlier in the transaction")
	assert.Equal(t, models.StringValue("hello"), entry.Events[3].NewValue)
	assert.Nil(t, entry.Events[3].OldValue)

	require.NoError(t, f.model.CheckRevisions())
}

func TestExecute_RevisionMonotonicity(t *testing.T) {
	f := newFixture(t)
	f.populate(t)

	cmds := []*models.Command{
		models.NewChangeValueCommand(fieldAddr, 1, models.StringValue("v2")),
		models.NewAddCommand(modelAddr, models.RevisionNew, "n2"),
		models.NewChangeValueCommand(fieldAddr, models.RevisionForced, models.StringValue("v3")),
		models.NewRemoveCommand(objAddr.Child("body"), models.RevisionForced),
		models.NewRemoveCommand(models.NewObjectAddress(repoID, modelID, "n2"), 3),
	}
	for _, cmd := range cmds {
		rev := f.exec(t, cmd)
		require.Positive(t, rev, cmd.String())
	}

	prev := int64(models.RevisionNotSet)
	for ev := range f.log.EventsInRange(0, changelog.Unbounded) {
		assert.Greater(t, ev.RevisionNumber, prev)
		assert.Equal(t, prev, ev.OldModelRevision, "before revision equals previous after revision")
		prev = ev.RevisionNumber
	}
	assert.Equal(t, f.model.Revision(), prev)
	require.NoError(t, f.model.CheckRevisions())
}

func TestExecute_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *models.Command
		expected int64
	}{
		{name: "safe value matching", cmd: models.NewChangeValueCommand(fieldAddr, 1, models.StringValue("x")), expected: 2},
		{name: "safe value stale", cmd: models.NewChangeValueCommand(fieldAddr, 0, models.StringValue("x")), expected: models.RevisionFailed},
		{name: "new value on set field", cmd: models.NewChangeValueCommand(fieldAddr, models.RevisionNew, models.StringValue("x")), expected: models.RevisionFailed},
		{name: "new value on empty field", cmd: models.NewChangeValueCommand(objAddr.Child("body"), models.RevisionNew, models.StringValue("x")), expected: 2},
		{name: "same value", cmd: models.NewChangeValueCommand(fieldAddr, models.RevisionForced, models.StringValue("hello")), expected: models.RevisionNoChange},
		{name: "expected old value matches", cmd: models.NewChangeValueCommand(fieldAddr, models.RevisionForced, models.StringValue("x")).WithOldValue(models.StringValue("hello")), expected: 2},
		{name: "expected old value differs", cmd: models.NewChangeValueCommand(fieldAddr, models.RevisionForced, models.StringValue("x")).WithOldValue(models.StringValue("bye")), expected: models.RevisionFailed},
		{name: "value of missing field", cmd: models.NewChangeValueCommand(objAddr.Child("nope"), models.RevisionForced, models.StringValue("x")), expected: models.RevisionFailed},
		{name: "clear value", cmd: models.NewChangeValueCommand(fieldAddr, 1, nil), expected: 2},
		{name: "add existing object", cmd: models.NewAddCommand(modelAddr, models.RevisionNew, "n1"), expected: models.RevisionFailed},
		{name: "forced add existing object", cmd: models.NewAddCommand(modelAddr, models.RevisionForced, "n1"), expected: models.RevisionNoChange},
		{name: "add field to missing object", cmd: models.NewAddCommand(models.NewObjectAddress(repoID, modelID, "x"), models.RevisionForced, "f"), expected: models.RevisionFailed},
		{name: "safe remove object", cmd: models.NewRemoveCommand(objAddr, 1), expected: 2},
		{name: "stale remove object", cmd: models.NewRemoveCommand(objAddr, 0), expected: models.RevisionFailed},
		{name: "remove missing object", cmd: models.NewRemoveCommand(models.NewObjectAddress(repoID, modelID, "x"), 1), expected: models.RevisionFailed},
		{name: "forced remove missing field", cmd: models.NewRemoveCommand(objAddr.Child("nope"), models.RevisionForced), expected: models.RevisionNoChange},
		{name: "safe remove field", cmd: models.NewRemoveCommand(fieldAddr, 1), expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.populate(t)

			rev := f.exec(t, tt.cmd)
			assert.Equal(t, tt.expected, rev, models.RevisionString(rev))

			if tt.expected < 0 {
				assert.Equal(t, int64(1), f.model.Revision(), "failed and no-op commands consume no revision")
				assert.Equal(t, int64(1), f.log.CurrentRevision())
			}
		})
	}
}

func TestExecute_ForcedIdempotence(t *testing.T) {
	f := newFixture(t)
	f.populate(t)

	add := models.NewAddCommand(modelAddr, models.RevisionForced, "n2")
	assert.Equal(t, int64(2), f.exec(t, add))
	after := f.model.Clone()
	assert.Equal(t, models.RevisionNoChange, f.exec(t, add))
	assert.True(t, after.EqualState(f.model))

	remove := models.NewRemoveCommand(objAddr, models.RevisionForced)
	assert.Equal(t, int64(3), f.exec(t, remove))
	after = f.model.Clone()
	assert.Equal(t, models.RevisionNoChange, f.exec(t, remove))
	assert.True(t, after.EqualState(f.model))
}

func TestExecute_TransactionAtomicity(t *testing.T) {
	f := newFixture(t)
	f.populate(t)
	before := f.model.Clone()

	txn := models.NewTransaction(modelAddr,
		models.NewAddCommand(modelAddr, models.RevisionNew, "n2"),
		models.NewChangeValueCommand(fieldAddr, 1, models.StringValue("changed")),
		models.NewRemoveCommand(objAddr.Child("body"), 1),
		models.NewChangeValueCommand(fieldAddr, 0, models.StringValue("stale")),
	)

	p, err := Prepare(f.model, txn, actor)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, p.State())
	assert.Nil(t, p.Event)

	rev, err := p.Commit()
	require.NoError(t, err)
	assert.Equal(t, models.RevisionFailed, rev)

	assert.True(t, before.EqualState(f.model))
	assert.Equal(t, int64(1), f.log.CurrentRevision())
}

func TestExecute_AllNoChangeTransaction(t *testing.T) {
	f := newFixture(t)
	f.populate(t)

	rev := f.exec(t, models.NewTransaction(objAddr,
		models.NewAddCommand(objAddr, models.RevisionForced, "title"),
		models.NewChangeValueCommand(fieldAddr, models.RevisionForced, models.StringValue("hello")),
	))
	assert.Equal(t, models.RevisionNoChange, rev)
	assert.Equal(t, int64(1), f.model.Revision())
}

func TestExecute_SingleEventTransactionIsNotWrapped(t *testing.T) {
	f := newFixture(t)
	f.populate(t)

	rev := f.exec(t, models.NewTransaction(objAddr,
		models.NewAddCommand(objAddr, models.RevisionForced, "title"),
		models.NewChangeValueCommand(fieldAddr, models.RevisionForced, models.StringValue("x")),
	))
	require.Equal(t, int64(2), rev)

	entry, ok := f.log.Get(2)
	require.True(t, ok)
	assert.False(t, entry.IsTransaction())
	assert.False(t, entry.InTransaction)
	assert.Equal(t, models.ChangeValue, entry.Kind)
}

func TestExecute_CascadingRemoval(t *testing.T) {
	f := newFixture(t)
	f.populate(t)

	rev := f.exec(t, models.NewRemoveCommand(objAddr, 1))
	require.Equal(t, int64(2), rev)

	entry, ok := f.log.Get(2)
	require.True(t, ok)
	require.True(t, entry.IsTransaction())
	require.Len(t, entry.Events, 3)

	body, title, obj := entry.Events[0], entry.Events[1], entry.Events[2]

	assert.Equal(t, objAddr.Child("body"), body.ChangedEntity)
	assert.True(t, body.Implied)
	assert.Nil(t, body.OldValue)

	assert.Equal(t, fieldAddr, title.ChangedEntity)
	assert.True(t, title.Implied)
	assert.Equal(t, "hello", title.OldValue.String())

	assert.Equal(t, objAddr, obj.ChangedEntity)
	assert.False(t, obj.Implied)
	assert.Equal(t, int64(1), obj.OldObjectRevision)

	for _, ev := range entry.Events {
		assert.Equal(t, models.ChangeRemove, ev.Kind)
		assert.Equal(t, int64(2), ev.RevisionNumber)
	}

	_, exists := f.model.Object("n1")
	assert.False(t, exists)
}

func TestExecute_StructuralErrors(t *testing.T) {
	otherModel := models.NewModelAddress(repoID, "other")

	tests := []struct {
		name    string
		cmd     *models.Command
		wantErr error
	}{
		{name: "nil", cmd: nil, wantErr: ErrInvalidCommand},
		{name: "empty transaction", cmd: models.NewTransaction(modelAddr), wantErr: ErrEmptyTransaction},
		{name: "dangling reference", cmd: models.NewTransaction(modelAddr,
			models.NewAddCommand(modelAddr, models.RevisionNew, "n2"),
			models.NewChangeValueCommand(fieldAddr, models.RevisionThisTransaction, models.StringValue("x")),
		), wantErr: ErrDanglingReference},
		{name: "reference to model", cmd: models.NewTransaction(modelAddr,
			models.NewAddCommand(modelAddr, models.RevisionThisTransaction, "n2"),
		), wantErr: ErrDanglingReference},
		{name: "this transaction outside transaction", cmd: models.NewRemoveCommand(objAddr, models.RevisionThisTransaction), wantErr: ErrDanglingReference},
		{name: "cross model command", cmd: models.NewAddCommand(otherModel, models.RevisionNew, "x"), wantErr: ErrCrossModel},
		{name: "cross model transaction", cmd: models.NewTransaction(modelAddr,
			models.NewAddCommand(otherModel, models.RevisionNew, "x"),
		), wantErr: ErrCrossModel},
		{name: "outside transaction object", cmd: models.NewTransaction(objAddr,
			models.NewAddCommand(modelAddr, models.RevisionNew, "x"),
		), wantErr: ErrInvalidCommand},
		{name: "nested transaction", cmd: models.NewTransaction(modelAddr,
			models.NewTransaction(objAddr, models.NewRemoveCommand(fieldAddr, 1)),
		), wantErr: ErrInvalidCommand},
		{name: "remove with NEW", cmd: models.NewRemoveCommand(objAddr, models.RevisionNew), wantErr: ErrInvalidCommand},
		{name: "value on object", cmd: models.NewChangeValueCommand(objAddr, 1, nil), wantErr: ErrInvalidCommand},
		{name: "add without id", cmd: models.NewAddCommand(modelAddr, models.RevisionNew, ""), wantErr: ErrInvalidCommand},
		{name: "model removal through model engine", cmd: models.NewRemoveCommand(modelAddr, 1), wantErr: ErrInvalidCommand},
		{name: "unknown sentinel", cmd: models.NewRemoveCommand(objAddr, models.RevisionNoChange), wantErr: ErrInvalidCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.populate(t)
			before := f.model.Clone()

			_, err := Execute(f.model, tt.cmd, actor)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, before.EqualState(f.model))
		})
	}
}

func TestPlan_CommitGuards(t *testing.T) {
	f := newFixture(t)
	f.populate(t)

	p1, err := Prepare(f.model, models.NewAddCommand(modelAddr, models.RevisionNew, "a"), actor)
	require.NoError(t, err)
	p2, err := Prepare(f.model, models.NewAddCommand(modelAddr, models.RevisionNew, "b"), actor)
	require.NoError(t, err)

	rev, err := p1.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)
	assert.Equal(t, StateCommitted, p1.State())

	_, err = p1.Commit()
	assert.ErrorIs(t, err, ErrPlanState)

	_, err = p2.Commit()
	assert.ErrorIs(t, err, ErrPlanState, "tree changed since p2 was prepared")
	_, exists := f.model.Object("b")
	assert.False(t, exists)
}

func TestModelLifecycle(t *testing.T) {
	f := newFixture(t)
	f.populate(t)

	addr := f.repo.Address()

	p, err := ExecuteRepositoryCommand(f.repo, models.NewAddCommand(addr, models.RevisionNew, modelID), actor)
	require.NoError(t, err)
	assert.Equal(t, models.RevisionFailed, p.Result())

	p, err = ExecuteRepositoryCommand(f.repo, models.NewAddCommand(addr, models.RevisionForced, modelID), actor)
	require.NoError(t, err)
	assert.Equal(t, models.RevisionNoChange, p.Result())

	p, err = ExecuteRepositoryCommand(f.repo, models.NewRemoveCommand(modelAddr, 0), actor)
	require.NoError(t, err)
	assert.Equal(t, models.RevisionFailed, p.Result(), "stale model revision")

	p, err = ExecuteRepositoryCommand(f.repo, models.NewRemoveCommand(modelAddr, 1), actor)
	require.NoError(t, err)
	require.Equal(t, int64(2), p.Result())

	entry := p.Event
	require.True(t, entry.IsTransaction())
	require.True(t, IsModelRemoval(entry))
	var changed []models.Address
	for _, ev := range entry.Events {
		changed = append(changed, ev.ChangedEntity)
	}
	assert.Equal(t, []models.Address{objAddr.Child("body"), fieldAddr, objAddr, modelAddr}, changed)
	assert.True(t, entry.Events[2].Implied)
	assert.False(t, entry.Events[3].Implied)

	_, exists := f.repo.Model(modelID)
	assert.False(t, exists)

	p, err = ExecuteRepositoryCommand(f.repo, models.NewRemoveCommand(modelAddr, models.RevisionForced), actor)
	require.NoError(t, err)
	assert.Equal(t, models.RevisionNoChange, p.Result())

	// Пересозданная модель не переиспользует ревизии
	p, err = ExecuteRepositoryCommand(f.repo, models.NewAddCommand(addr, models.RevisionNew, modelID), actor)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Result())
	assert.True(t, IsModelCreation(p.Event))

	_, err = ExecuteRepositoryCommand(f.repo, models.NewTransaction(modelAddr, models.NewRemoveCommand(modelAddr, 1)), actor)
	assert.ErrorIs(t, err, ErrInvalidCommand)
}
