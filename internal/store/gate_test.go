package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/models"
)

func TestParseRules(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    []Rule
		wantErr bool
	}{
		{
			name:  "read and write",
			specs: []string{"alice=rw:/repo", "*=r:/repo/public"},
			want: []Rule{
				{Actor: "alice", Prefix: models.NewRepositoryAddress("repo"), Write: true},
				{Actor: AnyActor, Prefix: models.NewModelAddress("repo", "public")},
			},
		},
		{name: "missing equals", specs: []string{"alice"}, wantErr: true},
		{name: "missing mode", specs: []string{"alice=/repo"}, wantErr: true},
		{name: "unknown mode", specs: []string{"alice=x:/repo"}, wantErr: true},
		{name: "bad address", specs: []string{"alice=r:repo"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRules(tt.specs)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaticGate(t *testing.T) {
	model := models.NewModelAddress("repo", "notes")
	field := models.NewFieldAddress("repo", "notes", "o1", "f")
	other := models.NewModelAddress("repo", "other")

	g := NewStaticGate(
		Rule{Actor: "alice", Prefix: model, Write: true},
		Rule{Actor: "bob", Prefix: field},
	)

	tests := []struct {
		name      string
		actor     models.ID
		addr      models.Address
		wantRead  bool
		wantWrite bool
	}{
		{name: "writer on model", actor: "alice", addr: model, wantRead: true, wantWrite: true},
		{name: "writer below model", actor: "alice", addr: field, wantRead: true, wantWrite: true},
		{name: "writer on repository", actor: "alice", addr: model.Parent(), wantRead: true},
		{name: "writer elsewhere", actor: "alice", addr: other},
		{name: "reader on field", actor: "bob", addr: field, wantRead: true},
		{name: "reader on ancestor", actor: "bob", addr: field.Parent(), wantRead: true},
		{name: "reader on sibling", actor: "bob", addr: field.Parent().Child("g")},
		{name: "stranger", actor: "eve", addr: model},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRead, g.CanRead(tt.actor, tt.addr))
			assert.Equal(t, tt.wantWrite, g.CanWrite(tt.actor, tt.addr))
		})
	}

	assert.True(t, AllowAll{}.CanRead("eve", other))
	assert.True(t, AllowAll{}.CanWrite("eve", other))
}
