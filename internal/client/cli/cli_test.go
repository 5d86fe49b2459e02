package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/client/auth"
	"github.com/iudanet/gophsync/internal/client/iocli"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/client/sync"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/store"
	"github.com/iudanet/gophsync/internal/store/memory"
	pkgapi "github.com/iudanet/gophsync/pkg/api"
)

const (
	testRepo  models.ID = "repo"
	testActor models.ID = "alice"
)

var (
	notesAddr = models.NewModelAddress(testRepo, "notes")
	o1Addr    = notesAddr.Child("o1")
	fAddr     = o1Addr.Child("f")
)

// serviceRemote отдает список моделей напрямую из store.Service
type serviceRemote struct {
	*store.Service
}

func (r serviceRemote) Models(ctx context.Context) (*pkgapi.ModelsResponse, error) {
	ids, err := r.ModelIDs(ctx, testActor)
	if err != nil {
		return nil, err
	}
	return &pkgapi.ModelsResponse{Repository: r.RepositoryID(), Models: ids}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestIO возвращает мок ввода-вывода; inputs отдаются по очереди
// на ReadInput и ReadPassword
func newTestIO(inputs ...string) (*iocli.IOMock, *strings.Builder) {
	out := &strings.Builder{}
	next := func(prompt string) (string, error) {
		out.WriteString(prompt)
		if len(inputs) == 0 {
			return "", io.EOF
		}
		in := inputs[0]
		inputs = inputs[1:]
		return in, nil
	}
	return &iocli.IOMock{
		PrintlnFunc: func(a ...any) {
			out.WriteString(fmt.Sprintln(a...))
		},
		PrintfFunc: func(format string, a ...any) {
			fmt.Fprintf(out, format, a...)
		},
		ReadInputFunc:    next,
		ReadPasswordFunc: next,
		WriteFunc: func(p []byte) (int, error) {
			return out.Write(p)
		},
	}, out
}

func loggedIn() *auth.ServiceMock {
	return &auth.ServiceMock{
		SessionFunc: func(ctx context.Context) (*storage.Session, error) {
			return &storage.Session{Actor: testActor, ServerURL: "http://localhost:8080"}, nil
		},
	}
}

// setupStore создает модель notes на ревизии 1: объект o1 с полем f = "init"
func setupStore(t *testing.T) *store.Service {
	t.Helper()
	ctx := context.Background()

	s := store.NewService(memory.New(testRepo, testLogger()), memory.NewAccounts(), nil, testLogger())

	rev, err := s.ExecuteCommand(ctx, "bob", models.NewAddCommand(models.NewRepositoryAddress(testRepo), models.RevisionNew, "notes"))
	require.NoError(t, err)
	require.Equal(t, int64(0), rev)

	rev, err = s.ExecuteCommand(ctx, "bob", models.NewTransaction(notesAddr,
		models.NewAddCommand(notesAddr, models.RevisionNew, "o1"),
		models.NewAddCommand(o1Addr, models.RevisionThisTransaction, "f"),
		models.NewChangeValueCommand(fAddr, models.RevisionThisTransaction, models.StringValue("init")),
	))
	require.NoError(t, err)
	require.Equal(t, int64(1), rev)

	return s
}

type testEnv struct {
	cli   *Cli
	store *store.Service
	sync  *sync.Synchronizer
	out   *strings.Builder
}

func newTestEnv(t *testing.T, authService auth.Service, inputs ...string) *testEnv {
	t.Helper()
	s := setupStore(t)
	sy := sync.NewSynchronizer(s, testActor, nil, testLogger())
	mockIO, out := newTestIO(inputs...)
	return &testEnv{
		cli:   New(mockIO, authService, serviceRemote{s}, sy, testRepo),
		store: s,
		sync:  sy,
		out:   out,
	}
}

func (e *testEnv) remoteValue(t *testing.T, addr models.Address) (string, bool) {
	t.Helper()
	snapshot, ok, err := e.store.GetModelSnapshot(context.Background(), testActor, addr.ModelAddress())
	require.NoError(t, err)
	require.True(t, ok)
	_, v, ok := snapshot.Lookup(addr)
	if !ok || v == nil {
		return "", ok
	}
	return v.String(), true
}

func TestShortAddress(t *testing.T) {
	tests := []struct {
		addr models.Address
		want string
	}{
		{addr: models.NewRepositoryAddress("repo"), want: "/repo"},
		{addr: notesAddr, want: "/repo/notes"},
		{addr: o1Addr, want: "/repo/notes/o1"},
		{addr: fAddr, want: "/repo/notes/o1/f"},
		{addr: models.NewObjectAddress("repo", "notes", "a-"), want: "/repo/notes/a-"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, shortAddress(tt.addr))
		})
	}
}

func TestCli_parseAddress(t *testing.T) {
	c := &Cli{repo: testRepo}

	tests := []struct {
		arg     string
		want    models.Address
		wantErr bool
	}{
		{arg: "notes", want: notesAddr},
		{arg: "notes/o1/f", want: fAddr},
		{arg: "/repo/notes/o1", want: o1Addr},
		{arg: "/repo", want: models.NewRepositoryAddress(testRepo)},
		{arg: "", wantErr: true},
		{arg: "notes/o1/f/x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := c.parseAddress(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
