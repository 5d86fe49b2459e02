package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/client/auth"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
)

func sessionFor(actor models.ID) *storage.Session {
	return &storage.Session{Actor: actor, ServerURL: "http://localhost:8080"}
}

func TestCli_Login_Prompts(t *testing.T) {
	ctx := context.Background()
	mockAuth := &auth.ServiceMock{
		LoginFunc: func(ctx context.Context, actor models.ID, password string) (*storage.Session, error) {
			return sessionFor(actor), nil
		},
	}
	env := newTestEnv(t, mockAuth, "alice", "correct-horse-battery")

	require.NoError(t, env.cli.Login(ctx, "", ""))

	require.Len(t, mockAuth.LoginCalls(), 1)
	assert.Equal(t, models.ID("alice"), mockAuth.LoginCalls()[0].Actor)
	assert.Equal(t, "correct-horse-battery", mockAuth.LoginCalls()[0].Password)
	assert.Contains(t, env.out.String(), "Actor: ")
	assert.Contains(t, env.out.String(), "Password: ")
	assert.Contains(t, env.out.String(), "Logged in as alice")
}

func TestCli_Login_Failed(t *testing.T) {
	mockAuth := &auth.ServiceMock{
		LoginFunc: func(ctx context.Context, actor models.ID, password string) (*storage.Session, error) {
			return nil, auth.ErrInvalidCredentials
		},
	}
	env := newTestEnv(t, mockAuth)

	err := env.cli.Login(context.Background(), "alice", "wrong-password-1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.NotContains(t, env.out.String(), "Logged in")
}

func TestCli_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed password", func(t *testing.T) {
		mockAuth := &auth.ServiceMock{
			RegisterFunc: func(ctx context.Context, actor models.ID, password string) (*storage.Session, error) {
				return sessionFor(actor), nil
			},
		}
		env := newTestEnv(t, mockAuth, "correct-horse-battery", "correct-horse-battery")

		require.NoError(t, env.cli.Register(ctx, "alice", ""))
		require.Len(t, mockAuth.RegisterCalls(), 1)
		assert.Contains(t, env.out.String(), "Registered and logged in as alice")
	})

	t.Run("passwords differ", func(t *testing.T) {
		mockAuth := &auth.ServiceMock{}
		env := newTestEnv(t, mockAuth, "correct-horse-battery", "correct-horse-batterx")

		err := env.cli.Register(ctx, "alice", "")
		assert.ErrorContains(t, err, "passwords do not match")
		assert.Empty(t, mockAuth.RegisterCalls())
	})

	t.Run("no input", func(t *testing.T) {
		env := newTestEnv(t, &auth.ServiceMock{})
		assert.Error(t, env.cli.Register(ctx, "", ""))
	})
}

func TestCli_Logout(t *testing.T) {
	tests := []struct {
		name      string
		logoutErr error
		wantOut   string
		wantErr   bool
	}{
		{name: "logged in", wantOut: "Logged out"},
		{name: "not logged in", logoutErr: storage.ErrSessionNotFound, wantOut: "Not logged in"},
		{name: "storage failure", logoutErr: errors.New("disk"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := &auth.ServiceMock{
				LogoutFunc: func(ctx context.Context) error {
					return tt.logoutErr
				},
			}
			env := newTestEnv(t, mockAuth)

			err := env.cli.Logout(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, env.out.String(), tt.wantOut)
		})
	}
}

func TestCli_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("not logged in, no replicas", func(t *testing.T) {
		mockAuth := &auth.ServiceMock{
			SessionFunc: func(ctx context.Context) (*storage.Session, error) {
				return nil, storage.ErrSessionNotFound
			},
		}
		env := newTestEnv(t, mockAuth)

		require.NoError(t, env.cli.Status(ctx))
		assert.Contains(t, env.out.String(), "Not logged in")
		assert.Contains(t, env.out.String(), "No local replicas")
	})

	t.Run("replica with pending change", func(t *testing.T) {
		env := newTestEnv(t, loggedIn())
		require.NoError(t, env.cli.Set(ctx, "notes/o1/f", "changed", false))
		env.out.Reset()

		require.NoError(t, env.cli.Status(ctx))
		assert.Contains(t, env.out.String(), "Logged in as alice")
		assert.Contains(t, env.out.String(), "/repo/notes  revision 2, synced 1, pending 1")
	})
}
