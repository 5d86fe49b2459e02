// Package cli implements the client commands over the local replicas.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/gophsync/internal/client/auth"
	"github.com/iudanet/gophsync/internal/client/iocli"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/client/sync"
	"github.com/iudanet/gophsync/internal/models"
	pkgapi "github.com/iudanet/gophsync/pkg/api"
)

var (
	// ErrRejected команда не прошла проверку предусловий
	ErrRejected = errors.New("command rejected")
	// ErrNotFound сущность отсутствует в реплике
	ErrNotFound = errors.New("entity not found")
	// ErrNotLoggedIn команда требует входа
	ErrNotLoggedIn = errors.New("not logged in, run 'gophsync login' first")
)

// Remote is the part of the server API the commands call directly.
// Repository level commands (adding and removing models) bypass replicas.
type Remote interface {
	ExecuteCommand(ctx context.Context, actor models.ID, cmd *models.Command) (int64, error)
	Models(ctx context.Context) (*pkgapi.ModelsResponse, error)
}

// Cli runs client commands
type Cli struct {
	io     iocli.IO
	auth   auth.Service
	remote Remote
	sync   *sync.Synchronizer
	repo   models.ID
}

// New creates the command runner. repo is the repository relative
// addresses are resolved against.
func New(io iocli.IO, authService auth.Service, remote Remote, synchronizer *sync.Synchronizer, repo models.ID) *Cli {
	return &Cli{
		io:     io,
		auth:   authService,
		remote: remote,
		sync:   synchronizer,
		repo:   repo,
	}
}

// session возвращает текущую сессию или ErrNotLoggedIn
func (c *Cli) session(ctx context.Context) (*storage.Session, error) {
	session, err := c.auth.Session(ctx)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// parseAddress принимает полный адрес (/repo/model/object/field) или
// адрес относительно репозитория (model/object/field)
func (c *Cli) parseAddress(arg string) (models.Address, error) {
	if arg == "" {
		return models.Address{}, fmt.Errorf("address cannot be empty")
	}
	if !strings.HasPrefix(arg, "/") {
		arg = "/" + string(c.repo) + "/" + arg
	}
	return models.ParseAddress(arg)
}

// replica открывает реплику модели, которой принадлежит адрес
func (c *Cli) replica(ctx context.Context, addr models.Address) (*sync.Replica, error) {
	if addr.Type() == models.TypeRepository {
		return nil, fmt.Errorf("%s is a repository, expected a model address", addr)
	}
	r, err := c.sync.Open(ctx, addr.ModelAddress())
	if err != nil {
		return nil, fmt.Errorf("failed to open replica of %s: %w", addr.ModelAddress(), err)
	}
	return r, nil
}
