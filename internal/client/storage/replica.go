package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/tree"
)

// ReplicaStorage keeps the durable state of local replicas, one per model
type ReplicaStorage interface {
	// SaveReplica atomically replaces the stored state of the replica
	SaveReplica(ctx context.Context, state *ReplicaState) error

	// LoadReplica returns ErrReplicaNotFound if the model has no stored replica
	LoadReplica(ctx context.Context, model models.Address) (*ReplicaState, error)

	// DeleteReplica removes the stored replica of the model
	DeleteReplica(ctx context.Context, model models.Address) error

	// ListReplicas returns the addresses of stored replicas in ascending order
	ListReplicas(ctx context.Context) ([]models.Address, error)
}

// ReplicaState is the persisted state of one replica.
//
// Model is the current local tree. Entries is the local change log
// starting after LogBase: entries up to LastSynced are confirmed by the
// store, later ones are local. Confirmed maps local revisions of changes
// the store accepted to the revisions the store assigned, until the
// replica catches up with them.
type ReplicaState struct {
	Model      *tree.Model
	Confirmed  map[int64]int64
	Entries    []*models.Event
	Pending    []PendingCommand
	LogBase    int64
	LastSynced int64
}

// PendingCommand is a local command not yet confirmed by the store
type PendingCommand struct {
	Command       *models.Command `json:"command"`
	Seq           uint64          `json:"seq"`
	LocalRevision int64           `json:"local_revision"`
}
