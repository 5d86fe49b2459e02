package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/tree"
)

// Каждая реплика хранится во вложенном bucket с именем адреса модели:
// ключ state содержит дерево, ожидающие команды и ревизии, вложенный
// bucket log содержит записи журнала по ревизии.
var (
	keyState  = []byte("state")
	bucketLog = []byte("log")
)

// replicaHeader сериализуемая часть состояния реплики без журнала
type replicaHeader struct {
	Model      *tree.Model              `json:"model"`
	Confirmed  map[int64]int64          `json:"confirmed,omitempty"`
	Pending    []storage.PendingCommand `json:"pending,omitempty"`
	LogBase    int64                    `json:"log_base"`
	LastSynced int64                    `json:"last_synced"`
}

// revisionKey кодирует ревизию так, что порядок ключей совпадает с порядком ревизий
func revisionKey(rev int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(rev))
	return key
}

func keyRevision(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key))
}

// SaveReplica atomically replaces the stored state of the replica.
// Log entries up to the previously stored LastSynced are confirmed and are
// not rewritten unless the log base changed.
func (s *Storage) SaveReplica(ctx context.Context, state *storage.ReplicaState) error {
	if state == nil || state.Model == nil {
		return fmt.Errorf("replica state without model")
	}
	addr := state.Model.Address()

	return s.update(func(tx *bbolt.Tx) error {
		replicas := tx.Bucket(bucketReplicas)
		if replicas == nil {
			return fmt.Errorf("replicas bucket not found")
		}

		bucket, err := replicas.CreateBucketIfNotExists([]byte(addr.String()))
		if err != nil {
			return fmt.Errorf("failed to create replica bucket: %w", err)
		}

		// Граница, до которой записи журнала уже сохранены и неизменны
		keepUpTo := models.RevisionNotSet
		var prev replicaHeader
		if data := bucket.Get(keyState); data != nil {
			if err := json.Unmarshal(data, &prev); err != nil {
				return fmt.Errorf("failed to unmarshal replica state: %w", err)
			}
			if prev.LogBase == state.LogBase {
				keepUpTo = prev.LastSynced
			}
		}

		if keepUpTo == models.RevisionNotSet {
			if err := bucket.DeleteBucket(bucketLog); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return fmt.Errorf("failed to reset replica log: %w", err)
			}
		}
		log, err := bucket.CreateBucketIfNotExists(bucketLog)
		if err != nil {
			return fmt.Errorf("failed to create replica log: %w", err)
		}

		if err := truncateLog(log, keepUpTo); err != nil {
			return err
		}

		for _, entry := range state.Entries {
			if entry.RevisionNumber <= keepUpTo {
				continue
			}
			data, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("failed to marshal log entry %d: %w", entry.RevisionNumber, err)
			}
			if err := log.Put(revisionKey(entry.RevisionNumber), data); err != nil {
				return fmt.Errorf("failed to save log entry %d: %w", entry.RevisionNumber, err)
			}
		}

		header, err := json.Marshal(replicaHeader{
			Model:      state.Model,
			Confirmed:  state.Confirmed,
			Pending:    state.Pending,
			LogBase:    state.LogBase,
			LastSynced: state.LastSynced,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal replica state: %w", err)
		}
		if err := bucket.Put(keyState, header); err != nil {
			return fmt.Errorf("failed to save replica state: %w", err)
		}

		return nil
	})
}

// truncateLog удаляет записи с ревизией больше rev
func truncateLog(log *bbolt.Bucket, rev int64) error {
	var stale [][]byte

	c := log.Cursor()
	for k, _ := c.Last(); k != nil && keyRevision(k) > rev; k, _ = c.Prev() {
		stale = append(stale, slices.Clone(k))
	}

	for _, k := range stale {
		if err := log.Delete(k); err != nil {
			return fmt.Errorf("failed to delete log entry %d: %w", keyRevision(k), err)
		}
	}
	return nil
}

// LoadReplica reads the replica of the model
func (s *Storage) LoadReplica(ctx context.Context, model models.Address) (*storage.ReplicaState, error) {
	var state *storage.ReplicaState

	err := s.view(func(tx *bbolt.Tx) error {
		replicas := tx.Bucket(bucketReplicas)
		if replicas == nil {
			return fmt.Errorf("replicas bucket not found")
		}

		bucket := replicas.Bucket([]byte(model.String()))
		if bucket == nil {
			return storage.ErrReplicaNotFound
		}

		data := bucket.Get(keyState)
		if data == nil {
			return storage.ErrReplicaNotFound
		}

		var header replicaHeader
		if err := json.Unmarshal(data, &header); err != nil {
			return fmt.Errorf("failed to unmarshal replica state: %w", err)
		}

		state = &storage.ReplicaState{
			Model:      header.Model,
			Confirmed:  header.Confirmed,
			Pending:    header.Pending,
			LogBase:    header.LogBase,
			LastSynced: header.LastSynced,
		}

		log := bucket.Bucket(bucketLog)
		if log == nil {
			return nil
		}
		return log.ForEach(func(k, v []byte) error {
			entry := &models.Event{}
			if err := json.Unmarshal(v, entry); err != nil {
				return fmt.Errorf("failed to unmarshal log entry %d: %w", keyRevision(k), err)
			}
			state.Entries = append(state.Entries, entry)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return state, nil
}

// DeleteReplica removes the stored replica of the model
func (s *Storage) DeleteReplica(ctx context.Context, model models.Address) error {
	return s.update(func(tx *bbolt.Tx) error {
		replicas := tx.Bucket(bucketReplicas)
		if replicas == nil {
			return fmt.Errorf("replicas bucket not found")
		}

		err := replicas.DeleteBucket([]byte(model.String()))
		if errors.Is(err, bbolt.ErrBucketNotFound) {
			return storage.ErrReplicaNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to delete replica: %w", err)
		}
		return nil
	})
}

// ListReplicas returns the addresses of stored replicas
func (s *Storage) ListReplicas(ctx context.Context) ([]models.Address, error) {
	var addrs []models.Address

	err := s.view(func(tx *bbolt.Tx) error {
		replicas := tx.Bucket(bucketReplicas)
		if replicas == nil {
			return fmt.Errorf("replicas bucket not found")
		}

		// Ключи bucket отсортированы, порядок адресов детерминирован
		return replicas.ForEachBucket(func(k []byte) error {
			addr, err := models.ParseAddress(string(k))
			if err != nil {
				return fmt.Errorf("invalid replica key %q: %w", k, err)
			}
			addrs = append(addrs, addr)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return addrs, nil
}
