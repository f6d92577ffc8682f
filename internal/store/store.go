// Package store is a model registry on top of bbolt. Every saved model is a
// JSON encoded model.ModelEnvelope under its name in the "models" bucket.
// Writes are transactional, so a crash mid-save keeps the previous version.
package store

import (
	"encoding/json"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/YuminosukeSato/textnb/core/model"
	"github.com/YuminosukeSato/textnb/pkg/errors"
)

var bucketModels = []byte("models")

// ErrNotFound is returned by Load and Delete for an unknown model name.
var ErrNotFound = errors.New("model not found")

// Entry summarizes a stored model without its learnings.
type Entry struct {
	Name       string    `json:"name"`
	ModelType  string    `json:"modelType"`
	Labels     []string  `json:"labels"`
	Vocabulary int       `json:"vocabulary"`
	SavedAt    time.Time `json:"savedAt"`
	Bytes      int       `json:"bytes"`
}

// Store is a bbolt backed model registry.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) a registry at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "bbolt open %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketModels)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create models bucket")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores env under name, replacing any previous model of that name.
func (s *Store) Save(name string, env *model.ModelEnvelope) error {
	if name == "" {
		return errors.NewInvalidArgumentError("Save", "model name must not be empty")
	}
	if env == nil {
		return errors.NewInvalidArgumentError("Save", "nil envelope")
	}
	if err := env.Validate(); err != nil {
		return err
	}
	data, err := env.ToJSON()
	if err != nil {
		return errors.Wrap(err, "marshal envelope")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketModels).Put([]byte(name), data)
	})
}

// Load returns the envelope stored under name.
func (s *Store) Load(name string) (*model.ModelEnvelope, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketModels).Get([]byte(name))
		if v == nil {
			return nil
		}
		// bbolt のスライスはトランザクション内でのみ有効
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.Wrapf(ErrNotFound, "%q", name)
	}
	env := &model.ModelEnvelope{}
	if err := env.FromJSON(data); err != nil {
		return nil, err
	}
	return env, nil
}

// List returns a summary of every stored model, sorted by name.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketModels).ForEach(func(k, v []byte) error {
			var env model.ModelEnvelope
			if err := json.Unmarshal(v, &env); err != nil {
				return errors.Wrapf(err, "decode %q", k)
			}
			entries = append(entries, Entry{
				Name:       string(k),
				ModelType:  env.ModelType,
				Labels:     env.Labels,
				Vocabulary: env.Vocabulary,
				SavedAt:    env.SavedAt,
				Bytes:      len(v),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Delete removes the model stored under name.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketModels)
		if b.Get([]byte(name)) == nil {
			return errors.Wrapf(ErrNotFound, "%q", name)
		}
		return b.Delete([]byte(name))
	})
}
