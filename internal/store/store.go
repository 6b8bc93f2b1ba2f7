package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chesscore/internal/board"
)

// ErrNotFound is returned when no record exists for a key.
var ErrNotFound = errors.New("store: position not found")

// Record key layout: a one-byte namespace prefix followed by the big-endian
// Polyglot hash, so positions iterate in hash order and other record kinds
// can share the database later.
const positionPrefix = byte('p')

// Record value layout: the 32-byte packed position followed by the game ply
// as a big-endian uint16. The ply is reconstruction context the packed form
// does not carry.
const recordSize = 34

// Store is a persistent position store backed by BadgerDB. Safe for
// concurrent use; Badger provides the transaction isolation.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a store in the given directory. An empty dir
// selects the platform default under the application data directory.
func Open(dir string) (*Store, error) {
	if dir == "" {
		var err error
		dir, err = DatabaseDir()
		if err != nil {
			return nil, err
		}
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives only for the process lifetime.
// Used by tests and by callers that want the store API as a cache.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open in-memory: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func positionKey(hash uint64) []byte {
	key := make([]byte, 9)
	key[0] = positionPrefix
	binary.BigEndian.PutUint64(key[1:], hash)
	return key
}

// Save persists the position and returns its Polyglot hash key. Saving the
// same position twice overwrites the record; the hash determines identity,
// so transposed move orders collapse into one record.
func (s *Store) Save(pos *board.Position) (uint64, error) {
	hash := pos.PolyglotHash()
	packed := pos.Pack()

	value := make([]byte, recordSize)
	copy(value, packed[:])
	binary.BigEndian.PutUint16(value[32:], uint16(pos.GamePly()))

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(positionKey(hash), value)
	})
	if err != nil {
		return 0, fmt.Errorf("store: save %016x: %w", hash, err)
	}
	return hash, nil
}

// Load reconstructs the position stored under the given hash key. Returns
// ErrNotFound if no record exists.
func (s *Store) Load(hash uint64) (*board.Position, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(positionKey(hash))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %016x: %w", hash, err)
	}

	return decodeRecord(hash, value)
}

func decodeRecord(hash uint64, value []byte) (*board.Position, error) {
	if len(value) != recordSize {
		return nil, fmt.Errorf("store: record %016x has %d bytes, want %d", hash, len(value), recordSize)
	}

	var packed board.PackedPosition
	copy(packed[:], value[:32])
	gamePly := int(binary.BigEndian.Uint16(value[32:]))

	pos := &board.Position{}
	if err := pos.SetFromPacked(&packed, gamePly); err != nil {
		return nil, fmt.Errorf("store: record %016x: %w", hash, err)
	}
	// A decodable record hashed under the wrong key means the database was
	// tampered with or written by a broken client.
	if got := pos.PolyglotHash(); got != hash {
		return nil, fmt.Errorf("store: record %016x decodes to hash %016x", hash, got)
	}
	return pos, nil
}

// Has reports whether a record exists for the hash key.
func (s *Store) Has(hash uint64) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(positionKey(hash))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the record for the hash key. Deleting a missing record is
// not an error.
func (s *Store) Delete(hash uint64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(positionKey(hash))
	})
}

// Count returns the number of stored positions.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte{positionPrefix}

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// ForEach calls fn for every stored position in hash order. Returning an
// error from fn stops the iteration and is passed through.
func (s *Store) ForEach(fn func(hash uint64, pos *board.Position) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{positionPrefix}

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			hash := binary.BigEndian.Uint64(item.Key()[1:])

			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			pos, err := decodeRecord(hash, value)
			if err != nil {
				return err
			}
			if err := fn(hash, pos); err != nil {
				return err
			}
		}
		return nil
	})
}
