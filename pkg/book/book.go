// Package book implements the engine's opening-book / experience
// collaborator: a badger-backed key/move store that Probe reads before
// a search starts, and Record writes back to after one finishes.
package book

import (
	"encoding/binary"
	"encoding/json"

	"github.com/dgraph-io/badger/v4"

	. "github.com/corvidchess/corvid/pkg/chess"
)

// entry is what gets JSON-encoded under a position's Zobrist key. Move
// is kept alongside a running best score so Record can favor deeper,
// more recent results over a stale book hit without needing a
// separate depth table.
type entry struct {
	Move  Move
	Score int
	Depth int
	Games int
}

// Book is a badger-backed store satisfying engine.Book. A nil *Book
// (as opposed to a non-nil Book with an empty database) is what
// disables probing at the Engine level; this type never needs to
// represent "no book" itself.
type Book struct {
	db *badger.DB
}

// Open opens (creating if necessary) a book database rooted at dir.
func Open(dir string) (*Book, error) {
	var opts = badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Book{db: db}, nil
}

func (b *Book) Close() error {
	return b.db.Close()
}

// Probe implements engine.Book.
func (b *Book) Probe(key uint64) (Move, bool) {
	var move Move
	var found bool
	_ = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyBytes(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var e entry
			if err := json.Unmarshal(val, &e); err != nil {
				return err
			}
			move, found = e.Move, true
			return nil
		})
	})
	return move, found
}

// Record stores or reinforces a position/move pair, called when a
// finished search's own result is worth remembering for next time.
// A deeper result always overwrites; an equal-depth result only
// overwrites when it scores better, so a book position accumulates
// its best-known line instead of flapping between near-equal moves.
func (b *Book) Record(key uint64, move Move, score, depth int) error {
	return b.db.Update(func(txn *badger.Txn) error {
		var e = entry{Move: move, Score: score, Depth: depth, Games: 1}
		item, err := txn.Get(keyBytes(key))
		if err == nil {
			var existing entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err == nil {
				e.Games = existing.Games + 1
				if existing.Depth > depth || (existing.Depth == depth && existing.Score >= score) {
					e.Move, e.Score, e.Depth = existing.Move, existing.Score, existing.Depth
				}
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return txn.Set(keyBytes(key), data)
	})
}

func keyBytes(key uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], key)
	return buf[:]
}
