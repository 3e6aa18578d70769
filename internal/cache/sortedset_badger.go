// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Key layout, with \x00 terminating the set name so that no set name is a
// prefix of another:
//
//	zs\x00{key}\x00m{member}            -> score (8 bytes)
//	zs\x00{key}\x00s{rank score}{member} -> empty
//
// The rank score is the score transformed so that ascending byte order is
// descending numeric order.
const (
	sortedSetPrefix = "zs\x00"
	memberTag       = 'm'
	scoreTag        = 's'
)

// BadgerSortedSet is a SortedSet persisted in BadgerDB.
type BadgerSortedSet struct {
	db     *badger.DB
	ownsDB bool
}

var _ SortedSet = (*BadgerSortedSet)(nil)

// OpenBadgerSortedSet opens (or creates) a BadgerDB at path. An empty path
// opens an in-memory database.
func OpenBadgerSortedSet(path string) (*BadgerSortedSet, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger sorted set: %w", err)
	}
	return &BadgerSortedSet{db: db, ownsDB: true}, nil
}

// NewBadgerSortedSet uses an already open database. Close leaves it open.
func NewBadgerSortedSet(db *badger.DB) *BadgerSortedSet {
	return &BadgerSortedSet{db: db}
}

// Add implements SortedSet.
func (b *BadgerSortedSet) Add(ctx context.Context, key string, members ...ScoredMember) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		for _, sm := range members {
			mk := memberKey(key, sm.Member)
			item, err := txn.Get(mk)
			switch {
			case err == nil:
				var old float64
				if err := item.Value(func(val []byte) error {
					old = math.Float64frombits(binary.BigEndian.Uint64(val))
					return nil
				}); err != nil {
					return err
				}
				if err := txn.Delete(scoreKey(key, old, sm.Member)); err != nil {
					return fmt.Errorf("remove previous score: %w", err)
				}
			case !errors.Is(err, badger.ErrKeyNotFound):
				return fmt.Errorf("read member: %w", err)
			}

			val := make([]byte, 8)
			binary.BigEndian.PutUint64(val, math.Float64bits(sm.Score))
			if err := txn.Set(mk, val); err != nil {
				return fmt.Errorf("set member: %w", err)
			}
			if err := txn.Set(scoreKey(key, sm.Score, sm.Member), nil); err != nil {
				return fmt.Errorf("set score: %w", err)
			}
		}
		return nil
	})
}

// Delete implements SortedSet.
func (b *BadgerSortedSet) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	keys, err := b.keysWithPrefix(setPrefix(key))
	if err != nil {
		return err
	}
	return b.deleteKeys(keys)
}

// ReverseRange implements SortedSet.
func (b *BadgerSortedSet) ReverseRange(ctx context.Context, key string, start, stop int) ([]ScoredMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if start < 0 {
		start = 0
	}
	out := make([]ScoredMember, 0)
	prefix := append(setPrefix(key), scoreTag)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		rank := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if stop >= 0 && rank > stop {
				break
			}
			if rank >= start {
				k := it.Item().Key()[len(prefix):]
				out = append(out, ScoredMember{
					Score:  decodeRankScore(binary.BigEndian.Uint64(k[:8])),
					Member: decodeMember(binary.BigEndian.Uint64(k[8:16])),
				})
			}
			rank++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", key, err)
	}
	return out, nil
}

// Card implements SortedSet.
func (b *BadgerSortedSet) Card(ctx context.Context, key string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	keys, err := b.keysWithPrefix(append(setPrefix(key), scoreTag))
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Expire implements SortedSet. Badger expiry is per entry, so every entry
// of the set is rewritten with the new TTL.
func (b *BadgerSortedSet) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := setPrefix(key)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)

		var entries []*badger.Entry
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				it.Close()
				return err
			}
			entries = append(entries, badger.NewEntry(item.KeyCopy(nil), val).WithTTL(ttl))
		}
		it.Close()

		for _, e := range entries {
			if err := txn.SetEntry(e); err != nil {
				return fmt.Errorf("set ttl: %w", err)
			}
		}
		return nil
	})
}

// Flush implements SortedSet.
func (b *BadgerSortedSet) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.DropPrefix([]byte(sortedSetPrefix))
}

// Close implements SortedSet.
func (b *BadgerSortedSet) Close() error {
	if !b.ownsDB {
		return nil
	}
	return b.db.Close()
}

// RunGC reclaims value log space. Call periodically on disk-backed stores.
func (b *BadgerSortedSet) RunGC(discardRatio float64) error {
	err := b.db.RunValueLogGC(discardRatio)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}

func (b *BadgerSortedSet) keysWithPrefix(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

// deleteKeys removes keys through a WriteBatch, which splits oversized
// deletions across transactions.
func (b *BadgerSortedSet) deleteKeys(keys [][]byte) error {
	if len(keys) == 0 {
		return nil
	}
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return fmt.Errorf("delete key: %w", err)
		}
	}
	return wb.Flush()
}

func setPrefix(key string) []byte {
	p := make([]byte, 0, len(sortedSetPrefix)+len(key)+1)
	p = append(p, sortedSetPrefix...)
	p = append(p, key...)
	return append(p, 0)
}

func memberKey(key string, member int64) []byte {
	k := append(setPrefix(key), memberTag)
	return binary.BigEndian.AppendUint64(k, encodeMember(member))
}

func scoreKey(key string, score float64, member int64) []byte {
	k := append(setPrefix(key), scoreTag)
	k = binary.BigEndian.AppendUint64(k, encodeRankScore(score))
	return binary.BigEndian.AppendUint64(k, encodeMember(member))
}

// encodeMember flips the sign bit so negative ids sort before positive ones.
func encodeMember(member int64) uint64 {
	return uint64(member) ^ (1 << 63)
}

func decodeMember(u uint64) int64 {
	return int64(u ^ (1 << 63))
}

// encodeRankScore maps a float64 to a uint64 whose byte order is the
// reverse of the numeric order of the scores.
func encodeRankScore(score float64) uint64 {
	bits := math.Float64bits(score)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	return ^bits
}

func decodeRankScore(u uint64) float64 {
	bits := ^u
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits)
}
