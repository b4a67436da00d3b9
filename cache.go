package sentiment

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// ErrCacheMiss is returned when no reusable cache entry exists for a
// dataset, including when the tokenizer fingerprint no longer matches.
var ErrCacheMiss = errors.New("token cache: entry not found")

// TokenCache stores tokenized datasets in a BadgerDB so repeated runs
// skip tokenization. Entries are keyed by dataset name and invalidated
// by tokenizer fingerprint.
//
// Layout: meta:<dataset> holds JSON metadata, batch:<dataset>:<n> holds
// a gob-encoded batch of token slices with their labels.
type TokenCache struct {
	db *badger.DB
}

// CacheMeta describes one cached dataset.
type CacheMeta struct {
	Dataset     string         `json:"dataset"`
	Fingerprint string         `json:"fingerprint"`
	Docs        int            `json:"docs"`
	BatchSize   int            `json:"batch_size"`
	Batches     int            `json:"batches"`
	Labels      map[string]int `json:"labels"`
	CreatedAt   time.Time      `json:"created_at"`
}

type tokenBatch struct {
	Tokens [][]string
	Labels []Label
}

// OpenTokenCache opens (creating if needed) the cache at dir.
func OpenTokenCache(dir string) (*TokenCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open token cache at %s: %w", dir, err)
	}
	return &TokenCache{db: db}, nil
}

// Close releases the underlying database.
func (c *TokenCache) Close() error {
	return c.db.Close()
}

func metaKey(dataset string) []byte {
	return []byte("meta:" + dataset)
}

func batchKey(dataset string, n int) []byte {
	return []byte(fmt.Sprintf("batch:%s:%08d", dataset, n))
}

// Meta returns the cache metadata for a dataset, or ErrCacheMiss.
func (c *TokenCache) Meta(dataset string) (*CacheMeta, error) {
	var meta CacheMeta
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(dataset))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrCacheMiss
		}
		if err != nil {
			return fmt.Errorf("get cache meta: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// Contains reports whether a cache entry exists for the dataset with a
// matching tokenizer fingerprint.
func (c *TokenCache) Contains(dataset, fingerprint string) bool {
	meta, err := c.Meta(dataset)
	return err == nil && meta.Fingerprint == fingerprint
}

// Put stores tokenized documents and labels for a dataset, replacing
// any previous entry.
func (c *TokenCache) Put(ctx context.Context, dataset, fingerprint string, docs [][]string, labels []Label, batchSize int) error {
	if len(docs) != len(labels) {
		return fmt.Errorf("token cache: got %d documents but %d labels", len(docs), len(labels))
	}
	if batchSize < 1 {
		batchSize = 512
	}

	// Drop any stale entry first; a previous run may have used a
	// different batch size and left more batch keys than we are about
	// to write.
	if err := c.db.DropPrefix([]byte("batch:" + dataset + ":")); err != nil {
		return fmt.Errorf("token cache: drop stale batches: %w", err)
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	labelCounts := make(map[string]int)
	for _, l := range labels {
		labelCounts[l.String()]++
	}

	batches := 0
	for start := 0; start < len(docs); start += batchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}

		var buf bytes.Buffer
		batch := tokenBatch{Tokens: docs[start:end], Labels: labels[start:end]}
		if err := gob.NewEncoder(&buf).Encode(batch); err != nil {
			return fmt.Errorf("token cache: encode batch %d: %w", batches, err)
		}
		if err := wb.Set(batchKey(dataset, batches), buf.Bytes()); err != nil {
			return fmt.Errorf("token cache: write batch %d: %w", batches, err)
		}
		batches++
	}

	meta := CacheMeta{
		Dataset:     dataset,
		Fingerprint: fingerprint,
		Docs:        len(docs),
		BatchSize:   batchSize,
		Batches:     batches,
		Labels:      labelCounts,
		CreatedAt:   time.Now().UTC(),
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("token cache: encode meta: %w", err)
	}
	if err := wb.Set(metaKey(dataset), metaData); err != nil {
		return fmt.Errorf("token cache: write meta: %w", err)
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("token cache: flush: %w", err)
	}
	return nil
}

// Get loads the cached tokens and labels for a dataset. A missing entry
// or a fingerprint mismatch returns ErrCacheMiss.
func (c *TokenCache) Get(ctx context.Context, dataset, fingerprint string) ([][]string, []Label, error) {
	meta, err := c.Meta(dataset)
	if err != nil {
		return nil, nil, err
	}
	if meta.Fingerprint != fingerprint {
		return nil, nil, fmt.Errorf("%w: tokenizer options changed since caching", ErrCacheMiss)
	}

	docs := make([][]string, 0, meta.Docs)
	labels := make([]Label, 0, meta.Docs)
	err = c.db.View(func(txn *badger.Txn) error {
		for n := 0; n < meta.Batches; n++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item, err := txn.Get(batchKey(dataset, n))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("token cache: batch %d of %d missing", n, meta.Batches)
			}
			if err != nil {
				return fmt.Errorf("token cache: get batch %d: %w", n, err)
			}

			var batch tokenBatch
			if err := item.Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&batch)
			}); err != nil {
				return fmt.Errorf("token cache: decode batch %d: %w", n, err)
			}
			docs = append(docs, batch.Tokens...)
			labels = append(labels, batch.Labels...)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if len(docs) != meta.Docs {
		return nil, nil, fmt.Errorf("token cache: expected %d documents, decoded %d", meta.Docs, len(docs))
	}
	return docs, labels, nil
}

// Delete removes the cache entry for a dataset.
func (c *TokenCache) Delete(dataset string) error {
	if err := c.db.DropPrefix([]byte("batch:" + dataset + ":")); err != nil {
		return fmt.Errorf("token cache: drop batches: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(metaKey(dataset))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
