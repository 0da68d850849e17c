package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	visitsBucket  = []byte("visits")
	queriesBucket = []byte("queries")
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{visitsBucket, queriesBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordVisit adds v to the history or bumps an existing entry. An empty
// TLDR does not overwrite one stored earlier.
func (s *Store) RecordVisit(v *Visit) (*Visit, error) {
	if strings.TrimSpace(v.Title) == "" {
		return nil, fmt.Errorf("visit without title")
	}

	var saved Visit
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(visitsBucket)
		now := s.now()

		saved = *v
		saved.FirstVisited = now
		saved.Count = 0

		if data := b.Get([]byte(v.Title)); data != nil {
			var prev Visit
			if err := json.Unmarshal(data, &prev); err == nil {
				if !prev.FirstVisited.IsZero() {
					saved.FirstVisited = prev.FirstVisited
				}
				saved.Count = prev.Count
				if saved.TLDR == "" {
					saved.TLDR = prev.TLDR
				}
				if saved.Excerpt == "" {
					saved.Excerpt = prev.Excerpt
				}
			}
		}
		saved.LastVisited = now
		saved.Count++

		data, err := json.Marshal(&saved)
		if err != nil {
			return err
		}
		return b.Put([]byte(saved.Title), data)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Store) GetVisit(title string) (*Visit, error) {
	var visit Visit
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(visitsBucket).Get([]byte(title))
		if data == nil {
			return fmt.Errorf("visit %q: %w", title, ErrNotFound)
		}
		return json.Unmarshal(data, &visit)
	})
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// SetTLDR attaches an insight summary line to a visit. The insight can be
// stored before the visit itself, in which case a visit with Count zero
// holds the line until RecordVisit fills it in.
func (s *Store) SetTLDR(title, tldr string) (*Visit, error) {
	if title == "" {
		return nil, fmt.Errorf("tl;dr without title")
	}

	var visit Visit
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(visitsBucket)
		if data := b.Get([]byte(title)); data != nil {
			if err := json.Unmarshal(data, &visit); err != nil {
				return err
			}
		} else {
			now := s.now()
			visit = Visit{Title: title, FirstVisited: now, LastVisited: now}
		}

		visit.TLDR = tldr

		data, err := json.Marshal(&visit)
		if err != nil {
			return err
		}
		return b.Put([]byte(title), data)
	})
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// RecentVisits returns visits newest first. limit <= 0 means all.
// Pending visits created by SetTLDR are left out.
func (s *Store) RecentVisits(limit int) ([]*Visit, error) {
	var visits []*Visit
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(visitsBucket).ForEach(func(_ []byte, v []byte) error {
			var visit Visit
			if err := json.Unmarshal(v, &visit); err != nil {
				return nil
			}
			// Pending tl;dr holders were never actually read.
			if visit.Count == 0 {
				return nil
			}
			visits = append(visits, &visit)
			return nil
		})
	})
	sort.Slice(visits, func(i, j int) bool {
		return visits[i].LastVisited.After(visits[j].LastVisited)
	})
	if limit > 0 && len(visits) > limit {
		visits = visits[:limit]
	}
	return visits, err
}

func (s *Store) DeleteVisit(title string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(visitsBucket).Delete([]byte(title))
	})
}

// RecordQuery remembers a search. Queries are keyed case-insensitively.
func (s *Store) RecordQuery(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	key := []byte(strings.ToLower(text))

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(queriesBucket)

		q := Query{Text: text}
		if data := b.Get(key); data != nil {
			var prev Query
			if err := json.Unmarshal(data, &prev); err == nil {
				q.Count = prev.Count
			}
		}
		q.Count++
		q.LastRun = s.now()

		data, err := json.Marshal(&q)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// RecentQueries returns searches newest first. limit <= 0 means all.
func (s *Store) RecentQueries(limit int) ([]*Query, error) {
	var queries []*Query
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(queriesBucket).ForEach(func(_ []byte, v []byte) error {
			var q Query
			if err := json.Unmarshal(v, &q); err != nil {
				return nil
			}
			queries = append(queries, &q)
			return nil
		})
	})
	sort.Slice(queries, func(i, j int) bool {
		return queries[i].LastRun.After(queries[j].LastRun)
	})
	if limit > 0 && len(queries) > limit {
		queries = queries[:limit]
	}
	return queries, err
}
