package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/statusboard/statusboard/internal/storage"
	"github.com/statusboard/statusboard/pkg/logger"
	"github.com/statusboard/statusboard/pkg/metrics"
)

// DefaultVersionPrefix is prepended to the "status:" namespace of every key.
const DefaultVersionPrefix = "v1:"

const namespace = "status:"

// Store implements status CRUD against a storage.KV.
// Reads before writes are not isolated: concurrent writers to one id are
// last-write-wins and a delete racing an update may go either way.
type Store struct {
	kv     storage.KV
	prefix string
	now    func() time.Time
	newID  func() string
}

type Option func(*Store)

// WithVersionPrefix overrides DefaultVersionPrefix.
func WithVersionPrefix(p string) Option {
	return func(s *Store) { s.prefix = p + namespace }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator, for tests.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

func NewStore(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		prefix: DefaultVersionPrefix + namespace,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// KeyPrefix is the prefix every status key starts with.
func (s *Store) KeyPrefix() string { return s.prefix }

func (s *Store) key(id string) string { return s.prefix + id }

// List returns every stored status, newest first. Values that cannot be
// decoded, or that disappear between listing and fetching, are skipped.
func (s *Store) List(ctx context.Context) ([]*Status, error) {
	keys, err := s.kv.List(ctx, s.prefix)
	if err != nil {
		observe("list", err)
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	out := make([]*Status, 0, len(keys))
	for _, k := range keys {
		raw, err := s.kv.Get(ctx, k)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			observe("list", err)
			return nil, fmt.Errorf("list statuses: %w", err)
		}
		st, err := decode(raw)
		if err != nil {
			metrics.SkippedRecords.Inc()
			logger.Debugf("skipping undecodable status %q: %v", k, err)
			continue
		}
		out = append(out, st)
	}
	sortNewestFirst(out)
	observe("list", nil)
	return out, nil
}

// Latest returns the most recently created status, or nil when none exist.
func (s *Store) Latest(ctx context.Context) (*Status, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// Get returns the status for id, or nil when there is none.
func (s *Store) Get(ctx context.Context, id string) (*Status, error) {
	st, err := s.get(ctx, id)
	switch {
	case err != nil:
		observe("get", err)
	case st == nil:
		observe("get", ErrNotFound)
	default:
		observe("get", nil)
	}
	return st, err
}

func (s *Store) get(ctx context.Context, id string) (*Status, error) {
	if id == "" {
		return nil, nil
	}
	raw, err := s.kv.Get(ctx, s.key(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get status %s: %w", id, err)
	}
	st, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode status %s: %w", id, err)
	}
	return st, nil
}

// Create validates p and persists a new status with a fresh id and the
// current time as its date.
func (s *Store) Create(ctx context.Context, p Param) (*Status, error) {
	if err := p.Validate(); err != nil {
		observe("create", err)
		return nil, err
	}
	st := &Status{
		ID:    s.newID(),
		Title: p.Title,
		Body:  p.Body,
		Date:  s.now().UTC(),
	}
	if err := s.put(ctx, st); err != nil {
		observe("create", err)
		return nil, err
	}
	observe("create", nil)
	return st, nil
}

// Update replaces title and body of an existing status. id and date are
// kept. The returned value is the status as it was before the update.
func (s *Store) Update(ctx context.Context, id string, p Param) (*Status, error) {
	if err := p.Validate(); err != nil {
		observe("update", err)
		return nil, err
	}
	prev, err := s.get(ctx, id)
	if err == nil && prev == nil {
		err = ErrNotFound
	}
	if err != nil {
		observe("update", err)
		return nil, err
	}
	next := *prev
	next.Title = p.Title
	next.Body = p.Body
	if err := s.put(ctx, &next); err != nil {
		observe("update", err)
		return nil, err
	}
	observe("update", nil)
	return prev, nil
}

// Delete removes a status and returns it as it was stored.
func (s *Store) Delete(ctx context.Context, id string) (*Status, error) {
	prev, err := s.get(ctx, id)
	if err == nil && prev == nil {
		err = ErrNotFound
	}
	if err != nil {
		observe("delete", err)
		return nil, err
	}
	if err := s.kv.Delete(ctx, s.key(id)); err != nil {
		observe("delete", err)
		return nil, fmt.Errorf("delete status %s: %w", id, err)
	}
	observe("delete", nil)
	return prev, nil
}

func (s *Store) put(ctx context.Context, st *Status) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, s.key(st.ID), b); err != nil {
		return fmt.Errorf("put status %s: %w", st.ID, err)
	}
	return nil
}

// Validate reports the first of title and body that is empty or blank.
func (p Param) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if strings.TrimSpace(p.Body) == "" {
		return &ValidationError{Field: "body", Message: "must not be empty"}
	}
	return nil
}

// decode rejects values missing any field so partial records never surface.
func decode(raw []byte) (*Status, error) {
	var st Status
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	if st.ID == "" || st.Title == "" || st.Body == "" || st.Date.IsZero() {
		return nil, errors.New("incomplete status record")
	}
	return &st, nil
}

func sortNewestFirst(list []*Status) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID < list[j].ID
	})
}

func observe(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrValidation):
		outcome = "invalid"
	default:
		outcome = "error"
	}
	metrics.StoreOperations.WithLabelValues(op, outcome).Inc()
}
