package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"

	"github.com/ganot/taskdesk/internal/codec"
	"github.com/ganot/taskdesk/internal/domain/activity"
	"github.com/ganot/taskdesk/internal/ident"
	"github.com/ganot/taskdesk/internal/persist"
	"github.com/ganot/taskdesk/internal/repository"
)

// Store owns the client directory. Names are unique case-insensitively.
type Store struct {
	kv     Storage
	opts   Options
	logger *slog.Logger
	writer *persist.Scheduler[[]Client]

	commitMu sync.Mutex
	mu       sync.Mutex
	clients  []Client
}

// NewStore creates a client directory. Call Load before use.
func NewStore(kv Storage, opts Options, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		kv:      kv,
		opts:    opts.withDefaults(),
		logger:  logger.With("store", "clients"),
		clients: []Client{},
	}
	s.writer = persist.NewScheduler(s.opts.SaveDebounce, s.save)
	return s
}

// Load replaces the directory with the persisted document.
func (s *Store) Load(ctx context.Context) {
	clients := s.read(ctx)

	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = clients
}

func (s *Store) read(ctx context.Context) []Client {
	key := s.opts.StorageKey
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return []Client{}
	}
	if err != nil {
		repository.ClassifyStorageError(ctx, s.logger, s.kv, "load "+key, err)
		return []Client{}
	}

	clients, skipped, ok := codec.DecodeRecords(raw, s.decodeClient)
	if !ok {
		if strings.TrimSpace(raw) != "" {
			s.logger.Warn("stored clients are malformed, discarding", "key", key)
			if err := s.kv.Remove(ctx, key); err != nil {
				repository.ClassifyStorageError(ctx, s.logger, s.kv, "remove "+key, err)
			}
		}
		return []Client{}
	}
	if skipped > 0 {
		s.logger.Warn("skipped unreadable stored clients", "key", key, "skipped", skipped)
	}
	return slices.DeleteFunc(clients, func(c Client) bool { return strings.TrimSpace(c.Name) == "" })
}

type storedClient struct {
	Client
	CreatedAt json.RawMessage `json:"createdAt"`
	UpdatedAt json.RawMessage `json:"updatedAt"`
}

// decodeClient revives one stored client, substituting unreadable dates.
func (s *Store) decodeClient(raw json.RawMessage) (Client, bool) {
	if c, ok := codec.TryDecode[Client](string(raw)); ok {
		return c, true
	}
	stored, ok := codec.TryDecode[storedClient](string(raw))
	if !ok {
		return Client{}, false
	}
	c := stored.Client
	created, createdOK := codec.ReviveTime(stored.CreatedAt)
	updated, updatedOK := codec.ReviveTime(stored.UpdatedAt)
	switch {
	case createdOK && updatedOK:
	case createdOK:
		updated = created
	case updatedOK:
		created = updated
	default:
		created = s.opts.Now()
		updated = created
	}
	c.CreatedAt, c.UpdatedAt = created, updated
	return c, true
}

// Upsert creates a client or, when one with the same name exists ignoring
// case, replaces its contact data and name spelling.
func (s *Store) Upsert(ctx context.Context, in Input) (*Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}

	now := s.opts.Now()
	var saved Client
	_ = s.commit(func(cur []Client) ([]Client, error) {
		next := slices.Clone(cur)
		if idx := indexByName(next, name); idx >= 0 {
			c := next[idx]
			c.Name = name
			c.Phone, c.Phone2 = in.Phone, in.Phone2
			c.Whatsapp, c.Whatsapp2 = in.Whatsapp, in.Whatsapp2
			c.Email = in.Email
			if now.After(c.UpdatedAt) {
				c.UpdatedAt = now
			}
			next[idx] = c
			saved = c
			return next, nil
		}

		saved = Client{
			ID:        ident.New(),
			Name:      name,
			Phone:     in.Phone,
			Phone2:    in.Phone2,
			Whatsapp:  in.Whatsapp,
			Whatsapp2: in.Whatsapp2,
			Email:     in.Email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return append([]Client{saved}, next...), nil
	})

	s.record(ctx, saved.ID, activity.TypeClientSaved, fmt.Sprintf("saved client %q", saved.Name))
	return &saved, nil
}

// FindByName looks a client up ignoring case.
func (s *Store) FindByName(name string) (*Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexByName(s.clients, strings.TrimSpace(name))
	if idx < 0 {
		return nil, false
	}
	c := s.clients[idx]
	return &c, true
}

// Suggest returns up to MaxSuggestions clients whose name contains query,
// names starting with query first, each tier in collation order. A blank
// query yields nothing.
func (s *Store) Suggest(query string) []Client {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Client{}
	}

	var matches []Client
	for _, c := range s.List() {
		if strings.Contains(strings.ToLower(c.Name), q) {
			matches = append(matches, c)
		}
	}

	col := collate.New(s.opts.Language)
	slices.SortStableFunc(matches, func(a, b Client) int {
		aPrefix := strings.HasPrefix(strings.ToLower(a.Name), q)
		bPrefix := strings.HasPrefix(strings.ToLower(b.Name), q)
		if aPrefix != bPrefix {
			if aPrefix {
				return -1
			}
			return 1
		}
		return col.CompareString(a.Name, b.Name)
	})

	if len(matches) > MaxSuggestions {
		matches = matches[:MaxSuggestions]
	}
	return matches
}

// List returns a copy of the directory.
func (s *Store) List() []Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.clients)
}

// Delete removes a client. An unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) bool {
	var name string
	err := s.commit(func(cur []Client) ([]Client, error) {
		idx := slices.IndexFunc(cur, func(c Client) bool { return c.ID == id })
		if idx < 0 {
			return nil, errNoop
		}
		name = cur[idx].Name
		return slices.Delete(slices.Clone(cur), idx, idx+1), nil
	})
	if err != nil {
		return false
	}
	s.record(ctx, id, activity.TypeClientDeleted, fmt.Sprintf("deleted client %q", name))
	return true
}

// Flush writes any pending change now.
func (s *Store) Flush(ctx context.Context) {
	s.writer.Flush()
}

// Close flushes the pending write and stops scheduling new ones.
func (s *Store) Close(ctx context.Context) {
	s.writer.Close(true)
}

var errNoop = errors.New("no change")

func (s *Store) commit(fn func(cur []Client) ([]Client, error)) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	next, err := fn(s.clients)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.clients = next
	s.mu.Unlock()

	s.writer.ScheduleWrite(next)
	return nil
}

func (s *Store) save(snapshot []Client) {
	ctx := context.Background()
	key := s.opts.StorageKey

	doc, ok := codec.Encode(snapshot)
	if !ok {
		s.logger.Error("failed to encode clients", "key", key)
		return
	}
	if err := s.kv.Set(ctx, key, doc); err != nil {
		repository.ClassifyStorageError(ctx, s.logger, s.kv, "save "+key, err)
	}
}

func indexByName(clients []Client, name string) int {
	return slices.IndexFunc(clients, func(c Client) bool { return strings.EqualFold(c.Name, name) })
}

func (s *Store) record(ctx context.Context, id string, typ activity.ActivityType, summary string) {
	if s.opts.Activity == nil {
		return
	}
	s.opts.Activity.Record(ctx, activity.CollectionClients, id, typ, summary)
}
