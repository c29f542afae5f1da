package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/klabast/wb-services/dayoff-planner/internal/storage"
)

// ErrDuplicateItem is returned by Add when an item with the same
// (dayOff, label) pair already exists. The existing record is untouched.
var ErrDuplicateItem = errors.New("saved item already exists")

// SavedItem is one persisted advance-notice request.
type SavedItem struct {
	ID        string    `json:"id"`
	DayOff    CivilDate `json:"dayOff"`
	Label     string    `json:"label"`
	Submitted bool      `json:"submitted"`
}

// ItemStore owns the saved-item collection. Every mutation is a synchronous
// load-mutate-save against the persistence boundary, so a read immediately
// after a write observes the new state. The store mutex spans the whole
// cycle: no other mutation can slip in between the load and the save.
type ItemStore struct {
	mu  sync.Mutex
	kv  storage.KV
	log zerolog.Logger
}

// NewItemStore creates a store over the given KV.
func NewItemStore(kv storage.KV, log zerolog.Logger) *ItemStore {
	return &ItemStore{kv: kv, log: log}
}

// Add appends a new pending item with a fresh id. Duplicate (dayOff, label)
// pairs are rejected with ErrDuplicateItem.
func (st *ItemStore) Add(dayOff CivilDate, label string) (SavedItem, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	items := st.load()

	for _, it := range items {
		if it.DayOff == dayOff && sameLabel(it.Label, label) {
			return SavedItem{}, ErrDuplicateItem
		}
	}

	item := SavedItem{
		ID:     uuid.NewString(),
		DayOff: dayOff,
		Label:  label,
	}
	items = append(items, item)
	if err := st.save(items); err != nil {
		return SavedItem{}, err
	}
	return item, nil
}

// Remove deletes the item with the given id. An absent id is a no-op.
func (st *ItemStore) Remove(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	items := st.load()
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return st.save(kept)
}

// ToggleSubmitted flips the submitted flag. An absent id is a no-op.
func (st *ItemStore) ToggleSubmitted(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	items := st.load()
	for i := range items {
		if items[i].ID == id {
			items[i].Submitted = !items[i].Submitted
			return st.save(items)
		}
	}
	return nil
}

// Get returns the item with the given id, for populating an edit draft.
func (st *ItemStore) Get(id string) (SavedItem, bool) {
	for _, it := range st.load() {
		if it.ID == id {
			return it, true
		}
	}
	return SavedItem{}, false
}

// List returns the items in ascending dayOff order, ties broken by the
// original insertion order.
func (st *ItemStore) List() []SavedItem {
	items := st.load()
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DayOff.Before(items[j].DayOff)
	})
	return items
}

// Clear empties the whole collection.
func (st *ItemStore) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.kv.Delete(ItemsKey)
}

// load reads the persisted collection. Read failures and malformed records
// degrade to an empty collection.
func (st *ItemStore) load() []SavedItem {
	raw, ok, err := st.kv.Get(ItemsKey)
	if err != nil {
		st.log.Warn().Err(err).Msg("items read failed, treating as empty")
		return nil
	}
	if !ok {
		return nil
	}
	var items []SavedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		st.log.Warn().Err(err).Msg("items record malformed, treating as empty")
		return nil
	}
	return items
}

func (st *ItemStore) save(items []SavedItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := st.kv.Set(ItemsKey, string(raw)); err != nil {
		return fmt.Errorf("persist items: %w", err)
	}
	return nil
}

func sameLabel(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
