package keyterms

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"keyterm-chat-client/api"
	"keyterm-chat-client/utils"
)

// DefaultRelevance is applied when a key term is added without one
const DefaultRelevance = "Low"

var (
	// ErrEmptyTerm is returned when an add is attempted with a blank term
	ErrEmptyTerm = errors.New("key term is empty")

	// ErrBusy is returned when the same action already has a request in flight
	ErrBusy = errors.New("operation already in flight")

	// ErrNoPendingRemoval is returned when a removal is confirmed without
	// being requested first
	ErrNoPendingRemoval = errors.New("no removal pending confirmation")
)

// Action identifies a mutating key-term operation for state gating.
// Different actions may have requests in flight concurrently; the same
// action may not.
type Action int

const (
	ActionAdd Action = iota
	ActionEdit
	ActionRemove
)

// State tracks a single action through its lifecycle:
// Idle -> Submitting -> (Refreshing -> Idle | Idle)
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateRefreshing
)

// Notifier surfaces transient user-visible notifications
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Store mirrors the backend's key-term collection on the client. The
// collection is refetched wholesale after every mutation; the local
// snapshot never diverges from the backend except while a request is in
// flight. When refreshes overlap, the last response to land wins.
type Store struct {
	client api.Assistant
	logger *utils.Logger
	notify Notifier

	mu             sync.Mutex
	terms          map[string]api.KeyTerm
	states         map[Action]State
	pendingRemoval string
	removalStaged  bool
}

// NewStore creates an empty key-term store. notify may be nil.
func NewStore(client api.Assistant, notify Notifier, logger *utils.Logger) *Store {
	return &Store{
		client: client,
		logger: logger,
		notify: notify,
		terms:  map[string]api.KeyTerm{},
		states: map[Action]State{},
	}
}

// Terms returns a copy of the current snapshot
func (s *Store) Terms() map[string]api.KeyTerm {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]api.KeyTerm, len(s.terms))
	for term, kt := range s.terms {
		out[term] = kt
	}
	return out
}

// TermNames returns the terms of the current snapshot in sorted order,
// for stable display
func (s *Store) TermNames() []string {
	s.mu.Lock()
	names := make([]string, 0, len(s.terms))
	for term := range s.terms {
		names = append(names, term)
	}
	s.mu.Unlock()
	sort.Strings(names)
	return names
}

// Get returns the key term for the given name, if present
func (s *Store) Get(term string) (api.KeyTerm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kt, ok := s.terms[term]
	return kt, ok
}

// StateOf returns the lifecycle state of the given action
func (s *Store) StateOf(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[action]
}

// Refresh replaces the local snapshot with the latest server state. On
// failure the prior snapshot is left untouched and a notification raised.
func (s *Store) Refresh(ctx context.Context) error {
	terms, err := s.client.ListKeyTerms(ctx)
	if err != nil {
		s.logger.Error("Failed to refresh key terms: %v", err)
		s.notifyError("Failed to load key terms")
		return err
	}

	s.mu.Lock()
	s.terms = terms
	s.mu.Unlock()

	return nil
}

// Add creates a new key term and refreshes the snapshot. A blank term is
// rejected locally without issuing a request; a blank relevance defaults
// to DefaultRelevance.
func (s *Store) Add(ctx context.Context, term, definition, relevance string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		s.notifyError("Key term cannot be empty")
		return ErrEmptyTerm
	}
	relevance = strings.TrimSpace(relevance)
	if relevance == "" {
		relevance = DefaultRelevance
	}

	if err := s.begin(ActionAdd); err != nil {
		return err
	}
	defer s.end(ActionAdd)

	kt := api.KeyTerm{Definition: definition, Relevance: relevance}
	if err := s.client.CreateKeyTerm(ctx, term, kt); err != nil {
		s.logger.Error("Failed to add key term %q: %v", term, err)
		s.notifyError("Failed to add key term")
		return err
	}

	s.setState(ActionAdd, StateRefreshing)
	// The mutation succeeded; a failed refresh raises its own notification
	s.Refresh(ctx)

	s.notifySuccess("Key term \"" + term + "\" added")
	return nil
}

// Edit updates an existing key term and refreshes the snapshot. The edit
// dialog closes only when this returns nil.
func (s *Store) Edit(ctx context.Context, term, definition, relevance string) error {
	if err := s.begin(ActionEdit); err != nil {
		return err
	}
	defer s.end(ActionEdit)

	kt := api.KeyTerm{Definition: definition, Relevance: strings.TrimSpace(relevance)}
	if err := s.client.UpdateKeyTerm(ctx, term, kt); err != nil {
		s.logger.Error("Failed to update key term %q: %v", term, err)
		s.notifyError("Failed to update key term")
		return err
	}

	s.setState(ActionEdit, StateRefreshing)
	s.Refresh(ctx)

	s.notifySuccess("Key term \"" + term + "\" updated")
	return nil
}

// RequestRemoval stages a term for deletion. No request is issued until
// ConfirmRemoval; a new request replaces any previously staged term.
func (s *Store) RequestRemoval(term string) {
	s.mu.Lock()
	s.pendingRemoval = term
	s.removalStaged = true
	s.mu.Unlock()
}

// PendingRemoval returns the term staged for deletion, if any
func (s *Store) PendingRemoval() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingRemoval, s.removalStaged
}

// CancelRemoval discards the staged removal
func (s *Store) CancelRemoval() {
	s.mu.Lock()
	s.pendingRemoval = ""
	s.removalStaged = false
	s.mu.Unlock()
}

// ConfirmRemoval deletes the staged term and refreshes the snapshot
func (s *Store) ConfirmRemoval(ctx context.Context) error {
	s.mu.Lock()
	if !s.removalStaged {
		s.mu.Unlock()
		return ErrNoPendingRemoval
	}
	term := s.pendingRemoval
	s.pendingRemoval = ""
	s.removalStaged = false
	s.mu.Unlock()

	if err := s.begin(ActionRemove); err != nil {
		return err
	}
	defer s.end(ActionRemove)

	if err := s.client.DeleteKeyTerm(ctx, term); err != nil {
		s.logger.Error("Failed to delete key term %q: %v", term, err)
		s.notifyError("Failed to delete key term")
		return err
	}

	s.setState(ActionRemove, StateRefreshing)
	s.Refresh(ctx)

	s.notifySuccess("Key term \"" + term + "\" deleted")
	return nil
}

// begin moves an action from Idle to Submitting, rejecting reentry
func (s *Store) begin(action Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[action] != StateIdle {
		return ErrBusy
	}
	s.states[action] = StateSubmitting
	return nil
}

func (s *Store) setState(action Action, state State) {
	s.mu.Lock()
	s.states[action] = state
	s.mu.Unlock()
}

func (s *Store) end(action Action) {
	s.setState(action, StateIdle)
}

func (s *Store) notifySuccess(message string) {
	if s.notify != nil {
		s.notify.Success(message)
	}
}

func (s *Store) notifyError(message string) {
	if s.notify != nil {
		s.notify.Error(message)
	}
}
