// Package session tracks which documents a reviewer has open in the
// current review session and which one is active. State lives in Redis with
// a sliding TTL; losing it costs nothing but the open-tab layout.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "review:session:" // session state: review:session:{session_id}
	openSetPrefix    = "review:open:"    // set of open document ids: review:open:{session_id}
	sessionTTL       = 24 * time.Hour
)

// State is the snapshot of one review session.
type State struct {
	SessionID string         `json:"session_id"`
	UserUID   string         `json:"user_uid"`
	ActiveDoc string         `json:"active_doc,omitempty"`
	OpenDocs  []string       `json:"open_docs"`
	LastPage  map[string]int `json:"last_page,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Manager handles Redis operations for review sessions.
type Manager struct {
	client *redis.Client
}

// NewManager creates a session manager on the given Redis client.
func NewManager(client *redis.Client) *Manager {
	return &Manager{client: client}
}

// Start creates a new session for the user and returns its state.
func (m *Manager) Start(ctx context.Context, userUID string) (*State, error) {
	st := &State{
		SessionID: uuid.New().String(),
		UserUID:   userUID,
		LastPage:  make(map[string]int),
		OpenDocs:  []string{},
		UpdatedAt: time.Now().UTC(),
	}
	if err := m.save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Get loads a session snapshot.
func (m *Manager) Get(ctx context.Context, sessionID string) (*State, error) {
	data, err := m.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	var st State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &st, nil
}

// Open adds a document to the session's open tabs and makes it active.
func (m *Manager) Open(ctx context.Context, sessionID, documentID string) (*State, error) {
	st, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !contains(st.OpenDocs, documentID) {
		st.OpenDocs = append(st.OpenDocs, documentID)
	}
	st.ActiveDoc = documentID
	if err := m.save(ctx, st); err != nil {
		return nil, err
	}
	// mirror the open set for cheap membership checks
	pipe := m.client.Pipeline()
	pipe.SAdd(ctx, openSetPrefix+sessionID, documentID)
	pipe.Expire(ctx, openSetPrefix+sessionID, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to update open set: %w", err)
	}
	return st, nil
}

// Activate switches the active tab to an already-open document.
func (m *Manager) Activate(ctx context.Context, sessionID, documentID string) (*State, error) {
	st, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !contains(st.OpenDocs, documentID) {
		return nil, ErrNotOpen
	}
	st.ActiveDoc = documentID
	if err := m.save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Close removes a document from the open tabs. When the active tab is
// closed, the most recently opened remaining tab becomes active.
func (m *Manager) Close(ctx context.Context, sessionID, documentID string) (*State, error) {
	st, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	st.OpenDocs = remove(st.OpenDocs, documentID)
	delete(st.LastPage, documentID)
	if st.ActiveDoc == documentID {
		st.ActiveDoc = ""
		if len(st.OpenDocs) > 0 {
			st.ActiveDoc = st.OpenDocs[len(st.OpenDocs)-1]
		}
	}
	if err := m.save(ctx, st); err != nil {
		return nil, err
	}
	if err := m.client.SRem(ctx, openSetPrefix+sessionID, documentID).Err(); err != nil {
		return nil, fmt.Errorf("failed to update open set: %w", err)
	}
	return st, nil
}

// RememberPage records the page last viewed for a document so reopening
// the tab lands where the reviewer left off.
func (m *Manager) RememberPage(ctx context.Context, sessionID, documentID string, page int) error {
	st, err := m.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if st.LastPage == nil {
		st.LastPage = make(map[string]int)
	}
	st.LastPage[documentID] = page
	return m.save(ctx, st)
}

// IsOpen reports whether the document is open in the session.
func (m *Manager) IsOpen(ctx context.Context, sessionID, documentID string) (bool, error) {
	ok, err := m.client.SIsMember(ctx, openSetPrefix+sessionID, documentID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check open set: %w", err)
	}
	return ok, nil
}

// End deletes the session.
func (m *Manager) End(ctx context.Context, sessionID string) error {
	pipe := m.client.Pipeline()
	pipe.Del(ctx, sessionKeyPrefix+sessionID)
	pipe.Del(ctx, openSetPrefix+sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

func (m *Manager) save(ctx context.Context, st *State) error {
	st.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := m.client.Set(ctx, sessionKeyPrefix+st.SessionID, data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
