package viewer

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/session"
)

// ViewState is the client-facing view state of one document.
type ViewState struct {
	ActiveTab    string       `json:"active_tab"`
	Copied       bool         `json:"copied"`
	CopiedUntil  *time.Time   `json:"copied_until,omitempty"`
	RatingPrompt *PromptState `json:"rating_prompt,omitempty"`
}

// PromptState describes the rating prompt.
type PromptState struct {
	Open    bool       `json:"open"`
	Closed  bool       `json:"closed"`
	Rating  int        `json:"rating,omitempty"`
	OpensAt *time.Time `json:"opens_at,omitempty"`
}

type view struct {
	tab       string
	clipboard Clipboard
	prompt    RatingPrompt
	rated     bool
	lastSeen  time.Time
}

type viewKey struct {
	session  string
	document string
}

// Registry holds view state per session and document. State is created on
// first render and dropped on sign-out, on Reset, or after idleTTL without
// use.
type Registry struct {
	mu        sync.Mutex
	views     map[viewKey]*view
	idleTTL   time.Duration
	lastPrune time.Time
	now       func() time.Time
	log       *zap.Logger
}

func NewRegistry(idleTTL time.Duration, log *zap.Logger) *Registry {
	return &Registry{
		views:   make(map[viewKey]*view),
		idleTTL: idleTTL,
		now:     time.Now,
		log:     log,
	}
}

// WithClock replaces the registry clock. Used by tests.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Render returns the view state of doc for the session, creating it on the
// first call. Rendering also opens a due rating prompt.
func (r *Registry) Render(sessionID string, doc *Document) ViewState {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.pruneLocked(now)
	v := r.viewLocked(sessionID, doc, now)
	return v.state(now)
}

// SelectTab switches the active tab.
func (r *Registry) SelectTab(sessionID string, doc *Document, tab string) (ViewState, error) {
	if _, ok := doc.Tab(tab); !ok {
		return ViewState{}, ErrUnknownTab
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	v := r.viewLocked(sessionID, doc, now)
	v.tab = tab
	return v.state(now), nil
}

// Copy starts the copy acknowledgment and returns the text to copy.
func (r *Registry) Copy(sessionID string, doc *Document) (string, ViewState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	v := r.viewLocked(sessionID, doc, now)
	v.clipboard.Copy(now)
	return doc.CopyText(), v.state(now)
}

// Rate submits a rating through the document's prompt. Storing an accepted
// rating is up to the caller.
func (r *Registry) Rate(sessionID string, doc *Document, rating int) (ViewState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	v := r.viewLocked(sessionID, doc, now)
	if !v.rated {
		return v.state(now), ErrPromptNotOpen
	}
	v.prompt.Poll(now)
	if err := v.prompt.Submit(rating); err != nil {
		return v.state(now), err
	}
	return v.state(now), nil
}

// SkipRating closes the rating prompt without a value.
func (r *Registry) SkipRating(sessionID string, doc *Document) ViewState {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	v := r.viewLocked(sessionID, doc, now)
	v.prompt.Skip()
	return v.state(now)
}

// Reset forgets the view state of one document, so the next render starts
// fresh.
func (r *Registry) Reset(sessionID, documentKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, viewKey{sessionID, documentKey})
}

// Drop forgets every view of the session.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.views {
		if k.session == sessionID {
			delete(r.views, k)
		}
	}
}

// Len reports how many views are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// DropOnSignOut subscribes to auth changes and drops the view state of every
// session that signs out.
func (r *Registry) DropOnSignOut(b *session.Broker) *session.Subscription {
	return b.OnAuthStateChange(func(c session.Change) {
		if c.Event == session.SignedOut {
			r.Drop(c.Session.ID)
		}
	})
}

func (r *Registry) viewLocked(sessionID string, doc *Document, now time.Time) *view {
	k := viewKey{sessionID, doc.Key}
	v, ok := r.views[k]
	if !ok {
		v = &view{tab: doc.DefaultTab, rated: doc.Rated}
		if doc.Rated {
			v.prompt = NewRatingPrompt(now)
		}
		r.views[k] = v
	}
	v.lastSeen = now
	return v
}

func (r *Registry) pruneLocked(now time.Time) {
	if r.idleTTL <= 0 || now.Sub(r.lastPrune) < r.idleTTL/4 {
		return
	}
	r.lastPrune = now
	dropped := 0
	for k, v := range r.views {
		if now.Sub(v.lastSeen) > r.idleTTL {
			delete(r.views, k)
			dropped++
		}
	}
	if dropped > 0 {
		r.log.Debug("dropped idle views", zap.Int("count", dropped))
	}
}

func (v *view) state(now time.Time) ViewState {
	st := ViewState{ActiveTab: v.tab, Copied: v.clipboard.Copied(now)}
	if st.Copied {
		until := v.clipboard.Until()
		st.CopiedUntil = &until
	}
	if v.rated {
		open := v.prompt.Poll(now)
		ps := &PromptState{Open: open, Closed: v.prompt.Closed(), Rating: v.prompt.Rating()}
		if !open && !ps.Closed {
			at := v.prompt.OpensAt()
			ps.OpensAt = &at
		}
		st.RatingPrompt = ps
	}
	return st
}
