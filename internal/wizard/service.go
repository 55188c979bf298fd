package wizard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/session"
)

// staleSubmitAfter is added to the submit delay before a submission left
// behind by a crashed process is abandoned.
const staleSubmitAfter = time.Minute

// finishTimeout bounds recording the outcome of a submission once the
// handoff returned. It runs detached from the request context.
const finishTimeout = 5 * time.Second

// Records reads the persisted health record that seeds new drafts.
type Records interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.HealthInfo, bool, error)
}

// Persister saves a submitted draft as the user's health record.
type Persister func(ctx context.Context, userID uuid.UUID, d Draft) error

// Service keeps one wizard per session.
type Service struct {
	drafts  DraftStore
	records Records
	persist Persister
	delay   time.Duration
	locks   *keyedMutex
	now     func() time.Time
	log     *zap.Logger
}

// NewService builds the assessment service. delay is waited before every
// handoff to persist.
func NewService(drafts DraftStore, records Records, persist Persister, delay time.Duration, log *zap.Logger) *Service {
	return &Service{
		drafts:  drafts,
		records: records,
		persist: persist,
		delay:   delay,
		locks:   newKeyedMutex(),
		now:     time.Now,
		log:     log,
	}
}

// Current returns the session's wizard, seeding one from the saved health
// record (or the defaults) on first use.
func (s *Service) Current(ctx context.Context, sess *session.Session) (State, error) {
	unlock := s.locks.Lock(sess.ID)
	defer unlock()

	w, err := s.load(ctx, sess)
	if err != nil {
		return State{}, err
	}
	return w.Snapshot(), nil
}

// Update edits fields of the current step. Either every value is applied or
// none is.
func (s *Service) Update(ctx context.Context, sess *session.Session, values map[Field]string) (State, error) {
	fields := make([]Field, 0, len(values))
	for f := range values {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	return s.mutate(ctx, sess, func(w *Wizard) error {
		for _, f := range fields {
			if err := w.Set(f, values[f]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Next advances the wizard. The effect is EffectScrollTop when the step
// changed.
func (s *Service) Next(ctx context.Context, sess *session.Session) (State, Effect, error) {
	var effect Effect
	st, err := s.mutate(ctx, sess, func(w *Wizard) error {
		var err error
		effect, err = w.Next()
		return err
	})
	return st, effect, err
}

func (s *Service) Previous(ctx context.Context, sess *session.Session) (State, Effect, error) {
	var effect Effect
	st, err := s.mutate(ctx, sess, func(w *Wizard) error {
		var err error
		effect, err = w.Previous()
		return err
	})
	return st, effect, err
}

func (s *Service) ToggleGoal(ctx context.Context, sess *session.Session, goal string) (State, error) {
	return s.mutate(ctx, sess, func(w *Wizard) error {
		return w.ToggleGoal(goal)
	})
}

// Submit hands the draft to the persister after the configured delay. The
// session lock is released while the handoff runs, so concurrent reads see
// the submitting phase and concurrent edits get ErrSubmitInProgress.
func (s *Service) Submit(ctx context.Context, sess *session.Session) (State, error) {
	unlock := s.locks.Lock(sess.ID)
	w, err := s.load(ctx, sess)
	if err != nil {
		unlock()
		return State{}, err
	}
	d, err := w.BeginSubmit(s.now())
	if err != nil {
		unlock()
		return w.Snapshot(), err
	}
	if err := s.drafts.Save(ctx, sess.ID, w.Snapshot()); err != nil {
		unlock()
		return State{}, err
	}
	unlock()

	handoffErr := s.handoff(ctx, sess.UserID, d)
	if handoffErr != nil {
		s.log.Error("assessment submit failed",
			zap.String("user_id", sess.UserID.String()),
			zap.Error(handoffErr))
	}

	// The outcome is recorded even when the caller went away, otherwise the
	// draft would stay in the submitting phase.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	unlock = s.locks.Lock(sess.ID)
	defer unlock()

	st, err := s.drafts.Load(finishCtx, sess.ID)
	if errors.Is(err, ErrNoDraft) {
		// Discarded while submitting (start over or sign-out).
		discarded := State{Step: LastStep, Phase: PhaseEditing, Draft: d}
		if handoffErr != nil {
			return discarded, fmt.Errorf("failed to submit assessment: %w", handoffErr)
		}
		return discarded, ErrSubmitDiscarded
	}
	if err != nil {
		return State{}, err
	}
	w, err = Restore(*st)
	if err != nil {
		return State{}, err
	}
	w.FinishSubmit(handoffErr)

	final := w.Snapshot()
	if err := s.drafts.Save(finishCtx, sess.ID, final); err != nil {
		return State{}, err
	}
	if handoffErr != nil {
		return final, fmt.Errorf("failed to submit assessment: %w", handoffErr)
	}

	s.log.Info("assessment submitted", zap.String("user_id", sess.UserID.String()))
	return final, nil
}

func (s *Service) handoff(ctx context.Context, userID uuid.UUID, d Draft) error {
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.persist(ctx, userID, d)
}

// Discard drops the session's wizard. The next Current reseeds from the
// saved health record.
func (s *Service) Discard(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.drafts.Delete(ctx, sessionID)
}

// DiscardOnSignOut subscribes to auth changes and drops the draft of every
// session that signs out.
func (s *Service) DiscardOnSignOut(b *session.Broker) *session.Subscription {
	return b.OnAuthStateChange(func(c session.Change) {
		if c.Event != session.SignedOut {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.Discard(ctx, c.Session.ID); err != nil {
			s.log.Warn("failed to discard draft on sign-out",
				zap.String("session_id", c.Session.ID),
				zap.Error(err))
		}
	})
}

func (s *Service) mutate(ctx context.Context, sess *session.Session, fn func(*Wizard) error) (State, error) {
	unlock := s.locks.Lock(sess.ID)
	defer unlock()

	w, err := s.load(ctx, sess)
	if err != nil {
		return State{}, err
	}
	before := w.Snapshot()
	if err := fn(w); err != nil {
		return before, err
	}

	after := w.Snapshot()
	if err := s.drafts.Save(ctx, sess.ID, after); err != nil {
		return before, err
	}
	return after, nil
}

// load must be called with the session lock held.
func (s *Service) load(ctx context.Context, sess *session.Session) (*Wizard, error) {
	st, err := s.drafts.Load(ctx, sess.ID)
	switch {
	case err == nil:
		w, err := Restore(*st)
		if err != nil {
			s.log.Warn("discarding unreadable draft", zap.String("session_id", sess.ID), zap.Error(err))
			break
		}
		if s.abandoned(w) {
			w.FinishSubmit(errors.New("submission was interrupted"))
			if err := s.drafts.Save(ctx, sess.ID, w.Snapshot()); err != nil {
				return nil, err
			}
		}
		return w, nil
	case !errors.Is(err, ErrNoDraft):
		return nil, err
	}

	info, ok, err := s.records.Get(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load health info: %w", err)
	}
	d := DefaultDraft()
	if ok {
		d = DraftFromHealthInfo(info)
	}

	w := New(d)
	if err := s.drafts.Save(ctx, sess.ID, w.Snapshot()); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) abandoned(w *Wizard) bool {
	st := w.Snapshot()
	if st.Phase != PhaseSubmitting || st.SubmitStartedAt == nil {
		return false
	}
	return s.now().Sub(*st.SubmitStartedAt) > s.delay+staleSubmitAfter
}

// keyedMutex serialises work per session id within this process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
