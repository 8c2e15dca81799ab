// Package session owns the single active session and its lifecycle.
// All mutation goes through the Store's transition methods; every other
// component only ever sees read-only snapshots.
package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hydroanalytics/hydroforecast-go/internal/apperrors"
	"github.com/hydroanalytics/hydroforecast-go/internal/models"
)

// Store holds the process-wide session. Each Loading phase is tagged
// with a monotonically increasing token; writes carrying a stale token
// are rejected so a superseded upload can never overwrite the current
// session. Every transition is a single critical section, so the
// token check and the write cannot be split by a concurrent writer.
type Store struct {
	mu     sync.Mutex
	sess   models.Session
	token  uint64
	logger *logrus.Logger
}

// NewStore creates an empty session store.
func NewStore(logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		sess:   models.Session{Status: models.StatusEmpty},
		logger: logger,
	}
}

// Reset clears all session fields and returns the status to Empty. It
// always succeeds and invalidates any in-flight token.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.sess = models.Session{Status: models.StatusEmpty}
}

// BeginLoading discards the current session, moves to Loading and
// returns the token identifying this loading attempt. Results from
// older attempts are dropped when their token no longer matches.
func (s *Store) BeginLoading() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.sess = models.Session{Status: models.StatusLoading}
	return s.token
}

// SetSeries stores the combined series for the loading attempt
// identified by token. It fails with a StateError if the session is
// not Loading or if a newer upload has superseded the token.
func (s *Store) SetSeries(token uint64, series models.CombinedSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return apperrors.State("stale series write: token %d superseded by %d", token, s.token)
	}
	if s.sess.Status != models.StatusLoading {
		return apperrors.State("cannot set series while session is %s", s.sess.Status)
	}
	clone := series.Clone()
	s.sess.Series = &clone
	return nil
}

// SetAnalysis stores the generated analysis and moves the session to
// Ready. The series must already be set for the same token.
func (s *Store) SetAnalysis(token uint64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return apperrors.State("stale analysis write: token %d superseded by %d", token, s.token)
	}
	if s.sess.Series == nil {
		return apperrors.State("cannot set analysis before the series is loaded")
	}
	s.sess.AnalysisText = text
	s.sess.Status = models.StatusReady
	return nil
}

// AppendChat appends one message to the transcript. The session must
// be Ready; there is nothing to chat about before the dataset has
// finished loading.
func (s *Store) AppendChat(speaker models.Speaker, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(speaker, text)
}

// AppendExchange appends the question and its answer as one atomic
// user-then-assistant pair. Pairs from concurrent questions may
// interleave with each other, but a pair is never split.
func (s *Store) AppendExchange(question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.appendLocked(models.SpeakerUser, question); err != nil {
		return err
	}
	return s.appendLocked(models.SpeakerAssistant, answer)
}

// MarkFailed moves the session to Failed and discards the series,
// analysis and transcript, so the next attempt starts from a clean
// slate. A stale token is a silent no-op: a failure belonging to an
// abandoned upload must not touch the current session.
func (s *Store) MarkFailed(token uint64, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		s.logger.WithFields(logrus.Fields{
			"stale_token":   token,
			"current_token": s.token,
		}).Debug("dropping failure for superseded session")
		return
	}
	s.sess = models.Session{
		Status:        models.StatusFailed,
		FailureReason: reason,
	}
}

// Snapshot returns a read-only deep copy of the current session.
func (s *Store) Snapshot() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.sess
	if s.sess.Series != nil {
		clone := s.sess.Series.Clone()
		snap.Series = &clone
	}
	snap.ChatHistory = make([]models.ChatMessage, len(s.sess.ChatHistory))
	copy(snap.ChatHistory, s.sess.ChatHistory)
	return snap
}

// Token returns the token of the current loading attempt.
func (s *Store) Token() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) appendLocked(speaker models.Speaker, text string) error {
	if s.sess.Status != models.StatusReady {
		return apperrors.State("cannot chat about a dataset that has not finished loading (status %s)", s.sess.Status)
	}
	s.sess.ChatHistory = append(s.sess.ChatHistory, models.ChatMessage{
		Speaker: speaker,
		Text:    text,
		SentAt:  time.Now().UTC(),
	})
	return nil
}
