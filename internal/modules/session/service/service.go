package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"

	"github.com/reshetovitsme/channel-watch/internal/modules/session/domain"
	sessionRepo "github.com/reshetovitsme/channel-watch/internal/modules/session/repository"
	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
	"github.com/samber/oops"
)

// Conn is a live transport connection whose session can be exported
type Conn interface {
	Session(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer connects with a session token (nil for a fresh session) and
// reports the state of that session. A non-nil error is not recoverable.
type Dialer[C Conn] interface {
	Dial(ctx context.Context, token []byte) (C, domain.Outcome, error)
}

// Authenticator logs a fresh connection in with operator interaction
type Authenticator[C Conn] interface {
	Authenticate(ctx context.Context, conn C) error
}

// Service resolves an authorized connection by walking the credential
// tiers: inline token, persisted token, interactive login.
type Service[C Conn] struct {
	dialer Dialer[C]
	auth   Authenticator[C]
	repo   sessionRepo.Repository
	inline domain.Credential
	log    *slog.Logger

	mu          sync.Mutex
	poisoned    map[string]struct{}
	origin      domain.Credential
	current     domain.Credential
	transitions []domain.Transition
}

// New creates a new session resolver
func New[C Conn](dialer Dialer[C], auth Authenticator[C], repo sessionRepo.Repository, inlineToken []byte, log *slog.Logger) *Service[C] {
	return &Service[C]{
		dialer:   dialer,
		auth:     auth,
		repo:     repo,
		inline:   domain.Credential{Source: domain.CredentialSourceInline, Token: inlineToken},
		log:      log,
		poisoned: make(map[string]struct{}),
	}
}

// Next is the passive-tier transition table
func Next(state domain.State, outcome domain.Outcome) domain.State {
	switch {
	case outcome == domain.OutcomeAuthorized:
		return domain.StateAuthorized
	case outcome == domain.OutcomeDuplicatedKey:
		return domain.StateInteractive
	case state == domain.StateTryInline:
		return domain.StateTryFile
	default:
		return domain.StateInteractive
	}
}

// Resolve returns exactly one authorized connection or a fatal error
func (s *Service[C]) Resolve(ctx context.Context) (C, error) {
	s.mu.Lock()
	s.transitions = nil
	s.origin = domain.Credential{}
	s.current = domain.Credential{}
	s.mu.Unlock()

	var (
		conn  C
		zero  C
		fatal error
	)

	state := domain.StateTryFile
	if !s.inline.Empty() && !s.isPoisoned(s.inline) {
		state = domain.StateTryInline
	}

	for {
		switch state {
		case domain.StateTryInline:
			s.log.Info("Attempting inline session token")
			var outcome domain.Outcome
			conn, outcome, fatal = s.attempt(ctx, s.inline)
			if fatal != nil {
				state = s.move(state, domain.StateFatal, "")
				continue
			}
			state = s.move(state, Next(state, outcome), outcome)

		case domain.StateTryFile:
			s.log.Info("Checking for existing session file...", "path", s.repo.Path())
			cred, err := s.loadFile()
			if err != nil {
				if stderrors.Is(err, errors.ErrSessionNotFound) {
					s.log.Info("No existing session found, will need to authenticate")
					state = s.move(state, domain.StateInteractive, "")
					continue
				}
				fatal = err
				state = s.move(state, domain.StateFatal, "")
				continue
			}

			s.log.Info("Found existing session, will attempt to reuse it", "session_length", len(cred.Token))
			var outcome domain.Outcome
			conn, outcome, fatal = s.attempt(ctx, cred)
			if fatal != nil {
				state = s.move(state, domain.StateFatal, "")
				continue
			}
			state = s.move(state, Next(state, outcome), outcome)

		case domain.StateInteractive:
			conn, fatal = s.interactive(ctx)
			if fatal != nil {
				state = s.move(state, domain.StateFatal, "")
				continue
			}
			state = s.move(state, domain.StateAuthorized, domain.OutcomeAuthorized)

		case domain.StateAuthorized:
			s.log.Info("Successfully authenticated with Telegram!")
			s.persist(ctx, conn)
			return conn, nil

		case domain.StateFatal:
			return zero, oops.With("context", "session resolution").Wrap(stderrors.Join(errors.ErrAuthorization, fatal))
		}
	}
}

// Refresh re-persists the live session token, unless it has been marked
// duplicated meanwhile.
func (s *Service[C]) Refresh(ctx context.Context, conn C) {
	s.mu.Lock()
	poisoned := !s.current.Empty() && s.poisonedLocked(s.current)
	s.mu.Unlock()

	if poisoned {
		s.log.Warn("Session is marked duplicated, not persisting it")
		return
	}
	s.persist(ctx, conn)
}

// Invalidate marks the live session as duplicated: its token is never
// attempted again in this process and the persisted file is deleted.
func (s *Service[C]) Invalidate() {
	s.mu.Lock()
	origin, current := s.origin, s.current
	s.mu.Unlock()

	for _, cred := range []domain.Credential{origin, current} {
		if !cred.Empty() {
			s.poison(cred)
		}
	}
	s.deleteFile()
}

// Transitions returns the steps taken by the last Resolve call
func (s *Service[C]) Transitions() []domain.Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Transition(nil), s.transitions...)
}

func (s *Service[C]) attempt(ctx context.Context, cred domain.Credential) (C, domain.Outcome, error) {
	var zero C

	conn, outcome, err := s.dialer.Dial(ctx, cred.Token)
	if err != nil {
		return zero, "", oops.With("source", cred.Source).Wrap(err)
	}

	switch outcome {
	case domain.OutcomeAuthorized:
		s.log.Info("Authorization status: Already authorized", "source", cred.Source)
		s.mu.Lock()
		s.origin = cred
		s.mu.Unlock()
		return conn, outcome, nil
	case domain.OutcomeDuplicatedKey:
		s.log.Warn("Session key is duplicated and was revoked by the server; forcing a new login", "source", cred.Source)
		s.closeConn(conn)
		s.poison(cred)
		s.deleteFile()
		return zero, outcome, nil
	default:
		s.log.Info("Authorization status: Need to authenticate", "source", cred.Source)
		s.closeConn(conn)
		return zero, domain.OutcomeInvalid, nil
	}
}

func (s *Service[C]) interactive(ctx context.Context) (C, error) {
	var zero C

	conn, _, err := s.dialer.Dial(ctx, nil)
	if err != nil {
		return zero, oops.With("source", domain.CredentialSourceNone).Wrap(err)
	}

	if err := s.auth.Authenticate(ctx, conn); err != nil {
		s.closeConn(conn)
		return zero, oops.With("context", "interactive authentication").Wrap(err)
	}
	return conn, nil
}

func (s *Service[C]) loadFile() (domain.Credential, error) {
	token, err := s.repo.Load()
	if err != nil {
		return domain.Credential{}, err
	}

	cred := domain.Credential{Source: domain.CredentialSourceFile, Token: token}
	if s.isPoisoned(cred) {
		s.log.Warn("Persisted session was marked duplicated earlier, discarding it", "path", s.repo.Path())
		s.deleteFile()
		return domain.Credential{}, errors.ErrSessionNotFound
	}
	return cred, nil
}

func (s *Service[C]) persist(ctx context.Context, conn C) {
	token, err := conn.Session(ctx)
	if err != nil {
		s.log.Error("Failed to export session", "error", err)
		return
	}
	if len(token) == 0 {
		return
	}

	s.mu.Lock()
	s.current = domain.Credential{Source: domain.CredentialSourceFile, Token: token}
	s.mu.Unlock()

	if err := s.repo.Save(token); err != nil {
		s.log.Error("Failed to save session", "path", s.repo.Path(), "error", err)
		return
	}
	s.log.Info("Session saved to file", "path", s.repo.Path(), "session_length", len(token))
}

func (s *Service[C]) deleteFile() {
	if err := s.repo.Delete(); err != nil {
		s.log.Error("Failed to delete session file", "path", s.repo.Path(), "error", err)
		return
	}
	s.log.Info("Session file deleted", "path", s.repo.Path())
}

func (s *Service[C]) closeConn(conn C) {
	if err := conn.Close(); err != nil {
		s.log.Debug("Closing rejected connection failed", "error", err)
	}
}

func (s *Service[C]) move(from, to domain.State, outcome domain.Outcome) domain.State {
	s.mu.Lock()
	s.transitions = append(s.transitions, domain.Transition{From: from, To: to, Outcome: outcome})
	s.mu.Unlock()

	s.log.Debug("Session state transition", "from", from, "to", to, "outcome", outcome)
	return to
}

func (s *Service[C]) poison(cred domain.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poisoned[cred.Fingerprint()] = struct{}{}
}

func (s *Service[C]) isPoisoned(cred domain.Credential) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poisonedLocked(cred)
}

func (s *Service[C]) poisonedLocked(cred domain.Credential) bool {
	_, ok := s.poisoned[cred.Fingerprint()]
	return ok
}
