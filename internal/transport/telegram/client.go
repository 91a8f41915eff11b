package telegram

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/auth/qrlogin"
	"github.com/gotd/td/telegram/updates"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	channelDomain "github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	messageDomain "github.com/reshetovitsme/channel-watch/internal/modules/message/domain"
	sessionDomain "github.com/reshetovitsme/channel-watch/internal/modules/session/domain"
	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
	"github.com/samber/oops"
)

// memorySession holds the MTProto session blob for one connection
type memorySession struct {
	mu   sync.RWMutex
	data []byte
}

func (s *memorySession) LoadSession(context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.data) == 0 {
		return nil, session.ErrNotFound
	}
	return append([]byte(nil), s.data...), nil
}

func (s *memorySession) StoreSession(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}

// Dialer opens MTProto connections for the session resolver
type Dialer struct {
	appID   int
	appHash string
	log     *slog.Logger
}

// NewDialer creates a dialer for the given application credentials
func NewDialer(appID int, appHash string, log *slog.Logger) *Dialer {
	return &Dialer{
		appID:   appID,
		appHash: appHash,
		log:     log,
	}
}

// Client is a live user-account connection
type Client struct {
	client     *telegram.Client
	api        *tg.Client
	storage    *memorySession
	gaps       *updates.Manager
	dispatcher *tg.UpdateDispatcher
	loggedIn   qrlogin.LoggedIn
	log        *slog.Logger

	runCtx context.Context
	stop   context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	runErr   error
	closing  bool
	handler  func(context.Context, messageDomain.Event)
	watched  map[int64]*channelDomain.Channel
	peers    map[string]tg.InputPeerClass
	selfUser *tg.User
}

// Dial connects with token (nil for a fresh session) and reports whether
// the session is authorized.
func (d *Dialer) Dial(ctx context.Context, token []byte) (*Client, sessionDomain.Outcome, error) {
	d.log.Info("Connecting to Telegram...")

	storage := &memorySession{data: append([]byte(nil), token...)}
	dispatcher := tg.NewUpdateDispatcher()
	gaps := updates.New(updates.Config{Handler: &dispatcher})

	c := &Client{
		client: telegram.NewClient(d.appID, d.appHash, telegram.Options{
			SessionStorage: storage,
			UpdateHandler:  gaps,
		}),
		storage:    storage,
		gaps:       gaps,
		dispatcher: &dispatcher,
		loggedIn:   qrlogin.OnLoginToken(&dispatcher),
		log:        d.log,
		done:       make(chan struct{}),
		watched:    make(map[int64]*channelDomain.Channel),
		peers:      make(map[string]tg.InputPeerClass),
	}
	c.api = c.client.API()
	dispatcher.OnNewChannelMessage(c.onNewChannelMessage)

	ready := make(chan struct{})
	c.runCtx, c.stop = context.WithCancel(context.Background())

	go func() {
		defer close(c.done)
		err := c.client.Run(c.runCtx, func(ctx context.Context) error {
			close(ready)
			<-ctx.Done()
			return ctx.Err()
		})
		c.setErr(err)
	}()

	select {
	case <-ready:
	case <-c.done:
		err := c.Err()
		if outcome, ok := classify(err); ok {
			return c, outcome, nil
		}
		return nil, "", oops.With("context", "failed to connect").Wrap(err)
	case <-ctx.Done():
		c.Close()
		return nil, "", ctx.Err()
	}

	d.log.Info("Connected to Telegram servers")

	status, err := c.client.Auth().Status(ctx)
	if err != nil {
		if outcome, ok := classify(err); ok {
			return c, outcome, nil
		}
		// The server may drop the connection instead of answering.
		if outcome, ok := classify(c.Err()); ok {
			return c, outcome, nil
		}
		c.Close()
		return nil, "", oops.With("context", "failed to check authorization status").Wrap(err)
	}
	if !status.Authorized {
		return c, sessionDomain.OutcomeInvalid, nil
	}
	return c, sessionDomain.OutcomeAuthorized, nil
}

// classify maps an RPC failure to a session outcome. Errors that say
// nothing about the session are left to the caller.
func classify(err error) (sessionDomain.Outcome, bool) {
	switch {
	case err == nil:
		return "", false
	case IsDuplicatedKey(err):
		return sessionDomain.OutcomeDuplicatedKey, true
	case auth.IsUnauthorized(err),
		tgerr.Is(err, "AUTH_KEY_UNREGISTERED", "SESSION_REVOKED", "SESSION_EXPIRED", "USER_DEACTIVATED"):
		return sessionDomain.OutcomeInvalid, true
	default:
		return "", false
	}
}

// IsDuplicatedKey reports whether err means the session key was revoked
// because it is in use elsewhere
func IsDuplicatedKey(err error) bool {
	return stderrors.Is(err, errors.ErrDuplicatedKey) || tgerr.Is(err, "AUTH_KEY_DUPLICATED")
}

func (c *Client) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing || err == nil || stderrors.Is(err, context.Canceled) {
		return
	}
	if c.runErr == nil {
		if IsDuplicatedKey(err) {
			err = stderrors.Join(errors.ErrDuplicatedKey, err)
		}
		c.runErr = err
	}
}

// Session exports the current session blob
func (c *Client) Session(ctx context.Context) ([]byte, error) {
	data, err := c.storage.LoadSession(ctx)
	if stderrors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

// Self returns the logged-in user
func (c *Client) Self(ctx context.Context) (*tg.User, error) {
	c.mu.Lock()
	cached := c.selfUser
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	user, err := c.client.Self(ctx)
	if err != nil {
		return nil, oops.With("context", "failed to get self").Wrap(err)
	}

	c.mu.Lock()
	c.selfUser = user
	c.mu.Unlock()
	return user, nil
}

// Identity describes the logged-in account for logs
func (c *Client) Identity(ctx context.Context) (string, error) {
	user, err := c.Self(ctx)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if user.Username != "" {
		name += " (@" + user.Username + ")"
	}
	return fmt.Sprintf("%s id=%d", name, user.ID), nil
}

// Done is closed when the connection terminates
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the connection terminated, nil after Close
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runErr
}

// Close disconnects and waits for the connection to stop
func (c *Client) Close() error {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()

	c.stop()
	<-c.done
	return nil
}
