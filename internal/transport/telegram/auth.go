package telegram

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/auth/qrlogin"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/reshetovitsme/channel-watch/internal/shared/config"
	"github.com/reshetovitsme/channel-watch/internal/transport/terminal"
	"github.com/samber/oops"
)

// Prompter asks the operator for one line of input
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Authenticator logs a fresh connection in by QR code or phone number
type Authenticator struct {
	method   config.AuthMethod
	prompter Prompter
	out      io.Writer
	log      *slog.Logger
}

// NewAuthenticator creates an interactive authenticator
func NewAuthenticator(method config.AuthMethod, prompter Prompter, out io.Writer, log *slog.Logger) *Authenticator {
	return &Authenticator{
		method:   method,
		prompter: prompter,
		out:      out,
		log:      log,
	}
}

// Authenticate runs the configured login flow once
func (a *Authenticator) Authenticate(ctx context.Context, c *Client) error {
	a.log.Info("Starting authentication", "method", a.method)

	switch a.method {
	case config.AuthMethodPhone:
		return a.phone(ctx, c)
	default:
		return a.qr(ctx, c)
	}
}

func (a *Authenticator) qr(ctx context.Context, c *Client) error {
	_, err := c.client.QR().Auth(ctx, c.loggedIn, func(ctx context.Context, token qrlogin.Token) error {
		a.log.Info("QR code generated, waiting for scan", "expires", token.Expires())
		terminal.ShowQR(a.out, token.URL())
		return nil
	})
	if err == nil {
		a.log.Info("QR code scanned successfully!")
		return nil
	}
	if !tgerr.Is(err, "SESSION_PASSWORD_NEEDED") && !stderrors.Is(err, auth.ErrPasswordAuthNeeded) {
		return oops.With("method", "qr").Wrap(err)
	}

	a.log.Info("Two-factor authentication is enabled")
	password, err := a.prompter.Ask(ctx, "Enter your 2FA password: ")
	if err != nil {
		return oops.With("method", "qr").Wrap(err)
	}
	if _, err := c.client.Auth().Password(ctx, password); err != nil {
		return oops.With("method", "qr", "context", "2FA password rejected").Wrap(err)
	}
	return nil
}

func (a *Authenticator) phone(ctx context.Context, c *Client) error {
	flow := auth.NewFlow(phoneAuth{prompter: a.prompter, log: a.log}, auth.SendCodeOptions{})
	if err := flow.Run(ctx, c.client.Auth()); err != nil {
		return oops.With("method", "phone").Wrap(err)
	}
	return nil
}

// phoneAuth answers the phone login flow through the prompter
type phoneAuth struct {
	prompter Prompter
	log      *slog.Logger
}

func (p phoneAuth) Phone(ctx context.Context) (string, error) {
	p.log.Debug("Phone number requested")
	return p.prompter.Ask(ctx, "Please enter your phone number (with country code, e.g. +1234567890): ")
}

func (p phoneAuth) Password(ctx context.Context) (string, error) {
	p.log.Debug("2FA password requested")
	return p.prompter.Ask(ctx, "Enter your 2FA password: ")
}

func (p phoneAuth) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	p.log.Debug("Login code requested")
	code, err := p.prompter.Ask(ctx, "Please enter the code you received: ")
	return strings.ReplaceAll(code, " ", ""), err
}

func (p phoneAuth) AcceptTermsOfService(_ context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

func (p phoneAuth) SignUp(context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, oops.Errorf("phone number is not registered, sign up in an official client first")
}
