// Package auth holds the admin credential provider: login, logout, session
// rehydration and the expiry hook that sends the operator back to login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"expo-admin/internal/domain"
	"expo-admin/internal/logger"
	"github.com/sirupsen/logrus"
)

// TokenStore persists the current session across restarts.
type TokenStore interface {
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context) error
}

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (domain.Session, error)
}

// Verifier checks that a stored token is still accepted.
type Verifier interface {
	VerifySession(ctx context.Context, token string) error
}

type Provider struct {
	store    TokenStore
	authn    Authenticator
	verifier Verifier
	log      *logrus.Entry
	now      func() time.Time

	mu      sync.RWMutex
	session domain.Session

	hookMu sync.Mutex
	hooks  []func()
}

type Options struct {
	Store         TokenStore
	Authenticator Authenticator
	// Verifier is optional; without it Restore trusts the stored deadline.
	Verifier Verifier
	Log      *logrus.Entry
	Now      func() time.Time
}

func NewProvider(opts Options) *Provider {
	p := &Provider{
		store:    opts.Store,
		authn:    opts.Authenticator,
		verifier: opts.Verifier,
		log:      opts.Log,
		now:      opts.Now,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.log == nil {
		p.log = logger.For("auth")
	}
	return p
}

// Login reports false with a nil error when the credentials were rejected.
func (p *Provider) Login(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, nil
	}
	session, err := p.authn.Authenticate(ctx, email, password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		p.log.WithField("email", email).Warn("login rejected")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("login: %w", err)
	}
	if session.Email == "" {
		session.Email = email
	}
	if err := p.store.Save(ctx, session); err != nil {
		return false, fmt.Errorf("persist session: %w", err)
	}

	p.mu.Lock()
	p.session = session
	p.mu.Unlock()
	p.log.WithField("email", email).Info("logged in")
	return true, nil
}

func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	p.session = domain.Session{}
	p.mu.Unlock()
	if err := p.store.Delete(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	p.log.Info("logged out")
	return nil
}

// Restore loads a previously stored session. Expired or rejected sessions
// are dropped; a verifier that cannot be reached keeps the session.
func (p *Provider) Restore(ctx context.Context) error {
	session, err := p.store.Load(ctx)
	if errors.Is(err, domain.ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if session.Token == "" || session.Expired(p.now()) {
		return p.drop(ctx, "stored session expired")
	}
	if p.verifier != nil {
		err := p.verifier.VerifySession(ctx, session.Token)
		if errors.Is(err, domain.ErrUnauthorized) {
			return p.drop(ctx, "stored session rejected")
		}
		if err != nil {
			p.log.WithError(err).Warn("could not verify stored session")
		}
	}

	p.mu.Lock()
	p.session = session
	p.mu.Unlock()
	return nil
}

func (p *Provider) IsAuthenticated() bool {
	_, ok := p.Token()
	return ok
}

// Token returns the bearer token while the session is live.
func (p *Provider) Token() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.session.Token == "" || p.session.Expired(p.now()) {
		return "", false
	}
	return p.session.Token, true
}

// Session returns a copy of the current session.
func (p *Provider) Session() domain.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session
}

// Expire is called when the API rejected the token. It clears the session
// and fires the OnExpired hooks once per live session.
func (p *Provider) Expire() {
	p.mu.Lock()
	had := p.session.Token != ""
	p.session = domain.Session{}
	p.mu.Unlock()
	if !had {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.store.Delete(ctx); err != nil {
		p.log.WithError(err).Warn("failed to clear expired session")
	}
	p.log.Warn("session expired")

	p.hookMu.Lock()
	hooks := append([]func(){}, p.hooks...)
	p.hookMu.Unlock()
	for _, h := range hooks {
		h()
	}
}

// OnExpired registers fn to run after the session was expired.
func (p *Provider) OnExpired(fn func()) {
	p.hookMu.Lock()
	p.hooks = append(p.hooks, fn)
	p.hookMu.Unlock()
}

func (p *Provider) drop(ctx context.Context, reason string) error {
	p.log.Info(reason)
	if err := p.store.Delete(ctx); err != nil {
		return fmt.Errorf("drop session: %w", err)
	}
	return nil
}
