// Package screenertest provides a scriptable in-memory Binder for tests of
// code that drives remote screeners.
package screenertest

import (
	"context"
	"errors"
	"sync"
	"time"

	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/ports"
	id "callguard/pkg/domain"
)

// Script describes how one screener behaves.
type Script struct {
	BindErr   error
	ScreenErr error
	// Verdict is delivered Delay after the request. A nil Verdict with
	// Disconnect=false means the screener never answers.
	Verdict    models.Verdict
	Delay      time.Duration
	Disconnect bool
	// WrongCallID answers with a different call id.
	WrongCallID bool
	// SyncConnect connects inside Bind, before it returns.
	SyncConnect bool
}

// Binder is safe for concurrent use.
type Binder struct {
	mu       sync.Mutex
	scripts  map[string]Script
	binds    map[string]int
	requests map[string][]models.ScreeningRequest
	conns    []*Conn
}

func NewBinder() *Binder {
	return &Binder{
		scripts:  make(map[string]Script),
		binds:    make(map[string]int),
		requests: make(map[string][]models.ScreeningRequest),
	}
}

// Script sets the behavior for the screener with the given component.
func (b *Binder) Script(component string, s Script) *Binder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scripts[component] = s
	return b
}

func (b *Binder) Bind(_ context.Context, identity models.ScreeningIdentity, listener ports.SessionListener) (ports.Connection, error) {
	b.mu.Lock()
	script := b.scripts[identity.Component]
	b.binds[identity.Component]++
	if script.BindErr != nil {
		b.mu.Unlock()
		return nil, script.BindErr
	}
	c := &Conn{binder: b, component: identity.Component, script: script, listener: listener}
	b.conns = append(b.conns, c)
	b.mu.Unlock()

	if script.SyncConnect {
		listener.OnConnected(c)
	} else {
		go listener.OnConnected(c)
	}
	return c, nil
}

// Binds is how often the screener was bound.
func (b *Binder) Binds(component string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.binds[component]
}

// Requests returns the screening requests the screener received.
func (b *Binder) Requests(component string) []models.ScreeningRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.ScreeningRequest(nil), b.requests[component]...)
}

// Conns returns every connection handed out so far.
func (b *Binder) Conns() []*Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Conn(nil), b.conns...)
}

// Conn is a fake screener connection.
type Conn struct {
	binder    *Binder
	component string
	script    Script
	listener  ports.SessionListener

	mu       sync.Mutex
	releases int
	timer    *time.Timer
}

var errReleased = errors.New("fake connection released")

func (c *Conn) Screen(_ context.Context, req models.ScreeningRequest) error {
	c.binder.mu.Lock()
	c.binder.requests[c.component] = append(c.binder.requests[c.component], req)
	c.binder.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.releases > 0 {
		return errReleased
	}
	if c.script.ScreenErr != nil {
		return c.script.ScreenErr
	}
	if c.script.Verdict == nil && !c.script.Disconnect {
		return nil
	}

	callID := req.CallID
	if c.script.WrongCallID {
		callID = id.NewCallID()
	}
	deliver := func() {
		if c.script.Disconnect {
			c.listener.OnDisconnected()
			return
		}
		c.listener.OnVerdict(callID, c.script.Verdict)
	}
	c.timer = time.AfterFunc(c.script.Delay, deliver)
	return nil
}

// Release counts releases. Releasing does not stop a scheduled verdict: the
// session must ignore it on its own.
func (c *Conn) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releases++
	return nil
}

// Releases is how often Release was called.
func (c *Conn) Releases() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.releases
}

func (c *Conn) Component() string { return c.component }

// Deliver pushes a verdict to the listener directly, for tests that control
// timing by hand.
func (c *Conn) Deliver(callID id.CallID, v models.Verdict) {
	c.listener.OnVerdict(callID, v)
}

// Disconnect signals a disconnect to the listener directly.
func (c *Conn) Disconnect() {
	c.listener.OnDisconnected()
}
