package admission

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tcfw/starchain/pkg/block"
	"github.com/tcfw/starchain/pkg/cryptography"
)

const (
	// Window is how long an issued challenge stays signable.
	Window = 300 * time.Second

	domainTag   = "starRegistry"
	maxStoryLen = 500
)

type State uint8

const (
	StateUnvalidated State = iota
	StateValidated
	StateExpired
)

// Request is one identity's admission record.
type Request struct {
	Address  string
	Message  string
	IssuedAt time.Time
	State    State

	timer *clock.Timer
}

// Challenge is the caller-facing view of an issued request.
type Challenge struct {
	WalletAddress    string `json:"walletAddress"`
	Message          string `json:"message"`
	RequestTimeStamp int64  `json:"requestTimeStamp"`
	ValidationWindow int64  `json:"validationWindow"`
}

// Status reports the outcome of a signature validation.
type Status struct {
	Address          string `json:"address"`
	RequestTimeStamp int64  `json:"requestTimeStamp"`
	Message          string `json:"message"`
	ValidationWindow int64  `json:"validationWindow"`
	MessageSignature bool   `json:"messageSignature"`
}

// Pool tracks one admission record per wallet address and gates exactly
// one ledger write per successfully validated address.
type Pool struct {
	mu       sync.Mutex
	requests map[string]*Request

	clock clock.Clock
	log   *logrus.Entry
}

type Option func(*Pool)

func WithClock(c clock.Clock) Option {
	return func(p *Pool) { p.clock = c }
}

func WithLogger(log *logrus.Entry) Option {
	return func(p *Pool) { p.log = log }
}

func New(opts ...Option) *Pool {
	p := &Pool{
		requests: make(map[string]*Request),
		clock:    clock.New(),
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Pool) remaining(r *Request) int64 {
	rem := int64(Window.Seconds()) - int64(p.clock.Since(r.IssuedAt).Seconds())
	if rem < 0 {
		return 0
	}

	return rem
}

func (p *Pool) challenge(r *Request) *Challenge {
	return &Challenge{
		WalletAddress:    r.Address,
		Message:          r.Message,
		RequestTimeStamp: r.IssuedAt.UnixMilli(),
		ValidationWindow: p.remaining(r),
	}
}

// Request issues a challenge for the address, or returns the existing
// one with its remaining window while it is still live. An expired
// record is replaced.
func (p *Pool) Request(address string) (*Challenge, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r, ok := p.requests[address]; ok {
		// validated records live until consumed
		if r.State == StateValidated || (r.State == StateUnvalidated && p.remaining(r) > 0) {
			return p.challenge(r), nil
		}

		r.timer.Stop()
		delete(p.requests, address)
	}

	issued := p.clock.Now()
	r := &Request{
		Address:  address,
		Message:  fmt.Sprintf("%s:%d:%s", address, issued.UnixMilli(), domainTag),
		IssuedAt: issued,
		State:    StateUnvalidated,
	}
	r.timer = p.clock.AfterFunc(Window, func() { p.expire(address, issued) })

	p.requests[address] = r

	p.log.WithField("address", address).Debug("issued validation request")

	return p.challenge(r), nil
}

// expire marks the record expired once its window elapses. The record
// is kept until it is next touched or replaced. The issue timestamp
// guards against a stale timer touching a record that has since been
// replaced.
func (p *Pool) expire(address string, issued time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.requests[address]
	if !ok || !r.IssuedAt.Equal(issued) || r.State != StateUnvalidated {
		return
	}

	r.State = StateExpired

	p.log.WithField("address", address).Debug("validation request expired")
}

// Validate verifies the signature over the address's outstanding
// challenge. Success moves the record to Validated and cancels its
// expiry timer; a bad signature leaves the record untouched.
func (p *Pool) Validate(address string, sig []byte) (*Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.requests[address]
	if !ok || r.State == StateExpired || p.remaining(r) <= 0 {
		return nil, ErrExpiredOrMissing
	}

	st := &Status{
		Address:          r.Address,
		RequestTimeStamp: r.IssuedAt.UnixMilli(),
		Message:          r.Message,
		ValidationWindow: p.remaining(r),
	}

	valid, err := cryptography.VerifyChallenge(r.Address, r.Message, sig)
	if err != nil {
		return st, errors.Wrap(ErrSignature, err.Error())
	}
	if !valid {
		return st, ErrSignature
	}

	r.State = StateValidated
	r.timer.Stop()

	st.MessageSignature = true

	p.log.WithField("address", address).Info("wallet signature validated")

	return st, nil
}

// AuthorizeStar asserts that the address holds a validated record and
// that the star payload is well formed. The record is not consumed, so
// a rejected payload may be corrected and resubmitted within the same
// validated window.
func (p *Pool) AuthorizeStar(address string, star block.Star) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.requests[address]
	if !ok || r.State != StateValidated {
		return ErrExpiredOrMissing
	}

	return validateStar(star)
}

func validateStar(star block.Star) error {
	if star.RA == "" || star.Dec == "" {
		return errors.Wrap(ErrPayload, "ra and dec must be non-empty")
	}

	if len(star.Story) == 0 || len(star.Story) > maxStoryLen {
		return errors.Wrapf(ErrPayload, "story must be between 1 and %d bytes", maxStoryLen)
	}

	for i := 0; i < len(star.Story); i++ {
		if star.Story[i] > 0x7f {
			return errors.Wrap(ErrPayload, "story must be ASCII")
		}
	}

	return nil
}

// Consume removes the address's record after a successful ledger
// append. Idempotent; stopping an already-fired timer is a no-op.
func (p *Pool) Consume(address string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.requests[address]
	if !ok {
		return
	}

	r.timer.Stop()
	delete(p.requests, address)

	p.log.WithField("address", address).Debug("validation request consumed")
}
