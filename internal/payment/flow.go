package payment

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/hash-resume/internal/types"
)

// State of the confirmation flow
type State string

// Flow states
const (
	StateIdle              State = "idle"
	StateAwaitingReference State = "awaiting_reference"
	StateSubmitting        State = "submitting"
	StatePolling           State = "polling"
	StateConfirmed         State = "confirmed"
	StateError             State = "error"
)

// User-facing messages
const (
	MsgInvalidReference = "Please enter a valid Reference Number."
	MsgConnectionFailed = "Connection failed. Please check your internet."
	MsgRegistering      = "Registering transaction..."
	MsgWaiting          = "Waiting for confirmation..."
	MsgVerified         = "Payment Verified!"
	MsgTimedOut         = "Payment confirmation timed out. Please try again."
)

// PaidStatus is the only status text that confirms a payment.
const PaidStatus = "paid"

// Status is a snapshot of the flow.
type Status struct {
	State       State  `json:"state"`
	Reference   string `json:"reference"`
	Error       string `json:"error,omitempty"`
	Message     string `json:"message,omitempty"`
	PaymentLink string `json:"paymentLink,omitempty"`
}

// FlowConfig holds the flow's timing and validation settings.
type FlowConfig struct {
	PollInterval       time.Duration
	ConfirmDelay       time.Duration
	MaxPollDuration    time.Duration // 0 polls until confirmed or closed
	MinReferenceLength int
	PaymentLink        string
}

// DefaultFlowConfig returns the standard settings.
func DefaultFlowConfig() FlowConfig {
	return FlowConfig{
		PollInterval:       5 * time.Second,
		ConfirmDelay:       time.Second,
		MinReferenceLength: 6,
	}
}

func (c FlowConfig) withDefaults() FlowConfig {
	d := DefaultFlowConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.ConfirmDelay <= 0 {
		c.ConfirmDelay = d.ConfirmDelay
	}
	if c.MinReferenceLength <= 0 {
		c.MinReferenceLength = d.MinReferenceLength
	}
	return c
}

// Flow is the payment confirmation state machine. At most one poll loop runs
// at a time, and every transition bumps a generation counter so replies that
// arrive after a close or reopen are dropped.
type Flow struct {
	gateway Gateway
	cfg     FlowConfig

	mu           sync.Mutex
	status       Status
	gen          uint64
	pollCancel   context.CancelFunc
	pollDone     chan struct{}
	confirmTimer *time.Timer
	onConfirmed  func()
	subscribers  map[int]chan Status
	nextSub      int
}

// NewFlow returns an idle flow using gateway.
func NewFlow(gateway Gateway, cfg FlowConfig) *Flow {
	cfg = cfg.withDefaults()
	return &Flow{
		gateway:     gateway,
		cfg:         cfg,
		status:      Status{State: StateIdle, PaymentLink: cfg.PaymentLink},
		subscribers: make(map[int]chan Status),
	}
}

// Config returns the effective configuration.
func (f *Flow) Config() FlowConfig {
	return f.cfg
}

// OnConfirmed registers fn to run when a payment is confirmed. fn runs with
// the flow locked and must not call back into the flow.
func (f *Flow) OnConfirmed(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onConfirmed = fn
}

// Status returns the current snapshot.
func (f *Flow) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Subscribe returns a channel receiving a snapshot after every transition,
// starting with the current one, and a func that ends the subscription.
// Slow readers only miss intermediate snapshots, never the latest.
func (f *Flow) Subscribe() (<-chan Status, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextSub
	f.nextSub++
	ch := make(chan Status, 8)
	ch <- f.status
	f.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if sub, ok := f.subscribers[id]; ok {
				delete(f.subscribers, id)
				close(sub)
			}
		})
	}
}

// Open resets all transient fields and waits for a reference number.
func (f *Flow) Open() Status {
	return f.reset(StateAwaitingReference)
}

// Close stops any poll loop, discards transient state and returns to idle.
// When Close returns no further status request will be made.
func (f *Flow) Close() Status {
	return f.reset(StateIdle)
}

func (f *Flow) reset(state State) Status {
	f.mu.Lock()
	f.gen++
	done := f.stopPollLocked()
	f.stopConfirmTimerLocked()
	f.status = Status{State: state, PaymentLink: f.cfg.PaymentLink}
	f.notifyLocked()
	snapshot := f.status
	f.mu.Unlock()

	if done != nil {
		<-done
	}
	return snapshot
}

// SetReference records the reference number typed by the user.
func (f *Flow) SetReference(reference string) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status.State != StateAwaitingReference && f.status.State != StateError {
		return f.status, ErrInvalidState
	}
	f.status.Reference = reference
	f.notifyLocked()
	return f.status, nil
}

// Submit validates and registers the reference number, then starts polling.
// A short reference fails without any network call. A failed registration
// leaves the flow in the error state without polling.
func (f *Flow) Submit(ctx context.Context) (Status, error) {
	f.mu.Lock()
	if f.status.State != StateAwaitingReference && f.status.State != StateError {
		defer f.mu.Unlock()
		return f.status, ErrInvalidState
	}

	reference := f.status.Reference
	if err := types.ValidateReference(reference, f.cfg.MinReferenceLength); err != nil {
		f.status.State = StateError
		f.status.Error = MsgInvalidReference
		f.status.Message = ""
		f.notifyLocked()
		defer f.mu.Unlock()
		return f.status, &ValidationError{Reference: reference, Message: MsgInvalidReference, Cause: err}
	}

	f.gen++
	gen := f.gen
	done := f.stopPollLocked()
	f.status.State = StateSubmitting
	f.status.Error = ""
	f.status.Message = MsgRegistering
	f.notifyLocked()
	f.mu.Unlock()

	if done != nil {
		<-done
	}

	err := f.gateway.Register(ctx, reference)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return f.status, ErrSuperseded
	}
	if err != nil {
		log.Printf("[PAYMENT] registration of %q failed: %v", reference, err)
		f.status.State = StateError
		f.status.Error = MsgConnectionFailed
		f.status.Message = ""
		f.notifyLocked()
		if _, ok := err.(*GatewayError); !ok {
			err = &GatewayError{Op: "register", Cause: err}
		}
		return f.status, err
	}

	f.status.State = StatePolling
	f.status.Message = MsgWaiting
	f.startPollLocked(gen, reference)
	f.notifyLocked()
	return f.status, nil
}

func (f *Flow) startPollLocked(gen uint64, reference string) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	f.pollCancel = cancel
	f.pollDone = done
	go f.poll(ctx, gen, reference, done)
}

// stopPollLocked cancels the poll loop and returns the channel closed when it exits.
func (f *Flow) stopPollLocked() chan struct{} {
	if f.pollCancel == nil {
		return nil
	}
	f.pollCancel()
	done := f.pollDone
	f.pollCancel = nil
	f.pollDone = nil
	return done
}

func (f *Flow) stopConfirmTimerLocked() {
	if f.confirmTimer != nil {
		f.confirmTimer.Stop()
		f.confirmTimer = nil
	}
}

func (f *Flow) poll(ctx context.Context, gen uint64, reference string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(f.cfg.PollInterval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if f.cfg.MaxPollDuration > 0 {
		timer := time.NewTimer(f.cfg.MaxPollDuration)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			f.timeout(gen)
			return
		case <-ticker.C:
			status, err := f.gateway.Status(ctx, reference)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Printf("[PAYMENT] status check for %q failed: %v", reference, err)
				continue
			}
			if strings.TrimSpace(status) == PaidStatus {
				f.confirm(gen)
				return
			}
		}
	}
}

func (f *Flow) confirm(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || f.status.State != StatePolling {
		return
	}

	// The loop calling confirm exits right after; drop its handles.
	f.pollCancel()
	f.pollCancel = nil
	f.pollDone = nil

	log.Printf("[PAYMENT] reference %q confirmed", f.status.Reference)
	f.status.State = StateConfirmed
	f.status.Message = MsgVerified
	if f.onConfirmed != nil {
		f.onConfirmed()
	}
	f.confirmTimer = time.AfterFunc(f.cfg.ConfirmDelay, func() {
		f.finish(gen)
	})
	f.notifyLocked()
}

// finish closes the flow after the confirmation has been displayed.
func (f *Flow) finish(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || f.status.State != StateConfirmed {
		return
	}
	f.gen++
	f.confirmTimer = nil
	f.status = Status{State: StateIdle, PaymentLink: f.cfg.PaymentLink}
	f.notifyLocked()
}

func (f *Flow) timeout(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || f.status.State != StatePolling {
		return
	}

	f.pollCancel()
	f.pollCancel = nil
	f.pollDone = nil

	log.Printf("[PAYMENT] gave up waiting for %q after %s", f.status.Reference, f.cfg.MaxPollDuration)
	f.status.State = StateError
	f.status.Error = MsgTimedOut
	f.status.Message = ""
	f.notifyLocked()
}

// notifyLocked publishes the current status, replacing a stale queued
// snapshot when a subscriber's buffer is full.
func (f *Flow) notifyLocked() {
	for _, ch := range f.subscribers {
		select {
		case ch <- f.status:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- f.status:
		default:
		}
	}
}
