// Package intake implements the registration form controller: per-field validation,
// the submission gate and the submission lifecycle.
package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dtroode/confreg-server/internal/api/http/handler"
	"github.com/dtroode/confreg-server/internal/client"
	"github.com/dtroode/confreg-server/internal/model"
	"github.com/dtroode/confreg-server/internal/validation"
)

// State is a step of the submission lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// DefaultResetDelay is how long Success is shown before the form returns to Idle.
const DefaultResetDelay = 4000 * time.Millisecond

// Notices shown to the user.
const (
	NoticeSelectType      = "Please select a registration type"
	NoticeRequiredFields  = "Please fill in all required fields"
	NoticeCompanyRequired = "Company name is required for professional registration"
	NoticeFailed          = "Registration failed. Please try again."
)

var (
	// ErrSubmissionInFlight is returned for any mutation while a submission is running.
	ErrSubmissionInFlight = errors.New("submission already in progress")
	// ErrUnknownField is returned by Edit for fields outside the form.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownType is returned by SelectType for values other than student and professional.
	ErrUnknownType = errors.New("unknown registration type")
	// ErrBlocked is returned by Submit when the gate stops the submission before any request.
	ErrBlocked = errors.New("submission blocked")
	// ErrRejected is returned by Submit when the server refuses the registration.
	ErrRejected = errors.New("registration rejected")
)

// Submitter sends a registration to the API.
type Submitter interface {
	Register(ctx context.Context, req handler.RegisterRequest) (string, error)
}

// Timer is the subset of *time.Timer the controller needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

// FieldState is the validation feedback of one field. Error and Valid are never both set.
type FieldState struct {
	Value string
	Kind  string
	Error string
	Valid bool
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	State            State
	RegistrationType model.RegistrationType
	Fields           map[validation.Field]FieldState
	Notice           string
}

// Controller drives a single registration form. It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	submitter  Submitter
	afterFunc  AfterFunc
	resetDelay time.Duration
	observer   func(from, to State)

	state      State
	regType    model.RegistrationType
	fields     map[validation.Field]FieldState
	notice     string
	resetTimer Timer
	generation uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithResetDelay overrides DefaultResetDelay.
func WithResetDelay(d time.Duration) Option {
	return func(c *Controller) { c.resetDelay = d }
}

// WithAfterFunc replaces time.AfterFunc, mainly for tests.
func WithAfterFunc(f AfterFunc) Option {
	return func(c *Controller) { c.afterFunc = f }
}

// WithObserver registers a callback invoked on every state transition.
// It runs with the controller lock held and must not call back into the controller.
func WithObserver(f func(from, to State)) Option {
	return func(c *Controller) { c.observer = f }
}

// New creates a controller in the Idle state.
func New(submitter Submitter, opts ...Option) *Controller {
	c := &Controller{
		submitter:  submitter,
		resetDelay: DefaultResetDelay,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		state:  StateIdle,
		fields: emptyFields(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectType chooses the registration type and opens the form for editing.
func (c *Controller) SelectType(t model.RegistrationType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSubmitting {
		return ErrSubmissionInFlight
	}

	c.cancelReset()
	c.regType = t
	c.notice = ""
	if company := c.fields[validation.FieldCompany]; company.Value != "" || company.Error != "" {
		c.fields[validation.FieldCompany] = c.check(validation.FieldCompany, company.Value)
	}
	c.transition(StateEditing)
	return nil
}

// Edit sets the value of a field and validates it immediately.
func (c *Controller) Edit(field, value string) error {
	f, ok := validation.ParseField(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSubmitting {
		return ErrSubmissionInFlight
	}

	c.cancelReset()
	c.transition(StateValidating)
	c.fields[f] = c.check(f, value)
	c.transition(StateEditing)
	return nil
}

// Submit re-validates the whole form and, when every gate passes, sends it.
// Gate failures return ErrBlocked without a request; server refusals (4xx, or a 2xx
// with success:false) return ErrRejected;
// transport and server failures are returned wrapped. In every failure case the form
// data is kept and the controller is back in Editing.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}

	req, err := c.gate()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.transition(StateSubmitting)
	c.mu.Unlock()

	_, sendErr := c.submitter.Register(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if sendErr != nil {
		var apiErr *client.APIError
		if errors.As(sendErr, &apiErr) && apiErr.IsRejection() {
			c.notice = apiErr.Message
			if c.notice == "" {
				c.notice = NoticeFailed
			}
			sendErr = fmt.Errorf("%w: %s", ErrRejected, c.notice)
		} else {
			c.notice = NoticeFailed
			sendErr = fmt.Errorf("failed to submit registration: %w", sendErr)
		}
		c.transition(StateFailed)
		c.transition(StateEditing)
		return sendErr
	}

	c.fields = emptyFields()
	c.notice = ""
	c.transition(StateSuccess)
	c.scheduleReset()
	return nil
}

// Reset returns the controller to Idle, clearing the form and the type selection.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	c.cancelReset()
	c.reset()
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := make(map[validation.Field]FieldState, len(c.fields))
	for k, v := range c.fields {
		fields[k] = v
	}
	return Snapshot{
		State:            c.state,
		RegistrationType: c.regType,
		Fields:           fields,
		Notice:           c.notice,
	}
}

// gate runs the pre-submission checks. Called with c.mu held.
func (c *Controller) gate() (handler.RegisterRequest, error) {
	c.transition(StateValidating)

	if c.regType == "" {
		return c.block(NoticeSelectType)
	}

	name := c.fields[validation.FieldName].Value
	email := c.fields[validation.FieldEmail].Value
	company := c.fields[validation.FieldCompany].Value
	phone := c.fields[validation.FieldPhone].Value

	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return c.block(NoticeRequiredFields)
	}
	if c.regType == model.RegistrationTypeProfessional && strings.TrimSpace(company) == "" {
		return c.block(NoticeCompanyRequired)
	}

	failed := false
	for _, f := range validation.Fields {
		st := c.check(f, c.fields[f].Value)
		c.fields[f] = st
		if st.Error != "" {
			failed = true
		}
	}
	if failed {
		return c.block("")
	}

	c.notice = ""
	req := handler.RegisterRequest{
		Name:             name,
		Email:            email,
		RegistrationType: string(c.regType),
	}
	if c.regType == model.RegistrationTypeProfessional {
		req.Company = company
	}
	if phone != "" {
		req.Phone = phone
	}
	return req, nil
}

func (c *Controller) block(notice string) (handler.RegisterRequest, error) {
	c.notice = notice
	c.transition(StateEditing)
	if notice == "" {
		return handler.RegisterRequest{}, fmt.Errorf("%w: invalid fields", ErrBlocked)
	}
	return handler.RegisterRequest{}, fmt.Errorf("%w: %s", ErrBlocked, notice)
}

func (c *Controller) check(f validation.Field, value string) FieldState {
	res := validation.Check(f, value, c.regType)
	return FieldState{
		Value: value,
		Kind:  res.Kind,
		Error: res.Message,
		Valid: res.Valid,
	}
}

func (c *Controller) scheduleReset() {
	gen := c.generation
	c.resetTimer = c.afterFunc(c.resetDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation != gen || c.state != StateSuccess {
			return
		}
		c.resetTimer = nil
		c.reset()
	})
}

func (c *Controller) cancelReset() {
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
	c.generation++
}

func (c *Controller) reset() {
	c.regType = ""
	c.fields = emptyFields()
	c.notice = ""
	c.transition(StateIdle)
}

func (c *Controller) transition(to State) {
	from := c.state
	c.state = to
	if c.observer != nil && from != to {
		c.observer(from, to)
	}
}

func emptyFields() map[validation.Field]FieldState {
	fields := make(map[validation.Field]FieldState, len(validation.Fields))
	for _, f := range validation.Fields {
		fields[f] = FieldState{}
	}
	return fields
}
