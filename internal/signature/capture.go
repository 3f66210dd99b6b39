// Package signature implements the signature capture state machine: a
// drawn or typed signature is collected, validated for content and packaged
// into an immutable Record handed to a completion callback.
package signature

import (
	"errors"
	"fmt"
	"time"

	"github.com/limitless-hr/hris/internal/rbac"
)

// Mode selects how the signature is captured.
type Mode string

const (
	ModeDrawn Mode = "drawn"
	ModeTyped Mode = "typed"
)

// State of a Capture.
type State int

const (
	StateEmpty State = iota
	StateInProgress
	StateValid
	StateSubmitted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateInProgress:
		return "in_progress"
	case StateValid:
		return "valid"
	case StateSubmitted:
		return "submitted"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

var (
	// ErrEmptySignature is returned by Save when the active surface is blank.
	ErrEmptySignature = errors.New("signature: nothing to save")
	// ErrClosed is returned once the capture was saved or cancelled.
	ErrClosed = errors.New("signature: capture closed")
	// ErrWrongMode rejects input meant for the inactive mode.
	ErrWrongMode = errors.New("signature: wrong capture mode")
	// ErrNoSigner is returned when nobody is signed in at save time.
	ErrNoSigner = errors.New("signature: no signer")
)

// Position places the signature on the document page.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Record is the immutable output of a successful capture.
type Record struct {
	Type      Mode      `json:"type"`
	Data      string    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Signer    string    `json:"signer"`
	Position  Position  `json:"position"`
}

// Options configure a Capture.
type Options struct {
	// Signer supplies the current identity; its name becomes Record.Signer.
	Signer   rbac.SubjectSource
	Position Position
	Width    int
	Height   int
	// OnComplete receives the record exactly once. Its failures are not
	// caught here.
	OnComplete func(Record)
	// OnCancel fires when the capture is abandoned before saving.
	OnCancel func()
	Now      func() time.Time
}

// Capture collects one signature.
type Capture struct {
	opts    Options
	mode    Mode
	raster  *Raster
	text    *Text
	drawing bool
	outcome State
}

// NewCapture starts an empty capture in drawn mode.
func NewCapture(opts Options) *Capture {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Capture{
		opts:   opts,
		mode:   ModeDrawn,
		raster: NewRaster(opts.Width, opts.Height),
		text:   &Text{},
	}
}

// Mode returns the active capture mode.
func (c *Capture) Mode() Mode {
	return c.mode
}

// SetMode switches modes, discarding whatever the previous mode held.
func (c *Capture) SetMode(m Mode) error {
	if c.isClosed() {
		return ErrClosed
	}
	if m != ModeDrawn && m != ModeTyped {
		return fmt.Errorf("%w: %q", ErrWrongMode, m)
	}
	if m == c.mode {
		return nil
	}
	c.active().Clear()
	c.drawing = false
	c.mode = m
	return nil
}

// BeginStroke starts a pen stroke at p.
func (c *Capture) BeginStroke(p Point) error {
	if err := c.requireMode(ModeDrawn); err != nil {
		return err
	}
	c.raster.MoveTo(p)
	c.drawing = true
	return nil
}

// StrokeTo drags the pen to p.
func (c *Capture) StrokeTo(p Point) error {
	if err := c.requireMode(ModeDrawn); err != nil {
		return err
	}
	if !c.drawing {
		return c.BeginStroke(p)
	}
	c.raster.LineTo(p)
	return nil
}

// EndStroke lifts the pen.
func (c *Capture) EndStroke() {
	if c.mode != ModeDrawn {
		return
	}
	c.raster.Lift()
	c.drawing = false
}

// SetText replaces the typed signature text.
func (c *Capture) SetText(s string) error {
	if err := c.requireMode(ModeTyped); err != nil {
		return err
	}
	c.text.Set(s)
	return nil
}

// Text returns the typed signature text.
func (c *Capture) Text() string {
	return c.text.Value()
}

// Clear empties the active surface. Calling it repeatedly is harmless.
func (c *Capture) Clear() {
	if c.isClosed() {
		return
	}
	c.active().Clear()
	c.drawing = false
}

// CanSave reports whether the save action is enabled.
func (c *Capture) CanSave() bool {
	return !c.isClosed() && c.active().HasNonBackgroundContent()
}

// State reports the current state.
func (c *Capture) State() State {
	if c.isClosed() {
		return c.outcome
	}
	if c.drawing {
		return StateInProgress
	}
	if c.active().HasNonBackgroundContent() {
		return StateValid
	}
	if c.mode == ModeTyped && c.text.Value() != "" {
		return StateInProgress
	}
	return StateEmpty
}

// Save packages the active surface into a Record and hands it to
// OnComplete. It refuses blank surfaces.
func (c *Capture) Save() (Record, error) {
	if c.isClosed() {
		return Record{}, ErrClosed
	}
	if !c.active().HasNonBackgroundContent() {
		return Record{}, ErrEmptySignature
	}
	var subject rbac.Subject
	ok := false
	if c.opts.Signer != nil {
		subject, ok = c.opts.Signer.Subject()
	}
	if !ok {
		return Record{}, ErrNoSigner
	}
	c.EndStroke()
	data, err := c.active().Encode()
	if err != nil {
		return Record{}, fmt.Errorf("signature: encode: %w", err)
	}
	rec := Record{
		Type:      c.mode,
		Data:      data,
		Timestamp: c.opts.Now().UTC(),
		Signer:    subject.Name,
		Position:  c.opts.Position,
	}
	c.outcome = StateSubmitted
	if c.opts.OnComplete != nil {
		c.opts.OnComplete(rec)
	}
	return rec, nil
}

// Cancel discards everything captured so far. It is a no-op after Save.
func (c *Capture) Cancel() {
	if c.isClosed() {
		return
	}
	c.raster.Clear()
	c.text.Clear()
	c.drawing = false
	c.outcome = StateCancelled
	if c.opts.OnCancel != nil {
		c.opts.OnCancel()
	}
}

func (c *Capture) active() Surface {
	if c.mode == ModeTyped {
		return c.text
	}
	return c.raster
}

func (c *Capture) isClosed() bool {
	return c.outcome == StateSubmitted || c.outcome == StateCancelled
}

func (c *Capture) requireMode(m Mode) error {
	if c.isClosed() {
		return ErrClosed
	}
	if c.mode != m {
		return ErrWrongMode
	}
	return nil
}
