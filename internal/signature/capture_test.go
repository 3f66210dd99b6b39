package signature

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limitless-hr/hris/internal/rbac"
)

type signer struct {
	name string
}

func (s signer) Subject() (rbac.Subject, bool) {
	if s.name == "" {
		return rbac.Subject{}, false
	}
	return rbac.Subject{ID: "3", Name: s.name, Role: rbac.RoleEmployee}, true
}

var fixedNow = time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

func newCapture(onComplete func(Record)) *Capture {
	return NewCapture(Options{
		Signer:     signer{name: "John Doe"},
		Position:   Position{X: 120, Y: 480},
		Width:      50,
		Height:     20,
		OnComplete: onComplete,
		Now:        func() time.Time { return fixedNow },
	})
}

func TestRasterBlankUntilDrawn(t *testing.T) {
	r := NewRaster(10, 10)
	assert.False(t, r.HasNonBackgroundContent())
	r.MoveTo(Point{X: 2, Y: 2})
	r.LineTo(Point{X: 7, Y: 5})
	assert.True(t, r.HasNonBackgroundContent())
	r.Clear()
	assert.False(t, r.HasNonBackgroundContent())
}

func TestRasterIgnoresOutOfBounds(t *testing.T) {
	r := NewRaster(10, 10)
	r.MoveTo(Point{X: 100, Y: 100})
	assert.False(t, r.HasNonBackgroundContent())
}

func TestRasterClipsFarAwaySegments(t *testing.T) {
	r := NewRaster(10, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.MoveTo(Point{X: -300000000, Y: -300000000})
		r.LineTo(Point{X: 300000000, Y: 300000000})
		r.Lift()
		r.MoveTo(Point{X: -1000000000, Y: 50})
		r.LineTo(Point{X: -5, Y: 500000000})
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drawing off-canvas segments did not finish")
	}
	assert.Equal(t, ink, r.img.RGBAAt(5, 5))
	assert.Equal(t, background, r.img.RGBAAt(9, 0))
}

func TestRasterMissedSegmentLeavesCanvasBlank(t *testing.T) {
	r := NewRaster(10, 10)
	r.MoveTo(Point{X: -1000000000, Y: 50})
	r.LineTo(Point{X: -5, Y: 500000000})
	assert.False(t, r.HasNonBackgroundContent())
}

func TestRasterEncodeIsPNGDataURL(t *testing.T) {
	r := NewRaster(10, 10)
	r.MoveTo(Point{X: 5, Y: 5})
	data, err := r.Encode()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(data, "data:image/png;base64,"))
}

func TestSaveDisabledForBlankSurfaces(t *testing.T) {
	called := false
	c := newCapture(func(Record) { called = true })

	assert.Equal(t, StateEmpty, c.State())
	assert.False(t, c.CanSave())
	_, err := c.Save()
	assert.ErrorIs(t, err, ErrEmptySignature)

	require.NoError(t, c.SetMode(ModeTyped))
	require.NoError(t, c.SetText("   \t"))
	assert.False(t, c.CanSave())
	assert.Equal(t, StateInProgress, c.State())
	_, err = c.Save()
	assert.ErrorIs(t, err, ErrEmptySignature)
	assert.False(t, called)
}

func TestDrawnSaveProducesRecord(t *testing.T) {
	var got []Record
	c := newCapture(func(r Record) { got = append(got, r) })

	require.NoError(t, c.BeginStroke(Point{X: 1, Y: 1}))
	require.NoError(t, c.StrokeTo(Point{X: 30, Y: 10}))
	assert.Equal(t, StateInProgress, c.State())
	c.EndStroke()
	assert.Equal(t, StateValid, c.State())
	require.True(t, c.CanSave())

	rec, err := c.Save()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec, got[0])
	assert.Equal(t, ModeDrawn, rec.Type)
	assert.Equal(t, "John Doe", rec.Signer)
	assert.Equal(t, fixedNow, rec.Timestamp)
	assert.Equal(t, Position{X: 120, Y: 480}, rec.Position)
	assert.True(t, strings.HasPrefix(rec.Data, "data:image/png;base64,"))
	assert.Equal(t, StateSubmitted, c.State())

	_, err = c.Save()
	assert.ErrorIs(t, err, ErrClosed)
	assert.Len(t, got, 1)
}

func TestTypedSaveProducesRecord(t *testing.T) {
	c := newCapture(nil)
	require.NoError(t, c.SetMode(ModeTyped))
	require.NoError(t, c.SetText("John Doe"))
	assert.Equal(t, StateValid, c.State())

	rec, err := c.Save()
	require.NoError(t, err)
	assert.Equal(t, ModeTyped, rec.Type)
	assert.Equal(t, "John Doe", rec.Data)
}

func TestSaveWithoutSigner(t *testing.T) {
	c := NewCapture(Options{Signer: signer{}})
	require.NoError(t, c.SetMode(ModeTyped))
	require.NoError(t, c.SetText("Someone"))
	_, err := c.Save()
	assert.ErrorIs(t, err, ErrNoSigner)
	assert.NotEqual(t, StateSubmitted, c.State())
}

func TestClearIsIdempotent(t *testing.T) {
	c := newCapture(nil)
	require.NoError(t, c.BeginStroke(Point{X: 3, Y: 3}))
	c.EndStroke()

	c.Clear()
	once := c.State()
	onceSave := c.CanSave()
	c.Clear()
	assert.Equal(t, once, c.State())
	assert.Equal(t, onceSave, c.CanSave())
	assert.Equal(t, StateEmpty, c.State())
	assert.False(t, c.raster.HasNonBackgroundContent())
}

func TestSwitchingModesDiscardsContent(t *testing.T) {
	c := newCapture(nil)
	require.NoError(t, c.BeginStroke(Point{X: 3, Y: 3}))
	c.EndStroke()
	require.True(t, c.CanSave())

	require.NoError(t, c.SetMode(ModeTyped))
	assert.False(t, c.CanSave())
	assert.ErrorIs(t, c.BeginStroke(Point{X: 1, Y: 1}), ErrWrongMode)
	require.NoError(t, c.SetText("John"))

	require.NoError(t, c.SetMode(ModeDrawn))
	assert.False(t, c.CanSave())
	assert.False(t, c.raster.HasNonBackgroundContent())
	assert.Empty(t, c.Text())
	assert.ErrorIs(t, c.SetText("x"), ErrWrongMode)

	assert.ErrorIs(t, c.SetMode("stamp"), ErrWrongMode)
}

func TestCancelDiscardsAndNotifies(t *testing.T) {
	cancelled := 0
	completed := 0
	c := NewCapture(Options{
		Signer:     signer{name: "John Doe"},
		OnCancel:   func() { cancelled++ },
		OnComplete: func(Record) { completed++ },
	})
	require.NoError(t, c.SetMode(ModeTyped))
	require.NoError(t, c.SetText("John Doe"))

	c.Cancel()
	c.Cancel()
	assert.Equal(t, 1, cancelled)
	assert.Equal(t, StateCancelled, c.State())
	assert.Empty(t, c.Text())
	_, err := c.Save()
	assert.ErrorIs(t, err, ErrClosed)
	assert.Zero(t, completed)
}

func TestCallbackPanicIsNotRecovered(t *testing.T) {
	c := newCapture(func(Record) { panic("workflow failed") })
	require.NoError(t, c.SetMode(ModeTyped))
	require.NoError(t, c.SetText("John Doe"))
	assert.PanicsWithValue(t, "workflow failed", func() { _, _ = c.Save() })
}
