package note

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nostr-feed/internal/types"
)

func TestRenderModesAreExclusive(t *testing.T) {
	v := NewViewStates()
	id := hexID(1)

	assert.Equal(t, ModeRaw, v.ToggleRaw(id))
	assert.Equal(t, ModeQR, v.ToggleQR(id), "qr replaces raw")
	assert.Equal(t, ModeRaw, v.ToggleRaw(id), "raw replaces qr")
	assert.Equal(t, ModeNormal, v.ToggleRaw(id), "toggling the active mode returns to normal")
	assert.Equal(t, ModeNormal, v.Get(hexID(2)).Mode, "other ids untouched")
}

func TestToggleQRDropsCachedText(t *testing.T) {
	v := NewViewStates()
	id := hexID(1)
	v.ToggleQR(id)
	v.SetQRText(id, "cached")
	v.ToggleQR(id)
	_, ok := v.QRText(id)
	assert.False(t, ok)
}

func TestLatchesAreMonotonic(t *testing.T) {
	v := NewViewStates()
	id := hexID(1)

	assert.True(t, v.MarkViewed(id))
	assert.False(t, v.MarkViewed(id))

	v.SetHeight(id, 10)
	assert.True(t, v.Approve(id))
	_, ok := v.Height(id)
	assert.False(t, ok, "approve clears height")

	v.SetHeight(id, 11)
	assert.False(t, v.Approve(id), "second approve is a no-op")
	h, ok := v.Height(id)
	assert.True(t, ok)
	assert.Equal(t, 11.0, h)

	// nothing resets the latches
	v.ToggleRaw(id)
	v.ToggleQR(id)
	v.ClearHeight(id)
	st := v.Get(id)
	assert.True(t, st.Viewed)
	assert.True(t, st.Approved)
}

func TestHoverDwell(t *testing.T) {
	sess := NewSession(types.Settings{}, 500*time.Millisecond)
	id := hexID(1)
	t0 := time.Unix(100, 0)

	assert.False(t, sess.Hover(id, t0, false))
	assert.False(t, sess.Hover(id, t0.Add(400*time.Millisecond), false))
	// scrolling restarts the dwell
	assert.False(t, sess.Hover(id, t0.Add(450*time.Millisecond), true))
	assert.False(t, sess.Hover(id, t0.Add(900*time.Millisecond), false))
	assert.True(t, sess.Hover(id, t0.Add(950*time.Millisecond), false))
	assert.True(t, sess.Views.Get(id).Viewed)

	// moving to another note restarts too, and viewed stays latched
	other := hexID(2)
	assert.False(t, sess.Hover(other, t0.Add(time.Second), false))
	assert.True(t, sess.Views.Get(id).Viewed)
	assert.False(t, sess.Views.Get(other).Viewed)
}

func TestHoverWithoutDwellMarksImmediately(t *testing.T) {
	sess := NewSession(types.Settings{}, 0)
	assert.True(t, sess.Hover(hexID(1), time.Unix(1, 0), false))
	assert.False(t, sess.Hover(hexID(2), time.Unix(1, 0), true))
}
