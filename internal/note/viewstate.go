package note

// RenderMode selects how a note body is shown. Modes are exclusive per note.
type RenderMode int

const (
	ModeNormal RenderMode = iota
	ModeRaw
	ModeQR
)

func (m RenderMode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeQR:
		return "qr"
	default:
		return "normal"
	}
}

// NoteState is the presentation state of a single note id.
// Viewed and Approved only ever go from false to true.
type NoteState struct {
	Viewed    bool
	Approved  bool
	Mode      RenderMode
	Height    float64
	HasHeight bool
}

// ViewStates holds NoteState per id for one session. It is not safe for
// concurrent use; a session is driven by a single render loop.
type ViewStates struct {
	states map[string]*NoteState
	qr     map[string]string
}

// NewViewStates returns an empty state table
func NewViewStates() *ViewStates {
	return &ViewStates{
		states: make(map[string]*NoteState),
		qr:     make(map[string]string),
	}
}

func (v *ViewStates) state(id string) *NoteState {
	st, ok := v.states[id]
	if !ok {
		st = &NoteState{}
		v.states[id] = st
	}
	return st
}

// Get returns a copy of the state for id
func (v *ViewStates) Get(id string) NoteState {
	if st, ok := v.states[id]; ok {
		return *st
	}
	return NoteState{}
}

// ToggleRaw switches id into raw mode, or back to normal if already raw
func (v *ViewStates) ToggleRaw(id string) RenderMode {
	return v.toggle(id, ModeRaw)
}

// ToggleQR switches id into QR mode, or back to normal if already showing
// the QR code. The cached QR text is dropped either way.
func (v *ViewStates) ToggleQR(id string) RenderMode {
	delete(v.qr, id)
	return v.toggle(id, ModeQR)
}

func (v *ViewStates) toggle(id string, mode RenderMode) RenderMode {
	st := v.state(id)
	if st.Mode == mode {
		st.Mode = ModeNormal
	} else {
		st.Mode = mode
	}
	return st.Mode
}

// Approve latches the content-warning approval for id and clears its
// height so layout is recomputed. It reports whether state changed.
func (v *ViewStates) Approve(id string) bool {
	st := v.state(id)
	if st.Approved {
		return false
	}
	st.Approved = true
	st.Height, st.HasHeight = 0, false
	return true
}

// MarkViewed latches the viewed flag and reports whether state changed
func (v *ViewStates) MarkViewed(id string) bool {
	st := v.state(id)
	if st.Viewed {
		return false
	}
	st.Viewed = true
	return true
}

// SetHeight records the measured height of id
func (v *ViewStates) SetHeight(id string, h float64) {
	st := v.state(id)
	st.Height, st.HasHeight = h, true
}

// Height returns the last measured height of id
func (v *ViewStates) Height(id string) (float64, bool) {
	st, ok := v.states[id]
	if !ok || !st.HasHeight {
		return 0, false
	}
	return st.Height, true
}

// ClearHeight forgets the measured height of id
func (v *ViewStates) ClearHeight(id string) {
	if st, ok := v.states[id]; ok {
		st.Height, st.HasHeight = 0, false
	}
}

// QRText returns the cached QR rendering for id
func (v *ViewStates) QRText(id string) (string, bool) {
	s, ok := v.qr[id]
	return s, ok
}

// SetQRText caches the QR rendering for id
func (v *ViewStates) SetQRText(id, text string) {
	v.qr[id] = text
}
