package note

import (
	"time"

	"nostr-feed/internal/types"
)

// PageKind identifies what the session is looking at
type PageKind int

const (
	PageFeed PageKind = iota
	PageThread
	PagePerson
)

// Page is the active view. A thread page is keyed by the note it is
// centered on and the note the viewer came from.
type Page struct {
	Kind         PageKind
	ID           string
	ReferencedBy string
	PubKey       string
}

// FeedPage returns the main feed page
func FeedPage() Page { return Page{Kind: PageFeed} }

// ThreadPage returns a thread page centered on id
func ThreadPage(id, referencedBy string) Page {
	return Page{Kind: PageThread, ID: id, ReferencedBy: referencedBy}
}

// PersonPage returns the page listing an author's notes
func PersonPage(pubkey string) Page {
	return Page{Kind: PagePerson, PubKey: pubkey}
}

// Feedback is the transient outcome of the last user action
type Feedback struct {
	Message string
	Err     error
	At      time.Time
}

// Session is the state of one viewer's UI session. It is passed
// explicitly to the walker and the dispatcher and must only be used from
// one goroutine at a time.
type Session struct {
	Views    *ViewStates
	Settings types.Settings

	// Dismissed only grows during a session
	Dismissed  []string
	Draft      string
	ReplyingTo string
	Page       Page
	Feedback   Feedback

	// HoverDwell is how long a note must stay hovered, without scrolling,
	// before it counts as viewed
	HoverDwell time.Duration

	hoverID    string
	hoverSince time.Time

	dismissed map[string]struct{}
}

// NewSession creates a session on the feed page
func NewSession(settings types.Settings, dwell time.Duration) *Session {
	return &Session{
		Views:      NewViewStates(),
		Settings:   settings,
		Page:       FeedPage(),
		HoverDwell: dwell,
		dismissed:  make(map[string]struct{}),
	}
}

// Hover reports that id is under the pointer at now. Once the same id has
// been hovered for HoverDwell with no scrolling, it latches as viewed.
// Returns true when id became viewed by this call.
func (s *Session) Hover(id string, now time.Time, scrolling bool) bool {
	if scrolling || id != s.hoverID {
		s.hoverID = id
		s.hoverSince = now
		if scrolling {
			return false
		}
	}
	if id == "" || now.Sub(s.hoverSince) < s.HoverDwell {
		return false
	}
	return s.Views.MarkViewed(id)
}

// Dismiss appends id to the dismissed list
func (s *Session) Dismiss(id string) {
	if s.dismissed == nil {
		s.dismissed = make(map[string]struct{})
	}
	s.Dismissed = append(s.Dismissed, id)
	s.dismissed[id] = struct{}{}
}

// IsDismissed reports whether id was dismissed in this session
func (s *Session) IsDismissed(id string) bool {
	_, ok := s.dismissed[id]
	return ok
}

// IsMain reports whether id is the note the current thread page centers on
func (s *Session) IsMain(id string) bool {
	return s.Page.Kind == PageThread && s.Page.ID == id
}

// Navigate switches the active page
func (s *Session) Navigate(p Page) {
	s.Page = p
}

func (s *Session) succeed(msg string, now time.Time) {
	s.Feedback = Feedback{Message: msg, At: now}
}

func (s *Session) fail(err error, now time.Time) {
	s.Feedback = Feedback{Message: err.Error(), Err: err, At: now}
}

// ClearFeedback drops the transient action outcome
func (s *Session) ClearFeedback() {
	s.Feedback = Feedback{}
}
