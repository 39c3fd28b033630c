package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle styles the page title line.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8E4EC6"))

	// AuthorStyle styles the author name in a note header.
	AuthorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7DC4E4"))

	// NewStyle marks notes the viewer has not looked at yet.
	NewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F5A97F")).
			Bold(true)

	// TimestampStyle styles ages and the depth label.
	TimestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// NoticeBadgeStyle and WarningBadgeStyle color header badges.
	NoticeBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#A6DA95")).
				Bold(true)
	WarningBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ED8796")).
				Bold(true)

	// SubjectStyle styles the NIP-14 subject line.
	SubjectStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	ContentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5"))

	// MentionStyle styles resolved #[n] references.
	MentionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8AADF4")).
			Underline(true)

	DeletedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			Strikethrough(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			Italic(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EED49F"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796"))

	ReactionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F5BDE6"))

	// HintStyle styles the action key hints under the selected note.
	HintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			Italic(true)

	// MarkerStyle styles cycle and depth-limit placeholders.
	MarkerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			Italic(true).
			PaddingLeft(2)

	// SelectedStyle highlights the note under the cursor.
	SelectedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8E4EC6")).
			Padding(0, 1)

	// UnselectedStyle gives other notes a subtle border.
	UnselectedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1)

	// EmbeddedStyle frames a reposted note inside its repost.
	EmbeddedStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#45475A")).
			PaddingLeft(1)

	// StatusBarStyle styles the bottom status line.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))
)
