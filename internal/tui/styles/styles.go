package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	JellyfinPurple = lipgloss.Color("#AA5CC3")
	JellyfinBlue   = lipgloss.Color("#00A4DC")
	DimGray        = lipgloss.Color("#6B7280")
	LightGray      = lipgloss.Color("#9CA3AF")
	White          = lipgloss.Color("#F9FAFB")
	Green          = lipgloss.Color("#10B981")
	Red            = lipgloss.Color("#EF4444")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(JellyfinPurple).
			Bold(true).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(JellyfinBlue)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(JellyfinBlue)
)

// Raw row markers (unstyled)
const (
	FolderChar   = "▸"
	PlayableChar = "●"
	UnknownChar  = "?"
)

// Row marker styles
var (
	FolderStyle   = lipgloss.NewStyle().Foreground(JellyfinPurple)
	PlayableStyle = lipgloss.NewStyle().Foreground(JellyfinBlue)
)

// Filter bar styles
var (
	FilterPromptStyle = lipgloss.NewStyle().Foreground(JellyfinPurple).Bold(true)
	FilterStyle       = lipgloss.NewStyle().Foreground(White)
)
