package tui

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines customizable colors for rendering.
type Theme struct {
	SectionColor string `json:"sectionColor"`
	AddColor     string `json:"addColor"`
	DelColor     string `json:"delColor"`
	MetaColor    string `json:"metaColor"`
	DividerColor string `json:"dividerColor"`
	MarkColor    string `json:"markColor"`
	CursorBg     string `json:"cursorBg"`
	ErrorColor   string `json:"errorColor"`
	ChromaStyle  string `json:"chromaStyle"`
}

func darkTheme() Theme {
	return Theme{
		SectionColor: "63",
		AddColor:     "34",
		DelColor:     "196",
		MetaColor:    "39",
		DividerColor: "240",
		MarkColor:    "214",
		CursorBg:     "237",
		ErrorColor:   "203",
		ChromaStyle:  "monokai",
	}
}

func lightTheme() Theme {
	return Theme{
		SectionColor: "27",
		AddColor:     "22",
		DelColor:     "9",
		MetaColor:    "25",
		DividerColor: "244",
		MarkColor:    "130",
		CursorBg:     "253",
		ErrorColor:   "124",
		ChromaStyle:  "github",
	}
}

// GetTheme returns the requested base theme.
func GetTheme(name string) Theme {
	switch name {
	case "light":
		return lightTheme()
	default: // "dark" or any other value
		return darkTheme()
	}
}

// loadThemeFromRepo merges .stagium/theme.json at repoRoot over the base
// theme, keeping defaults for empty fields.
func loadThemeFromRepo(repoRoot, baseTheme string) Theme {
	t := GetTheme(baseTheme)
	path := filepath.Join(repoRoot, ".stagium", "theme.json")
	b, err := os.ReadFile(path)
	if err != nil {
		return t
	}
	var u Theme
	if err := json.Unmarshal(b, &u); err != nil {
		return t
	}
	if u.SectionColor != "" {
		t.SectionColor = u.SectionColor
	}
	if u.AddColor != "" {
		t.AddColor = u.AddColor
	}
	if u.DelColor != "" {
		t.DelColor = u.DelColor
	}
	if u.MetaColor != "" {
		t.MetaColor = u.MetaColor
	}
	if u.DividerColor != "" {
		t.DividerColor = u.DividerColor
	}
	if u.MarkColor != "" {
		t.MarkColor = u.MarkColor
	}
	if u.CursorBg != "" {
		t.CursorBg = u.CursorBg
	}
	if u.ErrorColor != "" {
		t.ErrorColor = u.ErrorColor
	}
	if u.ChromaStyle != "" {
		t.ChromaStyle = u.ChromaStyle
	}
	return t
}

func (t Theme) SectionText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.SectionColor)).Bold(true).Render(s)
}

func (t Theme) AddText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.AddColor)).Render(s)
}

func (t Theme) DelText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.DelColor)).Render(s)
}

func (t Theme) MetaText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.MetaColor)).Render(s)
}

func (t Theme) DividerText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.DividerColor)).Render(s)
}

func (t Theme) MarkText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.MarkColor)).Bold(true).Render(s)
}

func (t Theme) ErrorText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.ErrorColor)).Render(s)
}
