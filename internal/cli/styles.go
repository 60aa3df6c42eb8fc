// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const defaultTermWidth = 100

// Styles contains the renderers used for terminal output.
type Styles struct {
	Message   lipgloss.Style
	Path      lipgloss.Style
	Separator lipgloss.Style
	Title     lipgloss.Style
	Value     lipgloss.Style
	Success   lipgloss.Style
	Failure   lipgloss.Style
	Dim       lipgloss.Style
}

// NewStyles creates a new Styles with the given color mode.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &Styles{
			Message:   plain,
			Path:      plain,
			Separator: plain,
			Title:     plain,
			Value:     plain,
			Success:   plain,
			Failure:   plain,
			Dim:       plain,
		}
	}
	return &Styles{
		Message:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Path:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Title:     lipgloss.NewStyle().Bold(true),
		Value:     lipgloss.NewStyle(),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Failure:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// IsColorEnabled determines if color should be used for the given writer.
// Mode values are "auto", "always" and "never".  In auto mode, color is
// used only if the writer is a terminal and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		// https://no-color.org/
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

func terminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}

// rule returns a horizontal line which spans the terminal, but is never
// wider than 78 characters.
func rule(writer io.Writer) string {
	return strings.Repeat("-", min(terminalWidth(writer), 78))
}
