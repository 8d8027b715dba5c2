package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xeitosa/socialai/internal/artist"
)

var errCancelled = errors.New("cancelled")

// pickerState tracks which phase the TUI is in.
type pickerState int

const (
	statePickArtist pickerState = iota
	stateInstructions
)

// pickerModel is the Bubble Tea model for choosing an artist and writing
// instructions.
type pickerModel struct {
	personas     []artist.Persona
	cursor       int
	state        pickerState
	instructions string
	width        int
	err          error
	confirmed    bool
	cancelled    bool
}

// pickerChoice is what the user confirmed.
type pickerChoice struct {
	ArtistID     string
	Instructions string
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginBottom(1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Italic(true)

	detailStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(lipgloss.Color("#A0A0A0"))

	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	headerBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#7D56F4")).
			MarginBottom(1)
)

func newPickerModel(personas []artist.Persona, selectedID, instructions string) pickerModel {
	m := pickerModel{personas: personas, instructions: instructions}
	for i, p := range personas {
		if p.ID == selectedID {
			m.cursor = i
			break
		}
	}
	return m
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
		switch m.state {
		case statePickArtist:
			return m.updatePick(msg)
		case stateInstructions:
			return m.updateInstructions(msg)
		}
	}
	return m, nil
}

func (m pickerModel) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.cancelled = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.personas)-1 {
			m.cursor++
		}

	case "enter", " ":
		if len(m.personas) == 0 {
			return m, nil
		}
		m.state = stateInstructions
		m.err = nil
	}
	return m, nil
}

func (m pickerModel) updateInstructions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if strings.TrimSpace(m.instructions) == "" {
			m.err = fmt.Errorf("instructions are required")
			return m, nil
		}
		m.confirmed = true
		return m, tea.Quit
	case tea.KeyEsc:
		m.state = statePickArtist
		m.err = nil
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.instructions); len(r) > 0 {
			m.instructions = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeyCtrlU:
		m.instructions = ""
		return m, nil
	case tea.KeySpace:
		m.instructions += " "
		return m, nil
	case tea.KeyRunes:
		m.instructions += string(msg.Runes)
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder

	b.WriteString(headerBorder.Render(titleStyle.Render("Xeitosa Social AI")))
	b.WriteString("\n")

	if len(m.personas) == 0 {
		b.WriteString(dimStyle.Render("  No artists configured. Create one with: socialai artists create"))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("  q to quit"))
		b.WriteString("\n")
		return b.String()
	}

	for i, p := range m.personas {
		line := fmt.Sprintf("%s (%s)", p.Name, p.LanguageOrDefault())
		switch {
		case i == m.cursor && m.state == statePickArtist:
			b.WriteString(cursorStyle.Render("> ") + selectedStyle.Render(line) + "\n")
		case i == m.cursor:
			b.WriteString("  " + selectedStyle.Render(line) + "\n")
		default:
			b.WriteString("  " + line + "\n")
		}
		if i == m.cursor && p.TargetAudience != "" {
			b.WriteString(detailStyle.Render(p.TargetAudience) + "\n")
		}
	}

	if m.state == stateInstructions {
		b.WriteString("\n  Instructions\n")
		width := 60
		if m.width > 10 {
			width = min(m.width-6, 100)
		}
		b.WriteString(inputStyle.Width(width).Render(m.instructions+"_") + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}

	switch m.state {
	case statePickArtist:
		b.WriteString(helpStyle.Render("  j/k or arrows to navigate | enter to choose | q to quit"))
	case stateInstructions:
		b.WriteString(helpStyle.Render("  type instructions | enter to generate | esc to go back | ctrl+u to clear"))
	}
	b.WriteString("\n")

	return b.String()
}

// choice returns the confirmed selection.
func (m pickerModel) choice() pickerChoice {
	return pickerChoice{
		ArtistID:     m.personas[m.cursor].ID,
		Instructions: strings.TrimSpace(m.instructions),
	}
}

func runArtistPicker(personas []artist.Persona, selectedID, instructions string) (pickerChoice, error) {
	if len(personas) == 0 {
		return pickerChoice{}, fmt.Errorf("no artists configured; create one with: socialai artists create")
	}

	p := tea.NewProgram(newPickerModel(personas, selectedID, instructions), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return pickerChoice{}, fmt.Errorf("TUI error: %w", err)
	}

	final := result.(pickerModel)
	if final.cancelled || !final.confirmed {
		return pickerChoice{}, errCancelled
	}
	return final.choice(), nil
}
