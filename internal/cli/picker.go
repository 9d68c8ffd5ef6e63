package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/convoflow/convoflow/pkg/source"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// ConversationListModel is the bubbletea model for interactive conversation
// selection when build is run without an id.
type ConversationListModel struct {
	Conversations []source.Info
	Cursor        int
	Selected      *source.Info
	Height        int
	Offset        int
}

// NewConversationListModel creates a new conversation list model.
func NewConversationListModel(infos []source.Info) ConversationListModel {
	return ConversationListModel{
		Conversations: infos,
		Height:        15,
	}
}

func (m ConversationListModel) Init() tea.Cmd {
	return nil
}

func (m ConversationListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Conversations)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			info := m.Conversations[m.Cursor]
			m.Selected = &info
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ConversationListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Conversation"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Conversations) {
		end = len(m.Conversations)
	}

	for i := m.Offset; i < end; i++ {
		info := m.Conversations[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		title := info.Title
		if title == "" {
			title = "—"
		}

		line := fmt.Sprintf("%s%-24s  %-40s  %s", cursor, info.ID, title,
			listDimStyle.Render(fmt.Sprintf("%d messages", info.MessageCount)))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Conversations))))

	return b.String()
}

// pickConversation runs the interactive picker and returns the chosen id.
// Returns empty string when the user quits without selecting.
func pickConversation(infos []source.Info) (string, error) {
	model, err := tea.NewProgram(NewConversationListModel(infos)).Run()
	if err != nil {
		return "", err
	}
	final, ok := model.(ConversationListModel)
	if !ok || final.Selected == nil {
		return "", nil
	}
	return final.Selected.ID, nil
}
