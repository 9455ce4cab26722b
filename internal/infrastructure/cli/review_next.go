package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/planwright/planwright/internal/domain/review"
)

var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	focusedButton = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 2)

	blurredButton = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)
)

var dispositionLabels = []string{"Approve", "Reject", "Request changes"}

type reviewNextModel struct {
	item       *review.Item
	notes      textinput.Model
	focusIndex int // 0 = notes field, 1..3 = buttons
	choice     int // index into dispositionLabels, -1 until chosen
	cancelled  bool
	err        error
}

func newReviewNextModel(item *review.Item) reviewNextModel {
	notes := textinput.New()
	notes.Placeholder = "review notes (required for reject / request changes)"
	notes.CharLimit = 400
	notes.Width = 64
	notes.Focus()

	return reviewNextModel{item: item, notes: notes, choice: -1}
}

func (m reviewNextModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m reviewNextModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "tab", "shift+tab", "up", "down":
			if msg.String() == "shift+tab" || msg.String() == "up" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}
			if m.focusIndex < 0 {
				m.focusIndex = len(dispositionLabels)
			}
			if m.focusIndex > len(dispositionLabels) {
				m.focusIndex = 0
			}
			if m.focusIndex == 0 {
				m.notes.Focus()
			} else {
				m.notes.Blur()
			}
			return m, nil

		case "enter":
			if m.focusIndex > 0 {
				choice := m.focusIndex - 1
				if choice > 0 && strings.TrimSpace(m.notes.Value()) == "" {
					m.err = fmt.Errorf("notes are required for %s", strings.ToLower(dispositionLabels[choice]))
					return m, nil
				}
				m.choice = choice
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

func (m reviewNextModel) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", statusBadge(m.item.Status), m.item.Title)
	fmt.Fprintf(&b, "%s\n\n", dimStyle.Render(fmt.Sprintf("id %s, confidence %.2f", m.item.Id, m.item.Confidence)))

	for _, issue := range m.item.Validation.Errors {
		fmt.Fprintf(&b, "  %s %s\n", rejectedStyle.Render("✗"), issue.Message)
	}
	for _, issue := range m.item.Validation.Warnings {
		fmt.Fprintf(&b, "  %s %s\n", pendingStyle.Render("!"), issue.Message)
	}
	b.WriteString("\n")

	if m.focusIndex == 0 {
		b.WriteString(focusedStyle.Render("Notes") + "\n")
	} else {
		b.WriteString(blurredStyle.Render("Notes") + "\n")
	}
	b.WriteString(m.notes.View() + "\n\n")

	for i, label := range dispositionLabels {
		style := blurredButton
		if m.focusIndex == i+1 {
			style = focusedButton
		}
		b.WriteString(style.Render(label))
		b.WriteString(" ")
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n" + rejectedStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString(blurredStyle.Render("\ntab to move, enter to confirm, esc to cancel\n"))

	return b.String()
}

var reviewNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Review the oldest pending item interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return err
		}

		pending, err := services.Reviews.Pending()
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("No pending review items.")
			return nil
		}

		model := newReviewNextModel(pending[0])
		out, err := tea.NewProgram(model).Run()
		if err != nil {
			return err
		}
		final := out.(reviewNextModel)
		if final.cancelled || final.choice < 0 {
			fmt.Println("Review cancelled, item left pending.")
			return nil
		}

		actor := actorName()
		notes := final.notes.Value()

		var item *review.Item
		switch final.choice {
		case 0:
			item, err = services.Reviews.Approve(cmd.Context(), final.item.Id, actor, notes)
		case 1:
			item, err = services.Reviews.Reject(cmd.Context(), final.item.Id, actor, notes)
		case 2:
			item, err = services.Reviews.RequestChanges(cmd.Context(), final.item.Id, actor, notes)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", statusBadge(item.Status), item.Id)
		return nil
	},
}
