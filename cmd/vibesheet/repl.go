package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Edit a sheet interactively.",
	Long: `Start an interactive session on an empty sheet. Assign with "A0 = 42" or
"B0 = =A0 * 2", inspect a cell by typing its name, or type any expression
to evaluate it. --plain (or a non-terminal stdin) uses a line editor.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}
		if GetFlag(cmd, "plain") || !term.IsTerminal(int(os.Stdin.Fd())) {
			return runLineREPL(sess, cmd.OutOrStdout())
		}
		return runREPL(sess)
	},
}

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

type replModel struct {
	textInput   textinput.Model
	session     *session
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	showGrid    bool
	quitting    bool
	initialized bool
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	CtrlC key.Binding
	CtrlD key.Binding
	CtrlL key.Binding
	Tab   key.Binding
	CtrlG key.Binding
	CtrlH key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous command"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next command"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "execute"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	CtrlD: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "quit"),
	),
	CtrlL: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "autocomplete"),
	),
	CtrlG: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "toggle grid"),
	),
	CtrlH: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "toggle help"),
	),
}

func newREPLModel(sess *session) replModel {
	ti := textinput.New()
	ti.Placeholder = "A0 = 42, B0 = =A0 * 2, or any expression..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "sheet> "

	return replModel{
		textInput:  ti,
		session:    sess,
		history:    make([]historyEntry, 0),
		cmdHistory: make([]string, 0),
		historyIdx: -1,
	}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.CtrlC), key.Matches(msg, keys.CtrlD):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.CtrlL):
			m.history = make([]historyEntry, 0)
			return m, nil

		case key.Matches(msg, keys.CtrlG):
			m.showGrid = !m.showGrid
			return m, nil

		case key.Matches(msg, keys.CtrlH):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, keys.Up):
			if len(m.cmdHistory) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.cmdHistory) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.historyIdx != -1 {
				if m.historyIdx < len(m.cmdHistory)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Tab):
			m = m.handleAutocomplete()
			return m, nil

		case key.Matches(msg, keys.Enter):
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, ":") {
				var cmd tea.Cmd
				m, cmd = m.handleCommand(input)
				m.textInput.SetValue("")
				m.historyIdx = -1
				return m, cmd
			}

			output, isErr := m.session.execute(input)
			m.history = append(m.history, historyEntry{
				input:  input,
				output: output,
				isErr:  isErr,
			})
			m.cmdHistory = append(m.cmdHistory, input)
			m.textInput.SetValue("")
			m.historyIdx = -1
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":grid", ":g":
		m.showGrid = !m.showGrid
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		output, isErr, handled := m.session.command(input)
		if !handled {
			output, isErr = fmt.Sprintf("Unknown command: %s", cmd), true
		}
		m.history = append(m.history, historyEntry{
			input:  input,
			output: output,
			isErr:  isErr,
		})
		m.cmdHistory = append(m.cmdHistory, input)
	}
	return m, nil
}

func (m replModel) handleAutocomplete() replModel {
	input := m.textInput.Value()
	lastWord := input
	if idx := strings.LastIndexAny(input, " (=,+-*/<>&|"); idx >= 0 {
		lastWord = input[idx+1:]
	}
	if lastWord == "" {
		return m
	}

	matches := completions(lastWord)
	if len(matches) == 1 {
		prefix := strings.TrimSuffix(input, lastWord)
		m.textInput.SetValue(prefix + matches[0])
		m.textInput.CursorEnd()
	} else if len(matches) > 1 {
		m.history = append(m.history, historyEntry{
			output: "Completions: " + strings.Join(matches, ", "),
		})
	}
	return m
}

// View stacks the header, the grid panel, the history, the help panel and
// the prompt. The grid and the prompt always get their lines; the history
// gets whatever the window has left, newest entries first.
func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	header := headerStyle.Render("vibesheet") + " " + mutedStyle.Render(versionString()) + "\n" +
		mutedStyle.Render(strings.Repeat("─", max(min(m.width-2, 60), 0)))

	footer := helpKeyStyle.Render("ctrl+k") + helpDescStyle.Render(" help  ") +
		helpKeyStyle.Render("ctrl+g") + helpDescStyle.Render(" grid  ") +
		helpKeyStyle.Render("ctrl+l") + helpDescStyle.Render(" clear  ") +
		helpKeyStyle.Render("ctrl+c") + helpDescStyle.Render(" quit")

	top := []string{header}
	if m.showGrid {
		top = append(top, m.session.renderGrid())
	}
	bottom := []string{}
	if m.showHelp {
		bottom = append(bottom, renderHelpPanel())
	}
	bottom = append(bottom, m.textInput.View()+"\n\n"+footer)

	// Blocks are separated by one blank line.
	used := 0
	for _, block := range append(append([]string{}, top...), bottom...) {
		used += lipgloss.Height(block) + 1
	}
	if history := m.renderHistory(m.height - used); history != "" {
		top = append(top, history)
	}

	return strings.Join(append(top, bottom...), "\n\n")
}

// renderHistory renders the newest history entries that fit in budget lines.
func (m replModel) renderHistory(budget int) string {
	var entries []string
	lines := 0
	for i := len(m.history) - 1; i >= 0; i-- {
		entry := m.history[i]
		var b strings.Builder
		if entry.input != "" {
			b.WriteString(mutedStyle.Render("  › ") + entry.input + "\n")
		}
		if entry.isErr {
			b.WriteString("  " + errorStyle.Render("✗ "+entry.output))
		} else {
			b.WriteString("  " + resultStyle.Render("→ "+entry.output))
		}
		rendered := b.String()
		height := lipgloss.Height(rendered)
		if len(entries) > 0 {
			height++
		}
		if lines+height > budget {
			break
		}
		lines += height
		entries = append(entries, rendered)
	}
	slices.Reverse(entries)
	return strings.Join(entries, "\n\n")
}

var replHelp = []struct {
	key  string
	desc string
}{
	{"A0 = 42", "Store a literal"},
	{"B0 = =A0*2", "Store a formula"},
	{"A0", "Show a cell"},
	{"1 + A0", "Evaluate an expression"},
	{":copy A B", "Paste A into B, shifting references"},
	{":clear A", "Empty a cell"},
	{":cells", "List non-empty cells"},
	{":grid", "Toggle the grid panel"},
	{":help", "Toggle this help"},
	{":quit", "Exit REPL"},
}

func renderHelpPanel() string {
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Help"))
	for _, h := range replHelp {
		line := fmt.Sprintf("  %s  %s",
			helpKeyStyle.Render(fmt.Sprintf("%-10s", h.key)),
			helpDescStyle.Render(h.desc))
		lines = append(lines, line)
	}

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func runREPL(sess *session) error {
	p := tea.NewProgram(newREPLModel(sess), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func init() {
	replCmd.Flags().Bool("plain", false, "use a line editor instead of the full-screen interface")
	rootCmd.AddCommand(replCmd)
}
