package tui

import (
	"context"
	"strings"

	"github.com/aretw0/concord/pkg/coordinator"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/editor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2dd4bf")).MarginTop(1)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#aaaaaa"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	buttonStyle   = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder())
	disabledStyle = buttonStyle.Foreground(lipgloss.Color("#666666")).BorderForeground(lipgloss.Color("#444444"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).MarginTop(1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F44336")).MarginTop(1)

	fieldErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F44336"))
)

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Choose key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous")),
	Left:   key.NewBinding(key.WithKeys("left")),
	Right:  key.NewBinding(key.WithKeys("right")),
	Choose: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select/submit")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

// resolvedMsg carries the outcome of a background submit.
type resolvedMsg struct {
	state domain.SubmissionState
}

type input struct {
	group string
	name  string
	label string
	model textinput.Model
	// err holds the last rejected edit; the coordinator still has the old value.
	err error
}

// Form is a bubbletea model over one coordinator.
//
// Focus order is the contextual fields, the mediator list, the goal fields and
// then the submit button.
type Form struct {
	ctx    context.Context
	coord  *coordinator.Coordinator
	render func(string) string

	contextual []input
	goals      []input
	options    []domain.MediatorOption
	cursor     int
	focus      int
	quitting   bool
}

// NewForm builds the form. render formats the guidance text of a success.
func NewForm(ctx context.Context, coord *coordinator.Coordinator, render func(string) string) *Form {
	if render == nil {
		render = PlainRenderer
	}
	f := &Form{
		ctx:     ctx,
		coord:   coord,
		render:  render,
		options: domain.MediatorOptions(),
	}
	view := coord.View()
	f.contextual = newInputs("contextual", view.Contextual.Fields)
	f.goals = newInputs("goals", view.Goals.Fields)
	for i, opt := range f.options {
		if opt.ID == coord.Form().Mediator {
			f.cursor = i
		}
	}
	f.setFocus(0)
	return f
}

func newInputs(group string, fields []editor.Field) []input {
	out := make([]input, len(fields))
	for i, field := range fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = editor.FieldLimit(field.Name)
		ti.Width = 60
		ti.SetValue(field.Value)
		out[i] = input{group: group, name: field.Name, label: field.Label, model: ti}
	}
	return out
}

func (f *Form) mediatorIndex() int { return len(f.contextual) }
func (f *Form) buttonIndex() int   { return len(f.contextual) + 1 + len(f.goals) }

// inputAt returns the text input at a focus index, or nil for the list and button.
func (f *Form) inputAt(i int) *input {
	switch {
	case i < len(f.contextual):
		return &f.contextual[i]
	case i > f.mediatorIndex() && i < f.buttonIndex():
		return &f.goals[i-f.mediatorIndex()-1]
	}
	return nil
}

func (f *Form) setFocus(i int) tea.Cmd {
	n := f.buttonIndex() + 1
	f.focus = (i%n + n) % n
	var cmd tea.Cmd
	for j := 0; j < n; j++ {
		in := f.inputAt(j)
		if in == nil {
			continue
		}
		if j == f.focus {
			cmd = in.model.Focus()
		} else {
			in.model.Blur()
		}
	}
	return cmd
}

// Init implements tea.Model.
func (f *Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resolvedMsg:
		return f, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			f.quitting = true
			return f, tea.Quit
		case key.Matches(msg, keys.Next):
			return f, f.setFocus(f.focus + 1)
		case key.Matches(msg, keys.Prev):
			return f, f.setFocus(f.focus - 1)
		}
		if f.focus == f.mediatorIndex() {
			return f, f.updateMediator(msg)
		}
		if f.focus == f.buttonIndex() {
			if key.Matches(msg, keys.Choose) {
				return f, f.submit()
			}
			return f, nil
		}
		if msg.Type == tea.KeyEnter {
			return f, f.setFocus(f.focus + 1)
		}
	}

	in := f.inputAt(f.focus)
	if in == nil {
		return f, nil
	}
	var cmd tea.Cmd
	in.model, cmd = in.model.Update(msg)
	f.commit(in)
	return f, cmd
}

func (f *Form) updateMediator(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Left):
		f.cursor = (f.cursor - 1 + len(f.options)) % len(f.options)
	case key.Matches(msg, keys.Right):
		f.cursor = (f.cursor + 1) % len(f.options)
	case key.Matches(msg, keys.Choose):
		_ = f.coord.SelectMediator(f.options[f.cursor].ID)
	}
	return nil
}

// commit pushes the text of an input into the coordinator when it changed.
// A rejected edit stays on the input and blocks submit until it is fixed.
func (f *Form) commit(in *input) {
	clean, err := editor.SanitizeField(in.name, in.model.Value())
	if err != nil {
		in.err = err
		return
	}
	if clean != in.model.Value() {
		in.model.SetValue(clean)
	}
	in.err = nil
	if f.currentValue(in) == clean {
		return
	}
	if in.group == "contextual" {
		in.err = f.coord.EditContextual(in.name, clean)
	} else {
		in.err = f.coord.EditGoals(in.name, clean)
	}
}

// rejected returns the focus index of the first input holding a rejected edit, or -1.
func (f *Form) rejected() int {
	for i := 0; i < f.buttonIndex(); i++ {
		if in := f.inputAt(i); in != nil && in.err != nil {
			return i
		}
	}
	return -1
}

func (f *Form) currentValue(in *input) string {
	view := f.coord.View()
	fields := view.Contextual.Fields
	if in.group == "goals" {
		fields = view.Goals.Fields
	}
	for _, field := range fields {
		if field.Name == in.name {
			return field.Value
		}
	}
	return ""
}

// submit starts an attempt unless one is already loading. With a rejected
// edit pending it moves focus there instead.
func (f *Form) submit() tea.Cmd {
	if f.coord.State().Status == domain.StatusLoading {
		return nil
	}
	if i := f.rejected(); i >= 0 {
		return f.setFocus(i)
	}
	attempt, payload := f.coord.Begin(f.ctx)
	coord, ctx := f.coord, f.ctx
	return func() tea.Msg {
		return resolvedMsg{state: coord.Complete(ctx, attempt, payload)}
	}
}

// View implements tea.Model.
func (f *Form) View() string {
	if f.quitting {
		return ""
	}
	view := f.coord.View()
	var b strings.Builder

	b.WriteString(titleStyle.Render(view.Contextual.Title) + "\n")
	for i := range f.contextual {
		f.writeInput(&b, i, &f.contextual[i])
	}

	b.WriteString(titleStyle.Render(view.Mediator.Title) + "\n")
	for i, opt := range view.Options {
		mark := "( )"
		if opt.Selected {
			mark = "(x)"
		}
		line := mark + " " + opt.Label
		if f.focus == f.mediatorIndex() && i == f.cursor {
			line = focusStyle.Render(line)
		}
		b.WriteString(line + " " + mutedStyle.Render(opt.Description) + "\n")
	}

	b.WriteString(titleStyle.Render(view.Goals.Title) + "\n")
	for i := range f.goals {
		f.writeInput(&b, f.mediatorIndex()+1+i, &f.goals[i])
	}

	b.WriteString("\n")
	style := buttonStyle
	if view.Button.Disabled {
		style = disabledStyle
	} else if f.focus == f.buttonIndex() {
		style = style.BorderForeground(lipgloss.Color("#38bdf8"))
	}
	b.WriteString(style.Render(view.Button.Label) + "\n")

	if r := view.Result; r != nil {
		if r.Tone == coordinator.ToneSuccess {
			b.WriteString(successStyle.Render(f.render(r.Message)) + "\n")
		} else {
			b.WriteString(errorStyle.Render(r.Message) + "\n")
		}
	}

	b.WriteString(mutedStyle.Render("\ntab/shift+tab move • ←/→ and enter pick a style • esc quit") + "\n")
	return b.String()
}

func (f *Form) writeInput(b *strings.Builder, idx int, in *input) {
	label := labelStyle.Render(in.label)
	if f.focus == idx {
		label = focusStyle.Render(in.label)
	}
	b.WriteString(label + "\n" + in.model.View() + "\n")
	if in.err != nil {
		b.WriteString(fieldErrorStyle.Render("  "+in.err.Error()) + "\n")
	}
}

// Run shows the form until the user quits and returns the last state.
func Run(ctx context.Context, coord *coordinator.Coordinator, render func(string) string, opts ...tea.ProgramOption) (domain.SubmissionState, error) {
	opts = append(opts, tea.WithContext(ctx))
	if _, err := tea.NewProgram(NewForm(ctx, coord, render), opts...).Run(); err != nil {
		return coord.State(), err
	}
	return coord.State(), nil
}
