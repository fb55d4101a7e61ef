package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// question is one footer prompt line.
type question struct {
	label       string
	placeholder string
	initial     string
}

// prompt asks its questions one at a time in the footer and hands the
// answers to submit once the last one is entered.
type prompt struct {
	questions []question
	idx       int
	inputs    []textinput.Model
	submit    func(answers []string) tea.Cmd
}

func newPrompt(submit func([]string) tea.Cmd, questions ...question) *prompt {
	inputs := make([]textinput.Model, len(questions))
	for i, q := range questions {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = q.placeholder
		ti.CharLimit = 256
		ti.SetValue(q.initial)
		inputs[i] = ti
	}
	p := &prompt{questions: questions, inputs: inputs, submit: submit}
	if len(inputs) > 0 {
		p.inputs[0].Focus()
	}
	return p
}

// newConfirm asks a yes/no question and runs action on "y".
func newConfirm(text string, action tea.Cmd) *prompt {
	return newPrompt(func(answers []string) tea.Cmd {
		if strings.EqualFold(strings.TrimSpace(answers[0]), "y") {
			return action
		}
		return nil
	}, question{label: text + " [y/N]"})
}

// update feeds msg to the focused input. done is set once the last answer
// was entered; cmd then carries the submitted action.
func (p *prompt) update(msg tea.Msg) (cmd tea.Cmd, done bool) {
	if km, ok := msg.(tea.KeyMsg); ok && km.Type == tea.KeyEnter {
		if p.idx < len(p.inputs)-1 {
			p.inputs[p.idx].Blur()
			p.idx++
			p.inputs[p.idx].Focus()
			return textinput.Blink, false
		}
		return p.submit(p.answers()), true
	}
	p.inputs[p.idx], cmd = p.inputs[p.idx].Update(msg)
	return cmd, false
}

func (p *prompt) answers() []string {
	out := make([]string, len(p.inputs))
	for i, in := range p.inputs {
		out[i] = strings.TrimSpace(in.Value())
	}
	return out
}

func (p *prompt) view() string {
	q := p.questions[p.idx]
	return fmt.Sprintf("%s %s", promptStyle.Render(q.label+":"), p.inputs[p.idx].View())
}
