package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aretw0/concord/pkg/coordinator"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/editor"
	"github.com/aretw0/concord/pkg/ports"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	right = tea.KeyMsg{Type: tea.KeyRight}
)

func send(f *Form, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, m := range msgs {
		_, cmd = f.Update(m)
	}
	return cmd
}

func newTestForm(client ports.GuidanceClient) (*Form, *coordinator.Coordinator) {
	coord := coordinator.New(client)
	return NewForm(context.Background(), coord, nil), coord
}

func okClient(text string) ports.GuidanceClient {
	return ports.GuidanceClientFunc(func(ctx context.Context, env domain.Envelope) (*domain.GuidanceResponse, error) {
		return &domain.GuidanceResponse{StatusCode: 200, Body: []byte(`{"guidance":"` + text + `"}`)}, nil
	})
}

func TestForm_TypingEditsCoordinator(t *testing.T) {
	f, coord := newTestForm(okClient("x"))

	send(f, runes("Noise"))
	assert.Equal(t, "Noise", coord.Form().Contextual.ConflictDescription)

	send(f, tab, runes("Ana and Bo"))
	assert.Equal(t, "Ana and Bo", coord.Form().Contextual.PartiesInvolved)

	// Enter in a text field moves on instead of submitting.
	send(f, enter, runes("Flatmates"))
	assert.Equal(t, "Flatmates", coord.Form().Contextual.RelationshipWithParties)
	assert.Equal(t, domain.StatusIdle, coord.State().Status)
}

func TestForm_MediatorSelection(t *testing.T) {
	f, coord := newTestForm(okClient("x"))
	opts := domain.MediatorOptions()

	send(f, tab, tab, tab, tab)
	require.Equal(t, f.mediatorIndex(), f.focus)

	send(f, right, enter)
	assert.Equal(t, opts[1].ID, coord.Form().Mediator)
	assert.Contains(t, f.View(), "(x) "+opts[1].Label)
}

func TestForm_SubmitLoadingAndResult(t *testing.T) {
	f, coord := newTestForm(okClient("Agree on quiet hours."))

	send(f, tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, f.buttonIndex(), f.focus)

	cmd := send(f, enter)
	require.NotNil(t, cmd)
	assert.Equal(t, domain.StatusLoading, coord.State().Status)
	assert.Contains(t, f.View(), coordinator.LabelSubmitting)

	// A second press while loading starts nothing.
	assert.Nil(t, send(f, enter))

	send(f, cmd())
	assert.Equal(t, domain.StatusSuccess, coord.State().Status)
	view := f.View()
	assert.Contains(t, view, coordinator.LabelSubmit)
	assert.Contains(t, view, "Agree on quiet hours.")
}

func TestForm_ErrorResult(t *testing.T) {
	f, _ := newTestForm(ports.GuidanceClientFunc(func(ctx context.Context, env domain.Envelope) (*domain.GuidanceResponse, error) {
		return &domain.GuidanceResponse{StatusCode: 500, Body: []byte("oops")}, nil
	}))

	send(f, tea.KeyMsg{Type: tea.KeyShiftTab})
	cmd := send(f, enter)
	require.NotNil(t, cmd)
	send(f, cmd())

	assert.Contains(t, f.View(), "Error: Failed to parse error response.")
}

func TestForm_MultibyteAnswerReachesCoordinator(t *testing.T) {
	var sent domain.Envelope
	f, coord := newTestForm(ports.GuidanceClientFunc(func(ctx context.Context, env domain.Envelope) (*domain.GuidanceResponse, error) {
		sent = env
		return &domain.GuidanceResponse{StatusCode: 200, Body: []byte(`{"guidance":"ok"}`)}, nil
	}))

	long := strings.Repeat("é", 3000)
	send(f, runes(long))
	assert.Equal(t, long, coord.Form().Contextual.ConflictDescription)
	assert.Nil(t, f.contextual[0].err)

	send(f, tea.KeyMsg{Type: tea.KeyShiftTab})
	cmd := send(f, enter)
	require.NotNil(t, cmd)
	send(f, cmd())
	assert.Equal(t, long, sent.OnboardingData.ConflictDescription)
}

func TestForm_ShortAnswerStopsAtFieldLimit(t *testing.T) {
	f, coord := newTestForm(okClient("x"))

	send(f, tab, runes(strings.Repeat("ü", editor.MaxShortAnswerChars+50)))
	got := coord.Form().Contextual.PartiesInvolved
	assert.Equal(t, editor.MaxShortAnswerChars, utf8.RuneCountInString(got))
	assert.Equal(t, f.contextual[1].model.Value(), got)
}

func TestForm_RejectedEditBlocksSubmit(t *testing.T) {
	calls := 0
	f, coord := newTestForm(ports.GuidanceClientFunc(func(ctx context.Context, env domain.Envelope) (*domain.GuidanceResponse, error) {
		calls++
		return &domain.GuidanceResponse{StatusCode: 200, Body: []byte(`{}`)}, nil
	}))

	send(f, runes("short"))
	require.Equal(t, "short", coord.Form().Contextual.ConflictDescription)

	t.Setenv(editor.EnvMaxInputChars, "8")
	send(f, runes(" and then much longer"))
	assert.Equal(t, "short", coord.Form().Contextual.ConflictDescription, "coordinator keeps the accepted value")
	assert.ErrorIs(t, f.contextual[0].err, editor.ErrInputTooLarge)
	assert.Contains(t, f.View(), "answer is too long")

	send(f, tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, f.buttonIndex(), f.focus)
	send(f, enter)
	assert.Equal(t, 0, f.focus, "focus returns to the rejected field")
	assert.Equal(t, domain.StatusIdle, coord.State().Status)
	assert.Zero(t, calls)

	t.Setenv(editor.EnvMaxInputChars, "")
	send(f, runes("!"))
	assert.Nil(t, f.contextual[0].err)
	assert.Equal(t, "short and then much longer!", coord.Form().Contextual.ConflictDescription)
}

func TestForm_Quit(t *testing.T) {
	f, _ := newTestForm(okClient("x"))
	cmd := send(f, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, f.View())
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_| |_|")
}
