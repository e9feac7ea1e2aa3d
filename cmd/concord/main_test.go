package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/concord/internal/config"
	"github.com/aretw0/concord/internal/logging"
	"github.com/aretw0/concord/pkg/adapters/sqlite"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const answersYAML = `
contextual:
  conflictDescription: "Shared kitchen is never clean"
  partiesInvolved: "Me and two flatmates"
mediatorPreference: empathetic
goals:
  desiredOutcome: "A cleaning rota"
`

func TestReadAnswers(t *testing.T) {
	form, err := readAnswers(strings.NewReader(answersYAML))
	require.NoError(t, err)

	assert.Equal(t, "Shared kitchen is never clean", form.Contextual.ConflictDescription)
	assert.Equal(t, domain.MediatorPreference("empathetic"), form.Mediator)
	assert.Equal(t, "A cleaning rota", form.Goals.DesiredOutcome)
	assert.Empty(t, form.Goals.WillingToCompromise)
}

func TestReadAnswers_Empty(t *testing.T) {
	form, err := readAnswers(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, domain.Form{}, form)
}

func TestReadAnswers_Rejections(t *testing.T) {
	_, err := readAnswers(strings.NewReader("mediatorPreference: empathtic\n"))
	assert.ErrorIs(t, err, domain.ErrUnknownMediator)
	assert.Contains(t, err.Error(), `did you mean "empathetic"?`)

	_, err = readAnswers(strings.NewReader("mediatorPreference: zzzzzzzzzzzz\n"))
	assert.ErrorIs(t, err, domain.ErrUnknownMediator)
	assert.NotContains(t, err.Error(), "did you mean")

	_, err = readAnswers(strings.NewReader("favouriteColour: blue\n"))
	assert.Error(t, err)

	_, err = readAnswers(strings.NewReader("goals:\n  idealResolutionTimeframe: \"" + strings.Repeat("x", 600) + "\"\n"))
	assert.ErrorIs(t, err, editor.ErrInputTooLarge)
	assert.Contains(t, err.Error(), "idealResolutionTimeframe")
}

func TestSuggestMediator(t *testing.T) {
	assert.Equal(t, "neutral", suggestMediator("nuetral"))
	assert.Equal(t, "direct", suggestMediator("Direct"))
	assert.Empty(t, suggestMediator("something else"))
}

func TestSQLitePath(t *testing.T) {
	assert.Equal(t, filepath.Join(".concord", "history", "history.db"), sqlitePath(".concord/history"))
	assert.Equal(t, "/tmp/x.db", sqlitePath("/tmp/x.db"))
}

func TestOpenHistory(t *testing.T) {
	h, err := openHistory(config.HistoryConfig{Backend: config.BackendNone}, logging.NewNop())
	require.NoError(t, err)
	assert.Nil(t, h)
	assert.NoError(t, h.Close())

	dir := t.TempDir()
	for _, backend := range []string{config.BackendMemory, config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			h, err := openHistory(config.HistoryConfig{
				Backend: backend,
				Path:    filepath.Join(dir, backend),
			}, logging.NewNop())
			require.NoError(t, err)
			defer h.Close()

			ctx := context.Background()
			require.NoError(t, h.Manager.Append(ctx, "p1", domain.Attempt{
				Outcome: domain.Outcome{Status: domain.StatusSuccess, Message: "ok"},
			}))
			got, err := h.Manager.Load(ctx, "p1")
			require.NoError(t, err)
			assert.Len(t, got.Attempts, 1)
		})
	}
}

func TestHistoryMiddlewares(t *testing.T) {
	_, err := historyMiddlewares(config.HistoryConfig{PIIFields: []string{"("}})
	assert.Error(t, err)

	t.Setenv("TEST_CONCORD_KEY", "")
	_, err = historyMiddlewares(config.HistoryConfig{EncryptionKeyEnv: "TEST_CONCORD_KEY"})
	assert.Error(t, err)

	t.Setenv("TEST_CONCORD_KEY", base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32)))
	mws, err := historyMiddlewares(config.HistoryConfig{
		PIIFields:        []string{"parties.*"},
		EncryptionKeyEnv: "TEST_CONCORD_KEY",
	})
	require.NoError(t, err)
	assert.Len(t, mws, 2)
}

func TestSubmitCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"guidance":"Draft a rota together."}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	t.Chdir(dir)
	answers := filepath.Join(dir, "answers.yaml")
	require.NoError(t, os.WriteFile(answers, []byte(answersYAML), 0o644))
	dbPath := filepath.Join(dir, "history.db")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"submit", "-f", answers, "--endpoint", srv.URL})
	t.Setenv("CONCORD_HISTORY_BACKEND", "sqlite")
	t.Setenv("CONCORD_HISTORY_PATH", dbPath)
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "Draft a rota together.\n", out.String())

	store, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()
	summaries, err := store.Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, strings.HasPrefix(summaries[0].PageID, "cli-"))
	assert.Equal(t, domain.StatusSuccess, summaries[0].LastStatus)
	assert.WithinDuration(t, time.Now(), summaries[0].UpdatedAt, time.Minute)
}

func TestSubmitCommand_ErrorState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"An internal error occurred","details":"model offline"}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	t.Chdir(dir)
	answers := filepath.Join(dir, "answers.yaml")
	require.NoError(t, os.WriteFile(answers, []byte(answersYAML), 0o644))

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"submit", "-f", answers, "--endpoint", srv.URL})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Equal(t, "model offline", err.Error())
}

func TestSubmitCommand_PrintPayload(t *testing.T) {
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(answersYAML))
	rootCmd.SetArgs([]string{"submit", "-f", "-", "--print-payload"})
	require.NoError(t, rootCmd.Execute())

	body := out.String()
	assert.Contains(t, body, `"onboarding_data"`)
	assert.Contains(t, body, `"mediatorPreference": "empathetic"`)
	assert.Contains(t, body, `"idealResolutionTimeframe": ""`)
}
