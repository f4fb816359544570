package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfdlab/foamtutor/internal/journal"
)

// isolate points config and journal at a temp dir and hides any provider
// keys from the environment. It returns the journal path.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "journal.db")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("FOAMTUTOR_DB", db)
	for _, k := range []string{
		"FOAMTUTOR_LLM_PROVIDER", "FOAMTUTOR_LEVEL", "FOAMTUTOR_CATALOG", "FOAMTUTOR_JOURNAL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
	return db
}

// resetFlags restores every flag to its default; cobra keeps flag values
// between Execute calls on the same tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...))
	err := Execute(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "foamtutor (devel)\n", out)
}

func TestInvalidLevel(t *testing.T) {
	isolate(t)
	_, err := run(t, "", "--level", "guru", "version")
	assert.ErrorContains(t, err, "experience level")
}

func TestExtract(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "extract", "velocity", "of", "5", "m/s")
	require.NoError(t, err)

	assert.Contains(t, out, "velocity")
	assert.Contains(t, out, "Analysis:   pipe_flow")
	assert.Contains(t, out, "Consistent: yes")
	assert.Contains(t, out, "missing: diameter")
}

func TestExtract_UnknownAnalysis(t *testing.T) {
	isolate(t)
	_, err := run(t, "", "extract", "--analysis", "plasma", "5 m/s")
	assert.ErrorContains(t, err, "unknown analysis type")
}

func TestConceptList(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "concept", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "reynolds_number")
	assert.Less(t, strings.Index(out, "fluid_properties"), strings.Index(out, "reynolds_number"),
		"prerequisites are listed first")
}

func TestConceptShow(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "concept", "show", "reynolds_number")
	require.NoError(t, err)
	assert.Contains(t, out, "Reynolds Number (reynolds_number)")
	assert.Contains(t, out, "Fluid Properties")
	assert.Contains(t, out, "Higher Re always means better")

	_, err = run(t, "", "concept", "show", "warp_drive")
	assert.ErrorContains(t, err, "unknown concept")
}

func TestConceptPath(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "concept", "path", "turbulence")
	require.NoError(t, err)
	fp := strings.Index(out, "(fluid_properties)")
	re := strings.Index(out, "(reynolds_number)")
	tu := strings.Index(out, "(turbulence)")
	require.True(t, fp >= 0 && re >= 0 && tu >= 0, out)
	assert.Less(t, fp, re)
	assert.Less(t, re, tu)

	out, err = run(t, "", "concept", "path", "--from", "fluid_properties", "reynolds_number")
	require.NoError(t, err)
	assert.Equal(t, " 1. Fluid Properties (fluid_properties)\n 2. Reynolds Number (reynolds_number)\n", out)
}

func TestConceptExplain(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "concept", "explain", "reynolds_number")
	require.NoError(t, err)
	assert.Contains(t, out, "Dimensionless parameter characterizing flow regime")

	_, err = run(t, "", "concept", "explain", "--llm", "reynolds_number")
	assert.ErrorContains(t, err, "--llm needs a provider")
}

func TestAskRecordsJournal(t *testing.T) {
	db := isolate(t)
	out, err := run(t, "I want to simulate water flowing through a pipe at 2 m/s\n\nquit\nignored\n", "ask", "-q")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "tutor> "), out)

	j, err := journal.Open(db)
	require.NoError(t, err)
	sessions, err := j.Sessions(context.Background(), 0)
	require.NoError(t, j.Close())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 1, sessions[0].Turns)

	out, err = run(t, "", "journal", "list")
	require.NoError(t, err)
	assert.Contains(t, out, sessions[0].SessionID)

	out, err = run(t, "", "journal", "list", "--session", sessions[0].SessionID)
	require.NoError(t, err)
	assert.Contains(t, out, "you:   I want to simulate water flowing through a pipe at 2 m/s")
	assert.Contains(t, out, "end")

	_, err = run(t, "", "journal", "list", "--session", "nope")
	assert.ErrorContains(t, err, "not found")
}
