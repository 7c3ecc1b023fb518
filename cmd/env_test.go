package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aide-analytics/aide-cli/internal/config"
	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/promptbank"
	"github.com/aide-analytics/aide-cli/internal/report"
)

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestUncoveredReports(t *testing.T) {
	reg := report.DefaultRegistry()

	assert.Empty(t, uncoveredReports(promptbank.Default(), reg),
		"built-in bank should cover every registered report")

	thin := promptbank.New([]model.PromptEntry{
		{QID: "Q1", Text: "accounts with margin below 30"},
	})
	assert.Equal(t,
		[]string{"Q10", "Q2", "Q3", "Q4", "Q6", "Q7", "Q8", "Q9"},
		uncoveredReports(thin, reg))
}

func TestLoadBankDefault(t *testing.T) {
	withConfig(t, &config.Config{})

	bank, err := loadBank(context.Background())
	require.NoError(t, err)
	assert.True(t, bank.Contains("Q1"))
}

func TestLoadBankPrefersLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Q1:\n  - margin below thirty\n"), 0o644))

	c := &config.Config{}
	c.Data.Prompts = path
	c.Notion.Token = "secret"
	c.Notion.PromptDB = "db"
	withConfig(t, c)

	bank, err := loadBank(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1"}, bank.QIDs())
	assert.Equal(t, []string{"margin below thirty"}, bank.Prompts("Q1"))
}

func TestLoadBankBadFile(t *testing.T) {
	c := &config.Config{}
	c.Data.Prompts = filepath.Join(t.TempDir(), "missing.yaml")
	withConfig(t, c)

	_, err := loadBank(context.Background())
	assert.Error(t, err)
}

func TestOpenHistoryDisabled(t *testing.T) {
	for _, driver := range []string{"", "none"} {
		c := &config.Config{}
		c.Store.Driver = driver
		withConfig(t, c)

		s, err := openHistory(context.Background())
		require.NoError(t, err)
		assert.Nil(t, s)
	}
}

func TestOpenHistoryUnknownDriver(t *testing.T) {
	c := &config.Config{}
	c.Store.Driver = "bogus"
	withConfig(t, c)

	_, err := openHistory(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}
