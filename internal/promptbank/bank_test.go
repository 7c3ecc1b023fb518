package promptbank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aide-analytics/aide-cli/internal/model"
)

func TestNewSkipsBlankEntries(t *testing.T) {
	b := New([]model.PromptEntry{
		{QID: "Q1", Text: "margin below threshold"},
		{QID: "", Text: "orphan"},
		{QID: "Q1", Text: ""},
		{QID: "Q8", Text: "utilization trend"},
	})
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []string{"Q1", "Q8"}, b.QIDs())
	assert.Equal(t, []string{"margin below threshold"}, b.Prompts("Q1"))
	assert.True(t, b.Contains("Q8"))
	assert.False(t, b.Contains("Q2"))
}

func TestDefaultCoversRegisteredReports(t *testing.T) {
	b := Default()
	require.NotZero(t, b.Len())
	for _, qid := range []string{"Q1", "Q2", "Q3", "Q4", "Q6", "Q7", "Q8", "Q9", "Q10"} {
		assert.True(t, b.Contains(qid), qid)
	}
	assert.False(t, b.Contains("Q5"), "Q5 was retired and must not be matchable")
}

func TestFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	raw := `Q8:
  - utilization trend
  - UT% by BU
Q1:
  - margin below 30
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	b, err := FromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, "Q1", b.Entries()[0].QID, "QIDs are ordered regardless of file order")
	assert.Equal(t, []string{"utilization trend", "UT% by BU"}, b.Prompts("Q8"))
}

func TestFromYAMLErrors(t *testing.T) {
	_, err := FromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o644))
	_, err = FromYAML(empty)
	assert.Error(t, err)
}
