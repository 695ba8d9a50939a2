package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsArePopulated(t *testing.T) {
	templates := Defaults()
	assert.Contains(t, templates.Auditor, "JSON array")
	assert.Contains(t, templates.Fixer, `"action"`)
	assert.Contains(t, templates.TestGen, "pytest")
}

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	templates, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), templates)
}

func TestLoadAppliesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auditor: custom auditor prompt\n"), 0o644))

	templates, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom auditor prompt", templates.Auditor)
	// Unset entries keep their defaults.
	assert.Equal(t, Defaults().Fixer, templates.Fixer)
	assert.Equal(t, Defaults().TestGen, templates.TestGen)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auditor: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	out := Render("fix {{file}} at {{file}}: {{issues}}", map[string]string{
		"file":   "calc.py",
		"issues": "2 issues",
	})
	assert.Equal(t, "fix calc.py at calc.py: 2 issues", out)
}
