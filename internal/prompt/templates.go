// Package prompt holds the agent prompt templates. Defaults are compiled
// in; a YAML file can override any of them without rebuilding.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultAuditor = `You are a strict Python code auditor. Analyze the file below and list
every syntax error, bug, and bad practice you find.

FILE: {{file}}

CODE:
{{code}}

Respond with ONLY a JSON array, no prose and no markdown fences. Each
element must have exactly these fields:
[{"file": "{{file}}", "line": <int>, "issue_type": "<short label>", "description": "<what is wrong>"}]

Return [] if the code has no issues.`

const defaultFixer = `You are a careful Python code fixer. Apply MINIMAL changes to resolve the
issues listed below. Preserve every existing function and variable name.
{{expected_names}}
ISSUES:
{{issues}}

ORIGINAL CODE ({{file}}):
{{code}}

Respond with ONLY a JSON object, no prose and no markdown fences:
{"action": "FIX", "reason": "<summary>", "files": [{"path": "{{file}}", "content": "<full corrected source>"}]}

If no safe change exists, respond with:
{"action": "SKIP", "reason": "<why>", "files": []}`

const defaultTestGen = `You are a Python testing expert. Write a pytest file for the module below.

MODULE: {{module}}

SOURCE:
{{code}}

Rules: import with "from {{module}} import *", one test function per
function in the source, integer arguments only, no pytest.raises. Respond
with ONLY the Python test code, no prose and no markdown fences.`

// Templates bundles the prompt text for every agent.
type Templates struct {
	Auditor string `yaml:"auditor"`
	Fixer   string `yaml:"fixer"`
	TestGen string `yaml:"testgen"`
}

// Defaults returns the compiled-in templates.
func Defaults() Templates {
	return Templates{
		Auditor: defaultAuditor,
		Fixer:   defaultFixer,
		TestGen: defaultTestGen,
	}
}

// Load returns the defaults overlaid with any templates defined in the YAML
// file at path. An empty path returns the defaults unchanged.
func Load(path string) (Templates, error) {
	templates := Defaults()
	if path == "" {
		return templates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Templates{}, fmt.Errorf("read prompt overrides %s: %w", path, err)
	}

	var overlay Templates
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Templates{}, fmt.Errorf("parse prompt overrides %s: %w", path, err)
	}

	if overlay.Auditor != "" {
		templates.Auditor = overlay.Auditor
	}
	if overlay.Fixer != "" {
		templates.Fixer = overlay.Fixer
	}
	if overlay.TestGen != "" {
		templates.TestGen = overlay.TestGen
	}
	return templates, nil
}

// Render substitutes {{key}} placeholders in a template.
func Render(template string, values map[string]string) string {
	out := template
	for key, value := range values {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}
