package httpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFenced(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "json fence",
			text: "```json\n[{\"file\":\"a.py\"}]\n```",
			want: `[{"file":"a.py"}]`,
		},
		{
			name: "bare fence",
			text: "```\n[1,2]\n```",
			want: "[1,2]",
		},
		{
			name: "python fence",
			text: "```python\ndef f():\n    return 1\n```",
			want: "def f():\n    return 1",
		},
		{
			name: "no fence returns trimmed input",
			text: "  [1,2,3]  ",
			want: "[1,2,3]",
		},
		{
			name: "nested fence kept intact",
			text: "```json\n{\"suggestion\": \"use ```x``` here\"}\n```",
			want: "{\"suggestion\": \"use ```x``` here\"}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFenced(tt.text))
		})
	}
}

func TestSliceJSONArray(t *testing.T) {
	assert.Equal(t, `[{"a":1}]`, SliceJSONArray(`Here you go: [{"a":1}] Hope that helps!`))
	assert.Equal(t, "no brackets here", SliceJSONArray("no brackets here"))
	assert.Equal(t, "][", SliceJSONArray("]["))
}

func TestSliceJSONObject(t *testing.T) {
	assert.Equal(t, `{"action":"FIX"}`, SliceJSONObject(`Sure! {"action":"FIX"} Done.`))
	assert.Equal(t, "plain text", SliceJSONObject("plain text"))
}

func TestTruncateForLogging(t *testing.T) {
	short := "short response"
	assert.Equal(t, short, TruncateForLogging(short))

	long := make([]byte, MaxLoggedResponseLength*2)
	for i := range long {
		long[i] = 'x'
	}
	truncated := TruncateForLogging(string(long))
	assert.Contains(t, truncated, "[truncated")
	assert.Less(t, len(truncated), len(long))
}

func TestRedactURLSecrets(t *testing.T) {
	input := `https://api.example.com/v1?key=supersecret&foo=bar`
	assert.Equal(t, `https://api.example.com/v1?key=[REDACTED]&foo=bar`, RedactURLSecrets(input))
	assert.Equal(t, "", RedactURLSecrets(""))
}
