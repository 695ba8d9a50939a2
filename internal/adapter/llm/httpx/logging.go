package httpx

import (
	"fmt"
	"regexp"
)

const (
	// MaxLoggedResponseLength is the maximum length of model output included
	// in log lines. Full payloads go to the experiment journal, never to the
	// process log.
	MaxLoggedResponseLength = 200
)

// TruncateForLogging safely truncates a response string for logging.
func TruncateForLogging(response string) string {
	if len(response) <= MaxLoggedResponseLength {
		return response
	}
	return response[:MaxLoggedResponseLength] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(response))
}

var urlSecretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`key=([^&"\s]+)`),
	regexp.MustCompile(`apiKey=([^&"\s]+)`),
	regexp.MustCompile(`api_key=([^&"\s]+)`),
	regexp.MustCompile(`token=([^&"\s]+)`),
	regexp.MustCompile(`access_token=([^&"\s]+)`),
}

// RedactURLSecrets redacts API keys and other secrets from URLs in error
// messages so query-parameter credentials never reach the process log.
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}
	result := text
	for _, re := range urlSecretPatterns {
		pattern := re.String()
		paramName := pattern[:len(pattern)-len(`=([^&"\s]+)`)]
		result = re.ReplaceAllString(result, paramName+"=[REDACTED]")
	}
	return result
}
