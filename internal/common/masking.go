package common

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
)

const maskedValue = "***MASKED***"

// SensitivePattern represents a pattern to detect and mask sensitive information
type SensitivePattern struct {
	Name        string         // Pattern name (e.g., "hapikey", "api_key")
	Regex       *regexp.Regexp // Regular expression to match sensitive data
	Replacement string         // Replacement string
	Keys        []string       // Specific keys to mask (case-insensitive)
}

// DefaultSensitivePatterns covers the credentials that travel with HubSpot requests.
var DefaultSensitivePatterns = []SensitivePattern{
	{
		Name:        "hapikey",
		Regex:       regexp.MustCompile(`(?i)([?&]hapikey=)[^&\s"]+`),
		Replacement: "${1}" + maskedValue,
		Keys:        []string{"hapikey"},
	},
	{
		Name:        "api_key",
		Regex:       regexp.MustCompile(`(?i)("?(?:api[_-]?key|apikey)"?\s*[:=]\s*"?)[^"',}\]\s&]+`),
		Replacement: "${1}" + maskedValue,
		Keys:        []string{"api_key", "apikey", "api-key"},
	},
	{
		Name:        "token",
		Regex:       regexp.MustCompile(`(?i)("?(?:access[_-]?token|refresh[_-]?token)"?\s*[:=]\s*"?)[^"',}\]\s&]+`),
		Replacement: "${1}" + maskedValue,
		Keys:        []string{"token", "access_token", "refresh_token"},
	},
	{
		Name:        "bearer_token",
		Regex:       regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
		Replacement: "Bearer " + maskedValue,
		Keys:        []string{"authorization"},
	},
	{
		Name:        "secret",
		Regex:       regexp.MustCompile(`(?i)("?(?:client[_-]?secret|secret)"?\s*[:=]\s*"?)[^"',}\]\s&]+`),
		Replacement: "${1}" + maskedValue,
		Keys:        []string{"secret", "client_secret"},
	},
}

// Masker handles masking of sensitive information in logs
type Masker struct {
	patterns []SensitivePattern
	enabled  atomic.Bool
}

// NewMasker creates a new masker with default patterns
func NewMasker() *Masker {
	return NewMaskerWithPatterns(DefaultSensitivePatterns)
}

// NewMaskerWithPatterns creates a new masker with custom patterns
func NewMaskerWithPatterns(patterns []SensitivePattern) *Masker {
	m := &Masker{patterns: append([]SensitivePattern(nil), patterns...)}
	m.enabled.Store(true)
	return m
}

// SetEnabled enables or disables masking
func (m *Masker) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// IsEnabled returns whether masking is enabled
func (m *Masker) IsEnabled() bool {
	return m.enabled.Load()
}

// AddPattern adds a new sensitive pattern. A pattern without a regex gets one
// built from its keys.
func (m *Masker) AddPattern(pattern SensitivePattern) {
	if pattern.Regex == nil && len(pattern.Keys) > 0 {
		keyPattern := strings.Join(pattern.Keys, "|")
		pattern.Regex = regexp.MustCompile(fmt.Sprintf(`(?i)("?(?:%s)"?\s*[:=]\s*"?)[^"',}\]\s&]+`, keyPattern))
		if pattern.Replacement == "" {
			pattern.Replacement = "${1}" + maskedValue
		}
	}
	m.patterns = append(m.patterns, pattern)
}

// MaskString masks sensitive information in a string
func (m *Masker) MaskString(input string) string {
	if !m.IsEnabled() {
		return input
	}
	result := input
	for _, pattern := range m.patterns {
		if pattern.Regex == nil {
			continue
		}
		result = pattern.Regex.ReplaceAllString(result, pattern.Replacement)
	}
	return result
}

// MaskValue masks the whole value when key names a credential, otherwise it
// applies the regex patterns to value.
func (m *Masker) MaskValue(key string, value string) string {
	if !m.IsEnabled() {
		return value
	}
	lowerKey := strings.ToLower(strings.TrimSpace(key))
	for _, pattern := range m.patterns {
		for _, sensitiveKey := range pattern.Keys {
			if lowerKey == sensitiveKey && value != "" {
				return maskedValue
			}
		}
	}
	return m.MaskString(value)
}

// Global masker instance
var globalMasker = NewMasker()

// SetGlobalMasker sets the global masker instance
func SetGlobalMasker(masker *Masker) {
	if masker != nil {
		globalMasker = masker
	}
}

// GetGlobalMasker returns the global masker instance
func GetGlobalMasker() *Masker {
	return globalMasker
}

// MaskSensitiveData masks sensitive data using the global masker
func MaskSensitiveData(input string) string {
	return globalMasker.MaskString(input)
}

// EnableMasking enables/disables global masking
func EnableMasking(enabled bool) {
	globalMasker.SetEnabled(enabled)
}

// IsMaskingEnabled returns whether global masking is enabled
func IsMaskingEnabled() bool {
	return globalMasker.IsEnabled()
}
