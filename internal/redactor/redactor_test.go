package redactor

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postmortem-analysis/internal/models"
)

func newTestRedactor() *Redactor {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSanitizeMasksEmails(t *testing.T) {
	r := newTestRedactor()
	result := r.Sanitize("User john.doe@example.com reported an issue. Contact admin@company.org for help.")

	assert.Contains(t, result.Sanitized, TokenEmail)
	assert.NotContains(t, result.Sanitized, "john.doe@example.com")
	assert.NotContains(t, result.Sanitized, "admin@company.org")
	assert.Equal(t, 2, result.TotalMasked)
	assert.Contains(t, result.DetectedTypes, models.PIITypeEmail)
}

func TestSanitizeMasksIPv4(t *testing.T) {
	r := newTestRedactor()
	result := r.Sanitize("Connection from 192.168.1.100 to server 10.0.0.1 failed.")

	assert.Contains(t, result.Sanitized, TokenIP)
	assert.NotContains(t, result.Sanitized, "192.168.1.100")
	assert.NotContains(t, result.Sanitized, "10.0.0.1")
	assert.Equal(t, 2, result.TotalMasked)
	assert.Equal(t, []string{models.PIITypeIP}, result.DetectedTypes)
}

func TestSanitizeMasksIPv6(t *testing.T) {
	r := newTestRedactor()
	result := r.Sanitize("Request from 2001:0db8:85a3:0000:0000:8a2e:0370:7334 timed out.")

	assert.Contains(t, result.Sanitized, TokenIP)
	assert.NotContains(t, result.Sanitized, "2001:0db8:85a3")
	assert.Contains(t, result.DetectedTypes, models.PIITypeIP)
}

func TestSanitizeMasksPhoneNumbers(t *testing.T) {
	r := newTestRedactor()
	result := r.Sanitize("Call 555-123-4567 or (800) 555-0199 for support.")

	assert.Contains(t, result.Sanitized, TokenPhone)
	assert.NotContains(t, result.Sanitized, "555-123-4567")
	assert.NotContains(t, result.Sanitized, "(800) 555-0199")
	assert.Contains(t, result.DetectedTypes, models.PIITypePhone)
}

func TestSanitizeMasksCreditCards(t *testing.T) {
	r := newTestRedactor()
	result := r.Sanitize("Payment failed for card 4111111111111111 and 5500-0000-0000-0004.")

	assert.Contains(t, result.Sanitized, TokenCreditCard)
	assert.NotContains(t, result.Sanitized, "4111111111111111")
	assert.NotContains(t, result.Sanitized, "5500-0000-0000-0004")
	assert.Contains(t, result.DetectedTypes, models.PIITypeCreditCard)
}

// Card digits must be claimed by the credit-card pass before the looser phone
// pattern can consume a fragment of them.
func TestSanitizePrecedenceCardBeforePhone(t *testing.T) {
	r := newTestRedactor()
	result := r.Sanitize("4111111111111111 192.168.1.1")

	assert.Contains(t, result.Sanitized, TokenCreditCard)
	assert.Contains(t, result.Sanitized, TokenIP)
	assert.NotContains(t, result.Sanitized, "4111")
	assert.Equal(t, 2, result.TotalMasked)
}

func TestSanitizeAllFourCategories(t *testing.T) {
	r := newTestRedactor()
	result := r.Sanitize("Call 555-123-4567, card 4111111111111111, email a@b.com, ip 10.0.0.1")

	assert.Contains(t, result.Sanitized, TokenCreditCard)
	assert.Contains(t, result.Sanitized, TokenEmail)
	assert.Contains(t, result.Sanitized, TokenIP)
	assert.Contains(t, result.Sanitized, TokenPhone)
	assert.Equal(t, 4, result.TotalMasked)
	assert.Len(t, result.DetectedTypes, 4)
}

func TestSanitizeIsIdempotent(t *testing.T) {
	r := newTestRedactor()
	input := "User test@example.com at 10.0.0.1 called 555-123-4567 with card 4111111111111111"

	first := r.Sanitize(input)
	second := r.Sanitize(first.Sanitized)

	assert.Equal(t, first.Sanitized, second.Sanitized)
	assert.Zero(t, second.TotalMasked)
	assert.Empty(t, second.DetectedTypes)
}

func TestSanitizeNoLeakage(t *testing.T) {
	r := newTestRedactor()
	literals := []string{"jane@corp.io", "203.0.113.9", "4111111111111111", "555-123-4567"}
	input := "mixed log " + strings.Join(literals, " entry ")

	result := r.Sanitize(input)
	for _, lit := range literals {
		assert.NotContains(t, result.Sanitized, lit)
	}
}

func TestSanitizeEmptyAndBlankInput(t *testing.T) {
	r := newTestRedactor()

	for _, input := range []string{"", "   \n\t "} {
		result := r.Sanitize(input)
		require.Empty(t, result.Sanitized)
		require.Zero(t, result.TotalMasked)
		require.Empty(t, result.DetectedTypes)
	}
}

func TestSanitizeLeavesCleanTextUntouched(t *testing.T) {
	r := newTestRedactor()
	input := "This is a normal log message with no sensitive data."

	result := r.Sanitize(input)
	assert.Equal(t, input, result.Sanitized)
	assert.Zero(t, result.TotalMasked)
	assert.Empty(t, result.DetectedTypes)
}

func TestSanitizeRejectsOutOfRangeOctets(t *testing.T) {
	r := newTestRedactor()
	result := r.Sanitize("bogus address 999.999.999.999 in trace")

	assert.NotContains(t, result.DetectedTypes, models.PIITypeIP)
}
