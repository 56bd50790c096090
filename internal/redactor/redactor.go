// Package redactor masks PII entities in raw log text before it crosses the
// trust boundary toward the external report generator.
package redactor

import (
	"log/slog"
	"regexp"
	"strings"

	"postmortem-analysis/internal/models"
)

// Replacement tokens per PII category.
const (
	TokenEmail      = "[EMAIL_REDACTED]"
	TokenIP         = "[IP_REDACTED]"
	TokenPhone      = "[PHONE_REDACTED]"
	TokenCreditCard = "[CC_REDACTED]"
)

var (
	emailPattern = regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// Octet-range aware so 999.999.999.999 is not masked.
	ipv4Pattern = regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`)

	// Full, abbreviated (::) and IPv4-mapped (::ffff:a.b.c.d) forms.
	ipv6Pattern = regexp.MustCompile(
		`(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}` +
			`|(?:[0-9a-fA-F]{1,4}:){1,7}:` +
			`|(?:[0-9a-fA-F]{1,4}:){1,6}:[0-9a-fA-F]{1,4}` +
			`|(?:[0-9a-fA-F]{1,4}:){1,5}(?::[0-9a-fA-F]{1,4}){1,2}` +
			`|(?:[0-9a-fA-F]{1,4}:){1,4}(?::[0-9a-fA-F]{1,4}){1,3}` +
			`|(?:[0-9a-fA-F]{1,4}:){1,3}(?::[0-9a-fA-F]{1,4}){1,4}` +
			`|(?:[0-9a-fA-F]{1,4}:){1,2}(?::[0-9a-fA-F]{1,4}){1,5}` +
			`|[0-9a-fA-F]{1,4}:(?::[0-9a-fA-F]{1,4}){1,6}` +
			`|:(?::[0-9a-fA-F]{1,4}){1,7}` +
			`|::(?:[fF]{4}:)?(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)`)

	// North-American forms plus a generic international form. Deliberately
	// permissive; long digit runs in log fields may over-mask.
	phonePattern = regexp.MustCompile(
		`(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}` +
			`|\+?[0-9]{1,4}[-.\s]?[0-9]{6,12}` +
			`|\b[0-9]{3}[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`)

	// Visa, MasterCard, Amex, Discover, JCB at canonical lengths, plus the
	// generic 4x4 grouping with dash or space separators.
	creditCardPattern = regexp.MustCompile(
		`\b(?:4[0-9]{12}(?:[0-9]{3})?` +
			`|5[1-5][0-9]{14}` +
			`|3[47][0-9]{13}` +
			`|6(?:011|5[0-9]{2})[0-9]{12}` +
			`|(?:2131|1800|35\d{3})\d{11})\b` +
			`|\b[0-9]{4}[- ]?[0-9]{4}[- ]?[0-9]{4}[- ]?[0-9]{4}\b`)
)

type pass struct {
	re      *regexp.Regexp
	token   string
	piiType string
}

// Pass order resolves overlapping matches deterministically: credit cards are
// the most specific and run first so the looser phone pattern cannot absorb
// card digits; IPv6 runs before IPv4 so v4-style fragments inside a v6 literal
// are not mis-masked; phone runs last because it is the most permissive.
// Each pass substitutes before the next one matches, so counts taken before
// substitution are immune to later passes.
var passes = []pass{
	{creditCardPattern, TokenCreditCard, models.PIITypeCreditCard},
	{emailPattern, TokenEmail, models.PIITypeEmail},
	{ipv6Pattern, TokenIP, models.PIITypeIP},
	{ipv4Pattern, TokenIP, models.PIITypeIP},
	{phonePattern, TokenPhone, models.PIITypePhone},
}

// Redactor performs multi-category PII detection and masking.
type Redactor struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Redactor {
	if log == nil {
		log = slog.Default()
	}
	return &Redactor{log: log}
}

// Sanitize masks every detected PII entity in content and reports how many
// entities were masked per the fixed category precedence. Blank input yields
// an empty result without error. The audit log emitted on masking never
// blocks or fails the call.
func (r *Redactor) Sanitize(content string) models.SanitizationResult {
	if strings.TrimSpace(content) == "" {
		return models.SanitizationResult{}
	}

	sanitized := content
	total := 0
	var detected []string

	for _, p := range passes {
		count := len(p.re.FindAllStringIndex(sanitized, -1))
		if count == 0 {
			continue
		}
		sanitized = p.re.ReplaceAllLiteralString(sanitized, p.token)
		total += count
		if !contains(detected, p.piiType) {
			detected = append(detected, p.piiType)
		}
	}

	if total > 0 {
		r.log.Warn("privacy shield active: masked PII entities before external transmission",
			"masked", total,
			"types", detected,
		)
	}

	return models.SanitizationResult{
		Sanitized:     sanitized,
		TotalMasked:   total,
		DetectedTypes: detected,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
