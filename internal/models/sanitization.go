package models

// PII categories reported by the redactor.
const (
	PIITypeEmail      = "EMAIL"
	PIITypeIP         = "IP"
	PIITypePhone      = "PHONE"
	PIITypeCreditCard = "CREDIT_CARD"
)

// SanitizationResult is the ephemeral outcome of a redaction pass. It is
// consumed by the orchestrator and never stored.
type SanitizationResult struct {
	Sanitized     string
	TotalMasked   int
	DetectedTypes []string
}
