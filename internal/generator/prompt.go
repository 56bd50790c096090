package generator

import (
	"fmt"
	"strings"
	"time"

	"postmortem-analysis/internal/models"
)

const systemPrompt = `You are a senior site reliability engineer writing incident postmortems.
Given incident metadata and sanitized log excerpts, produce a blameless postmortem in markdown
with these sections: Summary, Impact, Timeline, Root Cause Analysis, Resolution, Action Items.
Base every conclusion strictly on the provided logs and metadata; state uncertainty explicitly
instead of inventing details. The logs were scrubbed of PII; treat redaction tokens such as
[EMAIL_REDACTED] as opaque placeholders.`

// buildUserPrompt assembles the user message from incident fields and the
// sanitized (and possibly truncated) log text.
func buildUserPrompt(snapshot models.IncidentSnapshot, sanitizedLog string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Incident: %s\n", snapshot.Title)
	fmt.Fprintf(&b, "Severity: %s\n", snapshot.Severity)
	fmt.Fprintf(&b, "Description: %s\n", snapshot.Description)
	fmt.Fprintf(&b, "Started at: %s\n", snapshot.IncidentStartTime.UTC().Format(time.RFC3339))
	if snapshot.ServiceName != "" {
		fmt.Fprintf(&b, "Service: %s\n", snapshot.ServiceName)
	}
	if snapshot.Environment != "" {
		fmt.Fprintf(&b, "Environment: %s\n", snapshot.Environment)
	}
	if snapshot.Region != "" {
		fmt.Fprintf(&b, "Region: %s\n", snapshot.Region)
	}

	b.WriteString("\nSanitized logs:\n```\n")
	b.WriteString(sanitizedLog)
	b.WriteString("\n```\n")
	b.WriteString("\nWrite the postmortem report now.")

	return b.String()
}
