package generator

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postmortem-analysis/internal/config"
	"postmortem-analysis/internal/models"
)

func TestBuildUserPromptIncludesIncidentContext(t *testing.T) {
	snapshot := models.IncidentSnapshot{
		IncidentID:        uuid.New(),
		Title:             "Checkout outage",
		Description:       "Orders failing in checkout",
		Severity:          "SEV1",
		IncidentStartTime: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		ServiceName:       "checkout",
		Environment:       "production",
	}

	prompt := buildUserPrompt(snapshot, "error at [IP_REDACTED]")

	assert.Contains(t, prompt, "Incident: Checkout outage")
	assert.Contains(t, prompt, "Severity: SEV1")
	assert.Contains(t, prompt, "Started at: 2026-03-14T09:30:00Z")
	assert.Contains(t, prompt, "Service: checkout")
	assert.Contains(t, prompt, "Environment: production")
	assert.Contains(t, prompt, "error at [IP_REDACTED]")
	assert.NotContains(t, prompt, "Region:", "empty optional fields are omitted")
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.Config{}, nil)
	require.ErrorIs(t, err, ErrAPIKeyNotSet)
}
