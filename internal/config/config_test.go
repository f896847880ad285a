package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, "leads", cfg.Tables.Leads)
	assert.Equal(t, ":8080", cfg.Ops.Addr)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeTempConfig(t, `
aws:
  region: eu-west-1
tables:
  leads: prod-leads
  rules: prod-rules
queues:
  lead_events_url: https://sqs.eu-west-1.amazonaws.com/123/lead-events
notification:
  from_email: leads@example.com
  internal_staff:
    - id: staff-1
      name: Ops Team
      email: ops@example.com
      phone: "+15550001111"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "prod-leads", cfg.Tables.Leads)
	assert.Equal(t, "prod-rules", cfg.Tables.Rules)
	assert.Equal(t, "https://sqs.eu-west-1.amazonaws.com/123/lead-events", cfg.Queues.LeadEventsURL)
	require.Len(t, cfg.Notification.InternalStaff, 1)
	assert.Equal(t, "ops@example.com", cfg.Notification.InternalStaff[0].Email)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeTempConfig(t, `
tables:
  leads: file-leads
`)
	t.Setenv("LEADS_TABLE", "env-leads")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-leads", cfg.Tables.Leads)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidate_RequiresTables(t *testing.T) {
	cfg := defaults()
	cfg.Tables.Leads = ""
	assert.Error(t, cfg.Validate())
}
