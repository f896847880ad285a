package flags

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	body string
	err  error
}

func (f *fakeGetter) GetObject(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

const flagsYAML = `
enable_assignment_service: true
enable_notification_service: true
enable_email_notifications: true
enable_sms_notifications: false
`

func TestLoad_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")
	require.NoError(t, os.WriteFile(path, []byte(flagsYAML), 0o600))

	f, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, f.EnableAssignmentService)
	assert.True(t, f.EnableEmailNotifications)
	assert.False(t, f.EnableSMSNotifications)
	assert.False(t, f.SMSEnabled())
}

func TestLoad_S3Source(t *testing.T) {
	loader := NewLoader(&fakeGetter{body: flagsYAML})

	f, err := loader.Load(context.Background(), "s3://flag-bucket/pipeline/flags.yaml")
	require.NoError(t, err)
	assert.True(t, f.EnableNotificationService)
}

func TestLoad_FailsClosed(t *testing.T) {
	f, err := NewLoader(nil).Load(context.Background(), "/nonexistent/flags.yaml")
	assert.Error(t, err)

	// Zero flags: every stage disabled.
	assert.False(t, f.EnableAssignmentService)
	assert.False(t, f.EnableNotificationService)
	assert.False(t, f.SMSEnabled())
}

func TestLoad_S3WithoutClient(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), "s3://bucket/key")
	assert.Error(t, err)
}

func TestParseS3URI(t *testing.T) {
	bucket, key, ok := parseS3URI("s3://b/path/to/key.yaml")
	assert.True(t, ok)
	assert.Equal(t, "b", bucket)
	assert.Equal(t, "path/to/key.yaml", key)

	_, _, ok = parseS3URI("flags.yaml")
	assert.False(t, ok)

	_, _, ok = parseS3URI("s3://bucket-only")
	assert.False(t, ok)
}
