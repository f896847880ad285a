// Package flags loads the feature-flag snapshot that gates pipeline stages.
//
// A snapshot is fetched once at the start of each worker invocation and
// treated as immutable for its duration. If the source cannot be read the
// caller receives zero-valued flags alongside the error: every stage fails
// closed rather than running with stale or guessed configuration.
package flags

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
)

// ObjectGetter fetches an object body from S3. *s3.Client satisfies it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader resolves a flag source string into a FeatureFlags snapshot.
// Sources are either a local YAML path or an s3://bucket/key URI.
type Loader struct {
	s3 ObjectGetter
}

// NewLoader creates a flag loader. The S3 client may be nil if only
// local sources are used.
func NewLoader(s3Client ObjectGetter) *Loader {
	return &Loader{s3: s3Client}
}

// Load fetches and parses the snapshot. On any failure it returns zero
// flags (everything disabled) together with the error.
func (l *Loader) Load(ctx context.Context, source string) (domain.FeatureFlags, error) {
	var zero domain.FeatureFlags

	data, err := l.fetch(ctx, source)
	if err != nil {
		return zero, fmt.Errorf("loading feature flags from %s: %w", source, err)
	}

	var f domain.FeatureFlags
	if err := yaml.Unmarshal(data, &f); err != nil {
		return zero, fmt.Errorf("parsing feature flags from %s: %w", source, err)
	}
	return f, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if bucket, key, ok := parseS3URI(source); ok {
		if l.s3 == nil {
			return nil, fmt.Errorf("s3 source configured but no s3 client available")
		}
		out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, err
		}
		defer out.Body.Close()
		return io.ReadAll(out.Body)
	}
	return os.ReadFile(source)
}

func parseS3URI(source string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(source, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
