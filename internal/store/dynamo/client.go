// Package dynamo implements the pipeline's repositories against DynamoDB.
//
// All cross-invocation state lives here: lead records, assignment rules,
// cap counters, unassigned-queue records, and notification attempts. The
// two correctness-critical writes — cap reservation and the lead status
// transition — use conditional expressions so concurrent invocations never
// race a read-modify-write pair.
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/config"
)

// LoadAWSConfig builds an aws.Config from pipeline configuration. Static
// credentials are used when configured, otherwise the default chain.
func LoadAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	} else if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return awsCfg, nil
}

// isConditionalCheckFailed reports whether err is a DynamoDB conditional
// write rejection (as opposed to a transient failure).
func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
