// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const (
	// RoleSessionName tags the temporary credentials in CloudTrail.
	RoleSessionName = "prescient-s3-access"

	// SessionDuration is the lifetime requested for assumed-role
	// credentials.
	SessionDuration = time.Hour
)

// Credentials holds temporary AWS credentials from STS.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}

// Expired reports whether the credentials are past their expiration,
// allowing for the given skew.
func (c Credentials) Expired(skew time.Duration) bool {
	return !c.Expiration.IsZero() && time.Now().Add(skew).After(c.Expiration)
}

// STSAssumeRoler is the slice of the STS API the broker uses (enables
// testing).
type STSAssumeRoler interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// AssumeRole exchanges the ambient AWS identity for temporary
// credentials of the given role. The ARN is validated before any
// network call.
func AssumeRole(ctx context.Context, region, roleARN string) (Credentials, error) {
	if err := ValidateRoleARN(roleARN); err != nil {
		return Credentials{}, &AuthError{Op: "assume_role", Err: err}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return Credentials{}, &AuthError{Op: "assume_role", Err: fmt.Errorf("loading AWS config: %w", err)}
	}

	return AssumeRoleWithClient(ctx, sts.NewFromConfig(awsCfg), roleARN)
}

// AssumeRoleWithClient is AssumeRole with an injected STS client.
func AssumeRoleWithClient(ctx context.Context, client STSAssumeRoler, roleARN string) (Credentials, error) {
	if err := ValidateRoleARN(roleARN); err != nil {
		return Credentials{}, &AuthError{Op: "assume_role", Err: err}
	}

	input := &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(RoleSessionName),
		DurationSeconds: aws.Int32(int32(SessionDuration.Seconds())),
	}

	result, err := client.AssumeRole(ctx, input)
	if err != nil {
		return Credentials{}, &AuthError{Op: "assume_role", Err: fmt.Errorf("assuming role %s: %w", roleARN, err)}
	}
	if result.Credentials == nil {
		return Credentials{}, &AuthError{Op: "assume_role", Err: fmt.Errorf("STS returned empty credentials for role %s", roleARN)}
	}

	return Credentials{
		AccessKeyID:     aws.ToString(result.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(result.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(result.Credentials.SessionToken),
		Expiration:      aws.ToTime(result.Credentials.Expiration).UTC(),
	}, nil
}

// ValidateRoleARN checks an IAM role ARN.
// ARN format: arn:PARTITION:iam::ACCOUNT_ID:role/ROLE_NAME
// Supported partitions: aws, aws-cn, aws-us-gov
func ValidateRoleARN(arn string) error {
	if arn == "" {
		return fmt.Errorf("role ARN is required")
	}

	parts := strings.Split(arn, ":")
	if len(parts) != 6 {
		return fmt.Errorf("invalid ARN format: expected 6 colon-separated parts, got %d", len(parts))
	}

	prefix, partition, service, _, account, resource := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]

	if prefix != "arn" {
		return fmt.Errorf("invalid ARN: must start with 'arn:'")
	}

	switch partition {
	case "aws", "aws-cn", "aws-us-gov":
		// valid
	default:
		return fmt.Errorf("invalid ARN partition: %s (expected aws, aws-cn, or aws-us-gov)", partition)
	}

	if service != "iam" {
		return fmt.Errorf("invalid ARN: must be an IAM ARN (got %s)", service)
	}

	if account == "" {
		return fmt.Errorf("invalid ARN: account ID is required")
	}

	if !strings.HasPrefix(resource, "role/") {
		return fmt.Errorf("invalid ARN: must be a role ARN (got %s)", resource)
	}

	if strings.TrimPrefix(resource, "role/") == "" {
		return fmt.Errorf("invalid ARN: role name is required")
	}

	return nil
}
