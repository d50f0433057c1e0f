package validator

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/praetorian-inc/policyscan/pkg/types"
)

var (
	awsKeyIDPattern        = regexp.MustCompile(`^(?:A3T[A-Z0-9]|AKIA|ASIA|ABIA|ACCA)[A-Z0-9]{16}$`)
	awsSecretKeyPattern    = regexp.MustCompile(`(?i)aws_?secret_?(?:access_?)?key["'\s]*[=:]\s*["']?([A-Za-z0-9/+=]{40})`)
	awsSessionTokenPattern = regexp.MustCompile(`(?i)aws_?session_?token["'\s]*[=:]\s*["']?([A-Za-z0-9/+=]+)`)
)

// STSClient interface for STS operations (allows mocking in tests).
type STSClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// AWSValidator validates AWS access key IDs using STS GetCallerIdentity.
// The matching secret access key must appear in the line context.
type AWSValidator struct {
	stsClient STSClient // nil means create client per-validation with provided credentials
}

// NewAWSValidator creates a new AWS credential validator.
func NewAWSValidator() *AWSValidator {
	return &AWSValidator{}
}

// NewAWSValidatorWithClient creates a validator with a custom STS client (for testing).
func NewAWSValidatorWithClient(client STSClient) *AWSValidator {
	return &AWSValidator{stsClient: client}
}

// Name returns the validator name.
func (v *AWSValidator) Name() string {
	return "aws"
}

// CanValidate accepts AWS access key IDs.
func (v *AWSValidator) CanValidate(secret string) bool {
	return awsKeyIDPattern.MatchString(secret)
}

// Validate checks AWS credentials against STS.
func (v *AWSValidator) Validate(ctx context.Context, secret string, lc *types.LineContext) (*types.ValidationResult, error) {
	secretKey, sessionToken, err := findAWSCompanions(lc)
	if err != nil {
		return types.NewValidationResult(types.StatusUndetermined, 0, fmt.Sprintf("cannot validate: %v", err)), nil
	}

	client := v.stsClient
	if client == nil {
		cfg, err := config.LoadDefaultConfig(ctx,
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(secret, secretKey, sessionToken),
			),
			config.WithRegion("us-east-1"),
		)
		if err != nil {
			return types.NewValidationResult(types.StatusUndetermined, 0, fmt.Sprintf("failed to create AWS config: %v", err)), nil
		}
		client = sts.NewFromConfig(cfg)
	}

	identity, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return types.NewValidationResult(types.StatusInvalid, 1.0, fmt.Sprintf("credentials rejected: %v", err)), nil
	}

	result := types.NewValidationResult(types.StatusValid, 1.0,
		fmt.Sprintf("valid AWS credentials for account %s, user %s",
			aws.ToString(identity.Account),
			aws.ToString(identity.Arn)))
	result.Details["account"] = aws.ToString(identity.Account)
	result.Details["arn"] = aws.ToString(identity.Arn)
	return result, nil
}

// findAWSCompanions looks for the secret access key (required) and session
// token (optional) in the surrounding lines.
func findAWSCompanions(lc *types.LineContext) (secretKey, sessionToken string, err error) {
	text := lc.Text()
	m := awsSecretKeyPattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", "", fmt.Errorf("partial credentials: no secret access key near access key ID")
	}
	if t := awsSessionTokenPattern.FindStringSubmatch(text); len(t) >= 2 {
		sessionToken = t[1]
	}
	return m[1], sessionToken, nil
}
