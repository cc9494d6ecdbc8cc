package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
)

// SecretsManagerAPI is the subset of *secretsmanager.Client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type AWSProvider struct {
	api SecretsManagerAPI
}

// NewAWSProvider loads the default AWS credential chain for region.
func NewAWSProvider(ctx context.Context, region string) (*AWSProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewAWSProviderWithAPI(secretsmanager.NewFromConfig(cfg)), nil
}

func NewAWSProviderWithAPI(api SecretsManagerAPI) *AWSProvider {
	return &AWSProvider{api: api}
}

// Get returns the current value of ref. With a Field, the secret must be a
// JSON object and the named string member is returned.
func (p *AWSProvider) Get(ctx context.Context, ref Reference) (string, error) {
	if ref.ID == "" {
		return "", fmt.Errorf("%w: secret id is required", ErrInvalidRequest)
	}

	out, err := p.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(ref.ID),
	})
	if err != nil {
		return "", mapAWSError(err)
	}

	value := aws.ToString(out.SecretString)
	if value == "" {
		value = string(out.SecretBinary)
	}
	if value == "" {
		return "", fmt.Errorf("%s: %w", ref, ErrEmpty)
	}
	if ref.Field == "" {
		return value, nil
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		return "", fmt.Errorf("secret %s is not a JSON object: %w", ref.ID, err)
	}
	field, ok := fields[ref.Field].(string)
	if !ok || field == "" {
		return "", fmt.Errorf("%s: %w", ref, ErrFieldNotFound)
	}
	return field, nil
}

func mapAWSError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("secretsmanager: %w", err)
	}

	switch apiErr.ErrorCode() {
	case "ResourceNotFoundException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrNotFound)
	case "AccessDeniedException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrAccessDenied)
	case "DecryptionFailure":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrDecryption)
	case "InvalidRequestException", "InvalidParameterException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrInvalidRequest)
	default:
		return fmt.Errorf("secretsmanager %s: %w", apiErr.ErrorCode(), err)
	}
}
