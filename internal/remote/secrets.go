package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the subset of the Secrets Manager client used here.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// NewSecretsClient builds a Secrets Manager client from the default AWS
// credential chain.
func NewSecretsClient(ctx context.Context, region string) (*secretsmanager.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// ResolveLocation returns the store location kept in a secret. The secret
// string is either the location itself or a JSON object with a "location"
// field.
func ResolveLocation(ctx context.Context, client SecretsAPI, secretID string) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", secretID, err)
	}

	raw := strings.TrimSpace(aws.ToString(out.SecretString))
	if strings.HasPrefix(raw, "{") {
		var v struct {
			Location string `json:"location"`
		}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return "", fmt.Errorf("decode secret %s: %w", secretID, err)
		}
		raw = v.Location
	}
	if raw == "" {
		return "", fmt.Errorf("secret %s holds no store location", secretID)
	}
	return raw, nil
}
