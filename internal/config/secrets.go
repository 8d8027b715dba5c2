package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the subset of the Secrets Manager client LoadSecrets uses.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// secretVars are the variables that may be fetched from Secrets Manager.
var secretVars = []string{"GOOGLE_API_KEY", "ANTHROPIC_API_KEY", "SMTP_PASSWORD"}

// LoadAWS loads the default AWS configuration for region.
func LoadAWS(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// LoadSecrets fetches credentials that are not already in the environment
// from Secrets Manager under prefix, sets them as env vars, and re-applies
// the environment to c. Missing secrets are logged and skipped.
func (c *Config) LoadSecrets(ctx context.Context, client SecretsAPI, logger *slog.Logger) error {
	for _, envVar := range secretVars {
		if os.Getenv(envVar) != "" {
			continue
		}
		secretID := c.SecretPrefix + envVar

		result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: &secretID,
		})
		if err != nil {
			logger.InfoContext(ctx, "Secret not found", "secret_id", secretID, "error", err)
			continue
		}
		if result.SecretString != nil {
			os.Setenv(envVar, *result.SecretString)
			logger.InfoContext(ctx, "Loaded secret", "secret_id", secretID)
		}
	}
	return c.applyEnvOverrides()
}
