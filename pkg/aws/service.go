package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type configLoader interface {
	LoadDefaultConfig(ctx context.Context, optFns ...func(*config.LoadOptions) error) (awsv2.Config, error)
}

type defaultConfigLoader struct{}

func (defaultConfigLoader) LoadDefaultConfig(ctx context.Context, optFns ...func(*config.LoadOptions) error) (awsv2.Config, error) {
	return config.LoadDefaultConfig(ctx, optFns...)
}

type stsAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

type stsClientFactory interface {
	NewFromConfig(cfg awsv2.Config, endpointURL string) stsAPI
}

type defaultSTSClientFactory struct{}

func (defaultSTSClientFactory) NewFromConfig(cfg awsv2.Config, endpointURL string) stsAPI {
	if endpointURL == "" {
		return sts.NewFromConfig(cfg)
	}
	return sts.NewFromConfig(cfg, func(o *sts.Options) {
		o.BaseEndpoint = awsv2.String(endpointURL)
	})
}

// SDKService is the concrete implementation backed by AWS SDK v2.
type SDKService struct {
	loader     configLoader
	stsFactory stsClientFactory
}

// NewService creates an AWS service implementation that uses AWS SDK v2.
func NewService() *SDKService {
	return newSDKService(defaultConfigLoader{}, defaultSTSClientFactory{})
}

func newSDKService(loader configLoader, stsFactory stsClientFactory) *SDKService {
	return &SDKService{
		loader:     loader,
		stsFactory: stsFactory,
	}
}

func (s *SDKService) loadConfig(ctx context.Context, conn ConnConfig) (awsv2.Config, error) {
	var opts []func(*config.LoadOptions) error
	if conn.Region != "" {
		opts = append(opts, config.WithRegion(conn.Region))
	}
	if conn.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(conn.Profile))
	}
	if conn.AccessKeyID != "" && conn.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			conn.AccessKeyID,
			conn.SecretAccessKey,
			conn.SessionToken,
		)))
	}

	cfg, err := s.loader.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awsv2.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// buildAssumeRoleInput maps the parameter set onto the STS request. Required
// fields are always set; each optional field is copied only when present so
// that absent parameters never appear in the request.
func buildAssumeRoleInput(params AssumeRoleParams) *sts.AssumeRoleInput {
	input := &sts.AssumeRoleInput{
		RoleArn:         awsv2.String(params.RoleARN),
		RoleSessionName: awsv2.String(params.RoleSessionName),
	}
	if params.Policy != nil {
		input.Policy = params.Policy
	}
	if params.DurationSeconds != nil {
		input.DurationSeconds = params.DurationSeconds
	}
	if params.ExternalID != nil {
		input.ExternalId = params.ExternalID
	}
	if params.MFASerialNumber != nil {
		input.SerialNumber = params.MFASerialNumber
	}
	if params.MFAToken != nil {
		input.TokenCode = params.MFAToken
	}
	return input
}

// AssumeRole performs exactly one STS AssumeRole call and maps the response.
// Parameter validation and client construction happen first; once the call
// is issued it either fully succeeds or the STS error is returned untouched
// so the provider's message reaches the caller verbatim.
func (s *SDKService) AssumeRole(ctx context.Context, conn ConnConfig, params AssumeRoleParams) (AssumeRoleResult, error) {
	if err := params.Validate(); err != nil {
		return AssumeRoleResult{}, err
	}

	cfg, err := s.loadConfig(ctx, conn)
	if err != nil {
		return AssumeRoleResult{}, err
	}

	out, err := s.stsFactory.NewFromConfig(cfg, conn.EndpointURL).AssumeRole(ctx, buildAssumeRoleInput(params))
	if err != nil {
		return AssumeRoleResult{}, err
	}

	if out.Credentials == nil || out.AssumedRoleUser == nil {
		return AssumeRoleResult{}, fmt.Errorf("STS AssumeRole returned an incomplete response")
	}

	return AssumeRoleResult{
		Credentials: Credentials{
			AccessKeyID:     awsv2.ToString(out.Credentials.AccessKeyId),
			SecretAccessKey: awsv2.ToString(out.Credentials.SecretAccessKey),
			SessionToken:    awsv2.ToString(out.Credentials.SessionToken),
			Expiration:      awsv2.ToTime(out.Credentials.Expiration),
		},
		AssumedRole: AssumedRole{
			Arn:           awsv2.ToString(out.AssumedRoleUser.Arn),
			AssumedRoleID: awsv2.ToString(out.AssumedRoleUser.AssumedRoleId),
		},
	}, nil
}
