package aws

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Session duration bounds accepted by STS AssumeRole, in seconds.
const (
	MinDurationSeconds int32 = 900
	MaxDurationSeconds int32 = 3600
)

// ConnConfig carries the connection-level settings used to construct the
// STS client. The invoker never reads it beyond handing it to the SDK
// config loader and client factory.
type ConnConfig struct {
	Region          string
	Profile         string
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// AssumeRoleParams are the inputs to a single AssumeRole call. Optional
// fields are pointers; a nil pointer is omitted from the request entirely so
// STS applies its own defaults.
type AssumeRoleParams struct {
	RoleARN         string
	RoleSessionName string
	Policy          *string
	DurationSeconds *int32
	ExternalID      *string
	MFASerialNumber *string
	MFAToken        *string
}

// Validate checks the preconditions on the parameter set. It runs before any
// client is constructed; a failing parameter set never reaches STS.
//
// MFA serial and token are intentionally not validated as a pair: either may
// be sent alone, and STS decides whether the combination is acceptable.
func (p AssumeRoleParams) Validate() error {
	if p.RoleARN == "" {
		return fmt.Errorf("role ARN is required")
	}
	if !strings.HasPrefix(p.RoleARN, "arn:") {
		return fmt.Errorf("role ARN %q does not look like an ARN", p.RoleARN)
	}
	if p.RoleSessionName == "" {
		return fmt.Errorf("role session name is required")
	}
	if p.DurationSeconds != nil {
		if *p.DurationSeconds < MinDurationSeconds || *p.DurationSeconds > MaxDurationSeconds {
			return fmt.Errorf("duration %d out of range: must be between %d and %d seconds",
				*p.DurationSeconds, MinDurationSeconds, MaxDurationSeconds)
		}
	}
	return nil
}

// Credentials are the temporary credentials issued for an assumed role.
type Credentials struct {
	AccessKeyID     string    `json:"access_key"`
	SecretAccessKey string    `json:"secret_key"`
	SessionToken    string    `json:"session_token"`
	Expiration      time.Time `json:"expiration"`
}

// AssumedRole identifies the principal that resulted from the assumption.
type AssumedRole struct {
	Arn           string `json:"arn"`
	AssumedRoleID string `json:"assume_role_id"`
}

// AssumeRoleResult is the success payload of one AssumeRole call. Both
// fields are always populated together; a failed call yields no result.
type AssumeRoleResult struct {
	Credentials Credentials
	AssumedRole AssumedRole
}

// Service performs role assumption against AWS APIs.
type Service interface {
	AssumeRole(ctx context.Context, conn ConnConfig, params AssumeRoleParams) (AssumeRoleResult, error)
}

// FederationURLBuilder builds a federated console login URL.
type FederationURLBuilder interface {
	BuildConsoleURL(ctx context.Context, creds Credentials) (string, error)
}
