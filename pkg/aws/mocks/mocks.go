package mocks

import (
	"context"
	"fmt"

	awslib "github.com/eculver/aws-assume/pkg/aws"
)

type Service struct {
	AssumeRoleFunc func(ctx context.Context, conn awslib.ConnConfig, params awslib.AssumeRoleParams) (awslib.AssumeRoleResult, error)

	AssumeRoleCalls int
	LastConn        awslib.ConnConfig
	LastParams      awslib.AssumeRoleParams
}

func (m *Service) AssumeRole(ctx context.Context, conn awslib.ConnConfig, params awslib.AssumeRoleParams) (awslib.AssumeRoleResult, error) {
	m.AssumeRoleCalls++
	m.LastConn = conn
	m.LastParams = params
	if m.AssumeRoleFunc == nil {
		return awslib.AssumeRoleResult{}, fmt.Errorf("AssumeRoleFunc is not set")
	}
	return m.AssumeRoleFunc(ctx, conn, params)
}

type FederationBuilder struct {
	BuildConsoleURLFunc func(ctx context.Context, creds awslib.Credentials) (string, error)

	BuildConsoleURLCalls int
	LastCredentials      awslib.Credentials
}

func (m *FederationBuilder) BuildConsoleURL(ctx context.Context, creds awslib.Credentials) (string, error) {
	m.BuildConsoleURLCalls++
	m.LastCredentials = creds

	if m.BuildConsoleURLFunc == nil {
		return "", fmt.Errorf("BuildConsoleURLFunc is not set")
	}

	return m.BuildConsoleURLFunc(ctx, creds)
}
