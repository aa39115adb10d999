package aws

import (
	"strings"
	"testing"
)

func int32Ptr(v int32) *int32 { return &v }

func strPtr(v string) *string { return &v }

func TestAssumeRoleParamsValidate(t *testing.T) {
	t.Parallel()

	validParams := AssumeRoleParams{
		RoleARN:         "arn:aws:iam::123456789012:role/someRole",
		RoleSessionName: "someRoleSession",
	}

	testCases := []struct {
		name          string
		mutate        func(p *AssumeRoleParams)
		wantErrSubstr string
	}{
		{
			name:   "required only",
			mutate: func(p *AssumeRoleParams) {},
		},
		{
			name:          "missing role ARN",
			mutate:        func(p *AssumeRoleParams) { p.RoleARN = "" },
			wantErrSubstr: "role ARN is required",
		},
		{
			name:          "role ARN without arn prefix",
			mutate:        func(p *AssumeRoleParams) { p.RoleARN = "someRole" },
			wantErrSubstr: "does not look like an ARN",
		},
		{
			name:          "missing session name",
			mutate:        func(p *AssumeRoleParams) { p.RoleSessionName = "" },
			wantErrSubstr: "role session name is required",
		},
		{
			name:   "duration at lower bound",
			mutate: func(p *AssumeRoleParams) { p.DurationSeconds = int32Ptr(900) },
		},
		{
			name:   "duration at upper bound",
			mutate: func(p *AssumeRoleParams) { p.DurationSeconds = int32Ptr(3600) },
		},
		{
			name:          "duration below range",
			mutate:        func(p *AssumeRoleParams) { p.DurationSeconds = int32Ptr(899) },
			wantErrSubstr: "out of range",
		},
		{
			name:          "duration above range",
			mutate:        func(p *AssumeRoleParams) { p.DurationSeconds = int32Ptr(7200) },
			wantErrSubstr: "out of range",
		},
		{
			name:   "mfa serial without token is accepted",
			mutate: func(p *AssumeRoleParams) { p.MFASerialNumber = strPtr("arn:aws:iam::123456789012:mfa/user") },
		},
		{
			name:   "mfa token without serial is accepted",
			mutate: func(p *AssumeRoleParams) { p.MFAToken = strPtr("123456") },
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			params := validParams
			tc.mutate(&params)
			err := params.Validate()

			if tc.wantErrSubstr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q but got nil", tc.wantErrSubstr)
				}
				if !strings.Contains(err.Error(), tc.wantErrSubstr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErrSubstr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Validate returned error: %v", err)
			}
		})
	}
}
