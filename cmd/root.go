package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	awslib "github.com/eculver/aws-assume/pkg/aws"
	"github.com/spf13/cobra"
)

type runDeps struct {
	awsService awslib.Service
	federation awslib.FederationURLBuilder
	executor   Executor
	open       func(string) error
	goos       string
	getenv     func(string) string
	stdout     io.Writer
	stderr     io.Writer
}

// rootOptions are the raw flag values. Empty strings and a zero duration
// mean "not provided" and are translated to absent fields, never sent as
// empty values.
type rootOptions struct {
	roleARN         string
	roleSessionName string
	policy          string
	durationSeconds int32
	externalID      string
	mfaSerialNumber string
	mfaToken        string

	region       string
	profile      string
	endpointURL  string
	accessKey    string
	secretKey    string
	sessionToken string
}

// resolve splits the flags into the connection configuration and the role
// parameters. Region is resolved from the flag or the environment and is
// required, matching the behavior of the AWS CLI family of tools.
func (o rootOptions) resolve(getenv func(string) string) (awslib.ConnConfig, awslib.AssumeRoleParams, error) {
	region := o.region
	if region == "" {
		region = getenv("AWS_REGION")
	}
	if region == "" {
		region = getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		return awslib.ConnConfig{}, awslib.AssumeRoleParams{}, fmt.Errorf("region must be specified")
	}

	profile := o.profile
	if profile == "" {
		profile = getenv("AWS_PROFILE")
	}

	conn := awslib.ConnConfig{
		Region:          region,
		Profile:         profile,
		EndpointURL:     o.endpointURL,
		AccessKeyID:     o.accessKey,
		SecretAccessKey: o.secretKey,
		SessionToken:    o.sessionToken,
	}

	params := awslib.AssumeRoleParams{
		RoleARN:         o.roleARN,
		RoleSessionName: o.roleSessionName,
		Policy:          optString(o.policy),
		ExternalID:      optString(o.externalID),
		MFASerialNumber: optString(o.mfaSerialNumber),
		MFAToken:        optString(o.mfaToken),
	}
	if o.durationSeconds != 0 {
		duration := o.durationSeconds
		params.DurationSeconds = &duration
	}

	return conn, params, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// assumeResult is the success output: the shape consumed by callers that
// chain the credentials into subsequent AWS operations.
type assumeResult struct {
	Changed  bool               `json:"changed"`
	STSCreds awslib.Credentials `json:"sts_creds"`
	STSUser  awslib.AssumedRole `json:"sts_user"`
}

type assumeFailure struct {
	Failed bool   `json:"failed"`
	Msg    string `json:"msg"`
}

type workflowRunner func(ctx context.Context, opts rootOptions, deps runDeps) error

// NewRootCmd creates the root CLI command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultRunDeps(), runAssume, runConsole)
}

func newRootCmd(deps runDeps, assumeRunner workflowRunner, consoleRunner workflowRunner) *cobra.Command {
	var opts rootOptions

	rootCmd := &cobra.Command{
		Use:   "aws-assume",
		Short: "Assume an IAM role via STS and print the temporary credentials",
		Long: `Performs a single STS AssumeRole call with the given role ARN and session
name and prints the resulting temporary credentials and assumed-role
identity as JSON. Optional policy, duration, external ID, and MFA
parameters are forwarded only when set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return assumeRunner(cmd.Context(), opts, deps)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.roleARN, "role-arn", "", "ARN of the role to assume (required)")
	flags.StringVar(&opts.roleSessionName, "role-session-name", "", "name of the role session (required)")
	flags.StringVar(&opts.policy, "policy", "", "supplemental IAM policy document to scope the session")
	flags.Int32Var(&opts.durationSeconds, "duration-seconds", 0, "session duration in seconds (900-3600, provider default when omitted)")
	flags.StringVar(&opts.externalID, "external-id", "", "external ID for cross-account role assumption")
	flags.StringVar(&opts.mfaSerialNumber, "mfa-serial-number", "", "serial number or ARN of the MFA device")
	flags.StringVar(&opts.mfaToken, "mfa-token", "", "current code from the MFA device")

	flags.StringVar(&opts.region, "region", "", "AWS region (defaults to AWS_REGION / AWS_DEFAULT_REGION)")
	flags.StringVar(&opts.profile, "profile", "", "AWS profile to use (defaults to AWS_PROFILE)")
	flags.StringVar(&opts.endpointURL, "endpoint-url", "", "custom STS endpoint URL")
	flags.StringVar(&opts.accessKey, "access-key", "", "AWS access key ID for the calling identity")
	flags.StringVar(&opts.secretKey, "secret-key", "", "AWS secret access key for the calling identity")
	flags.StringVar(&opts.sessionToken, "session-token", "", "AWS session token for the calling identity")

	rootCmd.AddCommand(newConsoleCmd(&opts, deps, consoleRunner))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func defaultRunDeps() runDeps {
	deps := runDeps{
		awsService: awslib.NewService(),
		federation: awslib.NewFederationClient(),
		executor:   osExecutor{},
		goos:       runtime.GOOS,
		getenv:     os.Getenv,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}

	deps.open = func(targetURL string) error {
		return openBrowser(targetURL, deps)
	}

	return deps
}

// runAssume performs the single assume-role exchange and writes exactly one
// JSON document to stdout: the credentials and identity on success, or a
// failure with the provider's message. There is no partial output.
func runAssume(ctx context.Context, opts rootOptions, deps runDeps) error {
	conn, params, err := opts.resolve(deps.getenv)
	if err != nil {
		return writeFailure(deps.stdout, err)
	}

	result, err := deps.awsService.AssumeRole(ctx, conn, params)
	if err != nil {
		return writeFailure(deps.stdout, err)
	}

	return writeJSON(deps.stdout, assumeResult{
		Changed:  true,
		STSCreds: result.Credentials,
		STSUser:  result.AssumedRole,
	})
}

// writeFailure reports the error as a failure document and then propagates
// it so the process exits non-zero.
func writeFailure(w io.Writer, cause error) error {
	if err := writeJSON(w, assumeFailure{Failed: true, Msg: cause.Error()}); err != nil {
		return err
	}
	return cause
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}
