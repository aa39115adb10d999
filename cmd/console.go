package cmd

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
)

// Executor abstracts command execution for easier testing.
type Executor interface {
	Start(name string, args []string) error
}

type osExecutor struct{}

func (osExecutor) Start(name string, args []string) error {
	return exec.Command(name, args...).Start()
}

func newConsoleCmd(opts *rootOptions, deps runDeps, runner workflowRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Assume the role and open the AWS Console as the assumed identity",
		Long: `Assumes the role exactly as the root command does, then exchanges the
temporary credentials for a federated sign-in URL and opens it in the
default browser. The console session lasts as long as the role session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner(cmd.Context(), *opts, deps)
		},
	}
}

func runConsole(ctx context.Context, opts rootOptions, deps runDeps) error {
	conn, params, err := opts.resolve(deps.getenv)
	if err != nil {
		fmt.Fprintln(deps.stderr, "Error:", err)
		return err
	}

	result, err := deps.awsService.AssumeRole(ctx, conn, params)
	if err != nil {
		fmt.Fprintln(deps.stderr, "Error:", err)
		return err
	}

	fmt.Fprintf(deps.stdout, "Assumed role: %s\n", result.AssumedRole.Arn)

	loginURL, err := deps.federation.BuildConsoleURL(ctx, result.Credentials)
	if err != nil {
		err = fmt.Errorf("failed to build console URL: %w", err)
		fmt.Fprintln(deps.stderr, "Error:", err)
		return err
	}

	fmt.Fprintln(deps.stdout, "Opening AWS Console in your browser...")
	return deps.open(loginURL)
}

// openBrowser opens the given URL in the user's default browser.
func openBrowser(targetURL string, deps runDeps) error {
	var command string
	var args []string

	switch deps.goos {
	case "darwin":
		command = "open"
	case "linux":
		command = "xdg-open"
	case "windows":
		command = "rundll32"
		args = []string{"url.dll,FileProtocolHandler"}
	default:
		return fmt.Errorf("unsupported platform: %s", deps.goos)
	}

	args = append(args, targetURL)
	return deps.executor.Start(command, args)
}
