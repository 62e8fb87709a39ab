package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-kit/outcome/defect"
)

type options struct {
	stdout, stderr io.Writer

	configPath  string
	baseURL     string
	headers     []string
	logLevel    string
	timeout     time.Duration
	concurrency int
	metrics     bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "outcome",
		Short: "Send requests and classify what comes back",
		Long: `outcome sends requests to a JSON API and prints every result as either
the decoded response body or a defect of one of these kinds:
` + kindNames() + `

Settings come from --config, then OUTCOME_* environment variables, then flags.`,
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&opts.baseURL, "base-url", "", "base URL of the API")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "extra request header as Key: Value (repeatable)")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn, error or none")
	flags.DurationVar(&opts.timeout, "timeout", 0, "overall request timeout")
	flags.IntVar(&opts.concurrency, "concurrency", 4, "requests in flight at once")
	flags.BoolVar(&opts.metrics, "metrics", false, "print request metrics when done")

	root.AddCommand(
		newGetCmd(opts),
		newDeleteCmd(opts),
		newSendCmd(opts, "post"),
		newSendCmd(opts, "put"),
		newKindsCmd(opts),
	)
	return root
}

func newKindsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the defect kinds a request can fail with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range defect.Kinds() {
				fmt.Fprintln(opts.stdout, k)
			}
			return nil
		},
	}
}

// parseHeader splits "Key: Value" or "Key=Value".
func parseHeader(s string) (string, string, error) {
	i := strings.IndexAny(s, ":=")
	if i <= 0 {
		return "", "", fmt.Errorf("header %q: want Key: Value", s)
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), nil
}
