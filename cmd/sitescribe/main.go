package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/sitescribe/pkg/reporter"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "sitescribe [URL]",
		Short: "SiteScribe - turn a website into one Markdown file",
		Long: `SiteScribe fetches a page, follows every same-domain link on it, converts
each linked page to Markdown with an LLM and appends the result to <site>.txt.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(reporter.Formats(), strings.ToLower(opts.reportFormat)) {
				return fmt.Errorf("unsupported report format %q (want one of %s)",
					opts.reportFormat, strings.Join(reporter.Formats(), ", "))
			}
			opts.skipEmptySet = cmd.Flags().Changed("skip-empty")

			seed := ""
			if len(args) == 1 {
				seed = args[0]
			} else {
				var err error
				if seed, err = promptSeed(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err := run(ctx, strings.TrimSpace(seed), opts, cmd.OutOrStdout())
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose output")

	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for the output file (overrides output.dir)")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Also write a run report to this file")
	cmd.Flags().StringVar(&opts.reportFormat, "report-format", "json", "Report format (json, markdown, table)")
	cmd.Flags().BoolVar(&opts.skipEmpty, "skip-empty", false, "Do not append pages whose Markdown came back empty")

	return cmd
}

// promptSeed asks for the website on out and reads one line from in.
func promptSeed(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter website to crawl: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read website: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
