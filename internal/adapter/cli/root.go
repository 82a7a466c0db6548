package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/branchscope/branchscope/internal/domain"
	"github.com/branchscope/branchscope/internal/usecase/compare"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Comparer defines the dependency required to run the comparison commands.
type Comparer interface {
	Branches(ctx context.Context, repo compare.RepoRef) ([]domain.Branch, error)
	Compare(ctx context.Context, req compare.CompareRequest) (domain.ComparisonResult, error)
	DiffFile(ctx context.Context, req compare.DiffRequest) ([]domain.DiffLine, error)
}

// APIServer runs the HTTP API until its context is cancelled.
type APIServer interface {
	Run(ctx context.Context) error
}

// ReportWriter persists a comparison result as a markdown report.
type ReportWriter interface {
	Write(ctx context.Context, artifact ReportArtifact) (string, error)
}

// ReportArtifact carries everything the report writer needs.
type ReportArtifact struct {
	OutputDir    string
	Repository   string
	SourceBranch string
	DestBranch   string
	Result       domain.ComparisonResult
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Comparer      Comparer
	Server        APIServer
	Reports       ReportWriter
	Args          Arguments
	DefaultToken  string
	DefaultOutput string
	Version       string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "branchscope",
		Short: "Compare GitLab branches by commits and file changes",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(branchesCommand(deps))
	root.AddCommand(compareCommand(deps))
	root.AddCommand(diffCommand(deps))
	root.AddCommand(serveCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func branchesCommand(deps Dependencies) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "branches <repo-url>",
		Short: "List branches of a repository, default branch first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branches, err := deps.Comparer.Branches(cmd.Context(), compare.RepoRef{
				URL:   args[0],
				Token: resolveToken(token, deps.DefaultToken),
			})
			if err != nil {
				return err
			}
			renderBranches(cmd.OutOrStdout(), branches)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token (falls back to configuration)")
	return cmd
}

func compareCommand(deps Dependencies) *cobra.Command {
	var token string
	var fromDate string
	var toDate string
	var outputDir string
	var repository string

	cmd := &cobra.Command{
		Use:   "compare <repo-url> <source-branch> <dest-branch>",
		Short: "Compare two branches by exclusive commits and changed files",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := parseWindowFlags(fromDate, toDate)
			if err != nil {
				return err
			}

			result, err := deps.Comparer.Compare(cmd.Context(), compare.CompareRequest{
				Repo: compare.RepoRef{
					URL:   args[0],
					Token: resolveToken(token, deps.DefaultToken),
				},
				SourceBranch: args[1],
				DestBranch:   args[2],
				Window:       window,
			})
			if err != nil {
				return err
			}

			renderComparison(cmd.OutOrStdout(), args[1], args[2], result)

			if outputDir != "" && deps.Reports != nil {
				repoName := repository
				if repoName == "" {
					repoName = args[0]
				}
				path, writeErr := deps.Reports.Write(cmd.Context(), ReportArtifact{
					OutputDir:    outputDir,
					Repository:   repoName,
					SourceBranch: args[1],
					DestBranch:   args[2],
					Result:       result,
				})
				if writeErr != nil {
					return fmt.Errorf("write report: %w", writeErr)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token (falls back to configuration)")
	cmd.Flags().StringVar(&fromDate, "from", "", "Only include commits on or after this date (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "Only include commits on or before this date (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&outputDir, "output", "", "Directory to write a markdown report (omit to skip)")
	cmd.Flags().StringVar(&repository, "repository", "", "Optional repository name override for the report")
	return cmd
}

func diffCommand(deps Dependencies) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "diff <repo-url> <source-branch> <dest-branch> <path>",
		Short: "Show a line-level diff of one file between two branches",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := deps.Comparer.DiffFile(cmd.Context(), compare.DiffRequest{
				Repo: compare.RepoRef{
					URL:   args[0],
					Token: resolveToken(token, deps.DefaultToken),
				},
				SourceBranch: args[1],
				DestBranch:   args[2],
				Path:         args[3],
			})
			if err != nil {
				return err
			}
			renderDiff(cmd.OutOrStdout(), args[3], lines)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token (falls back to configuration)")
	return cmd
}

func serveCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Server == nil {
				return errors.New("api server not configured")
			}
			return deps.Server.Run(cmd.Context())
		},
	}
}

func resolveToken(flagValue, configDefault string) string {
	if flagValue != "" {
		return flagValue
	}
	return configDefault
}

// parseWindowFlags accepts RFC 3339 timestamps or bare dates; a bare --to
// date extends through the end of that day.
func parseWindowFlags(fromDate, toDate string) (compare.Window, error) {
	var window compare.Window

	if fromDate != "" {
		from, _, err := parseDateFlag(fromDate)
		if err != nil {
			return compare.Window{}, fmt.Errorf("--from: %w", err)
		}
		window.From = from
	}
	if toDate != "" {
		to, dateOnly, err := parseDateFlag(toDate)
		if err != nil {
			return compare.Window{}, fmt.Errorf("--to: %w", err)
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		window.To = to
	}
	return window, nil
}

func parseDateFlag(value string) (parsed time.Time, dateOnly bool, err error) {
	if t, e := time.Parse(time.RFC3339, value); e == nil {
		return t.UTC(), false, nil
	}
	if t, e := time.Parse("2006-01-02", value); e == nil {
		return t.UTC(), true, nil
	}
	return time.Time{}, false, fmt.Errorf("unrecognized date %q, want RFC 3339 or YYYY-MM-DD", value)
}
