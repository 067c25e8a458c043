package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func isUsageError(err error) bool {
	return strings.HasPrefix(err.Error(), "unknown command")
}

func newServeCommand(opts *options, errW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assets over HTTP",
		Long: `Build the repository and serve every asset below --base-path until
interrupted. /health answers liveness probes and /render?require=NAME renders a
bare page requiring the given declarations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp(errW)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "Address the asset server listens on.")
	cmd.Flags().IntVar(&opts.healthcheckPort, "healthcheck-port", 0, "Port for a dedicated HTTP health check server. 0 is disabled.")
	return cmd
}

func newRenderCommand(opts *options, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "render NAME...",
		Short: "Print the tags a page requiring NAME... would get",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, names []string) error {
			a, err := opts.newApp(errW)
			if err != nil {
				return err
			}
			out, err := a.Render(cmd.Context(), names...)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out.Stylesheets != "" {
				fmt.Fprintln(w, out.Stylesheets)
			}
			if out.Scripts != "" {
				fmt.Fprintln(w, out.Scripts)
			}
			return nil
		},
	}
}

func newListCommand(opts *options, errW io.Writer) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every declaration",
		Long: `List every declaration sorted by name, with its kind, path, served size
and version hash. Groups have no path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp(errW)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if quiet {
				for _, name := range a.Names() {
					fmt.Fprintln(w, name)
				}
				return nil
			}

			bold := color.New(color.Bold)
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tPATH\tSIZE\tVERSION")
			for _, e := range a.Entries() {
				size := "-"
				if e.Path != "" {
					size = humanize.Bytes(uint64(e.Size))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", bold.Sprint(e.Name), e.Kind, orDash(e.Path), size, orDash(e.Hash))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print names")
	return cmd
}

func newExportCommand(opts *options, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "export DIR",
		Short: "Write every servable file below DIR",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(errW)
			if err != nil {
				return err
			}
			report, err := a.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d files (%s) to %s\n", report.Files, humanize.Bytes(uint64(report.Bytes)), args[0])
			return nil
		},
	}
}

func newCheckCommand(opts *options, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate manifests and content",
		Long: `Load every manifest, resolve all references, read all content and build
the repository. Exits non-zero on the first problem.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp(errW)
			if err != nil {
				return err
			}
			repo := a.Repository()
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "OK: %d declarations, %d resources, %d servable paths\n",
				len(a.Names()), len(repo.Resources()), len(repo.Paths()))
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
