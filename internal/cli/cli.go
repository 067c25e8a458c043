package cli

import (
	"context"
	"errors"
	"io"

	"github.com/specialistvlad/basicbundles/internal/app"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// options holds every flag value before validation.
type options struct {
	manifests   []string
	variables   map[string]string
	contentRoot string
	basePath    string
	mode        string
	flavor      string
	logFormat   string
	logLevel    string

	addr            string
	healthcheckPort int
}

// config validates the flags into an app.Config. Invalid values are usage
// errors.
func (o *options) config() (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		ManifestPaths:   o.manifests,
		Variables:       o.variables,
		ContentRoot:     o.contentRoot,
		BasePath:        o.basePath,
		Addr:            o.addr,
		HealthcheckPort: o.healthcheckPort,
		Mode:            o.mode,
		Flavor:          o.flavor,
		LogFormat:       o.logFormat,
		LogLevel:        o.logLevel,
	})
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

// newApp validates the flags and builds the application, logging to errW.
func (o *options) newApp(errW io.Writer) (*app.App, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return app.NewApp(errW, cfg, nil)
}

// NewRootCommand builds the command tree. Output goes to outW, logs and
// errors to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "basicbundles",
		Short: "Declare, bundle and serve scripts and stylesheets",
		Long: `basicbundles builds a repository of scripts and stylesheets from manifest
files, then serves it over HTTP, renders the tags a page needs, or exports the
bundled output to disk.

Manifests may be written in HCL (.hcl), YAML (.yaml, .yml) or JSONC (.json,
.jsonc). Paths starting with "~/" are resolved below --content-root.

Examples:
  # Validate manifests and content
  basicbundles check -m manifests --content-root web

  # Serve assets under /static on :8080
  basicbundles serve -m manifests --content-root web --base-path /static

  # Print the tags for the "layout" group, bundled and minified
  basicbundles render layout -m manifests --mode bundled --flavor minified`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError(err) })

	pf := root.PersistentFlags()
	pf.StringSliceVarP(&opts.manifests, "manifest", "m", nil, "Manifest file or directory. Repeatable.")
	pf.StringToStringVar(&opts.variables, "var", nil, "Override an HCL variable, e.g. --var scripts=~/js. Repeatable.")
	pf.StringVar(&opts.contentRoot, "content-root", ".", "Directory that \"~/\" paths resolve to.")
	pf.StringVar(&opts.basePath, "base-path", "/", "URL prefix the assets are served under.")
	pf.StringVar(&opts.mode, "mode", "individual", "Render mode. Options: 'individual' or 'bundled'.")
	pf.StringVar(&opts.flavor, "flavor", "standard", "Preferred flavor when rendering. Options: 'standard' or 'minified'.")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	root.AddCommand(
		newServeCommand(opts, errW),
		newRenderCommand(opts, errW),
		newListCommand(opts, errW),
		newExportCommand(opts, errW),
		newCheckCommand(opts, errW),
	)
	return root
}

// Run executes the command line in args.
func Run(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if isUsageError(err) {
		return usageError(err)
	}
	return err
}

// exactArgs wraps cobra.ExactArgs so that a wrong count is a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}
