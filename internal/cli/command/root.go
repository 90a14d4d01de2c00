package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fxgallery/internal/cli/config"
	"github.com/yndnr/fxgallery/internal/cli/connection"
	"github.com/yndnr/fxgallery/internal/cli/output"
	"github.com/yndnr/fxgallery/internal/infra/buildinfo"
	"github.com/yndnr/fxgallery/internal/infra/tlsroots"
)

const metadataConfig = "config"

// requestTimeout bounds a single server call.
const requestTimeout = 30 * time.Second

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "fxtoken",
		Usage:   "Encode, decode and export generative-art share tokens",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			EncodeCommand(),
			SealCommand(),
			DecodeCommand(),
			SeedCommand(),
			FingerprintCommand(),
			KindsCommand(),
			ExportCommand(),
			AccessCommand(),
			AdminCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before: loadConfig,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file (default ~/.fxgallery/cli.yaml)",
			EnvVars: []string{"FXTOKEN_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "fxgallery server address (e.g., 127.0.0.1:5080)",
			EnvVars: []string{"FXTOKEN_SERVER"},
			Value:   config.Default().Server,
		},
		&cli.StringFlag{
			Name:    "admin-key",
			Aliases: []string{"K"},
			Usage:   "Admin key for curator commands",
			EnvVars: []string{"FXTOKEN_ADMIN_KEY"},
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM CA bundle for servers with a private certificate",
			EnvVars: []string{"FXTOKEN_CA_FILE"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			EnvVars: []string{"FXTOKEN_OUTPUT"},
			Value:   config.Default().Output,
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
	}
}

// loadConfig reads the CLI config file and uses it for every global flag
// the command line and environment left unset.
func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	fromFile := map[string]string{
		"server":    cfg.Server,
		"admin-key": cfg.AdminKey,
		"ca-file":   cfg.CAFile,
		"output":    cfg.Output,
	}
	for name, value := range fromFile {
		if value == "" || c.IsSet(name) {
			continue
		}
		if err := c.Set(name, value); err != nil {
			return err
		}
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[metadataConfig] = cfg
	return nil
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	ConfigPath string
	Server     string
	AdminKey   string
	CAFile     string
	Output     string
	Wide       bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		ConfigPath: c.String("config"),
		Server:     c.String("server"),
		AdminKey:   c.String("admin-key"),
		CAFile:     c.String("ca-file"),
		Output:     c.String("output"),
		Wide:       c.Bool("wide"),
	}
}

// GetConfig returns the loaded CLI config, or the defaults when the Before
// hook did not run.
func GetConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metadataConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// EnsureConnected returns an HTTP client for the configured server.
func EnsureConnected(c *cli.Context) (*connection.HTTPClient, error) {
	flags := ParseGlobalFlags(c)
	if flags.Server == "" {
		return nil, fmt.Errorf("no server configured (use --server or FXTOKEN_SERVER)")
	}

	tlsConfig, err := tlsroots.LoadClientTLS(flags.CAFile)
	if err != nil {
		return nil, fmt.Errorf("load CA file: %w", err)
	}

	opts := []connection.Option{connection.WithAdminKey(flags.AdminKey)}
	if tlsConfig != nil {
		opts = append(opts, connection.WithTLSConfig(tlsConfig))
	}
	return connection.NewHTTPClient(flags.Server, opts...), nil
}

func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, requestTimeout)
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, flags.Wide).Format(c.App.Writer, data)
}

// tableOutput reports whether results are rendered as a table.
func tableOutput(c *cli.Context) bool {
	format, err := output.ParseFormat(c.String("output"))
	return err == nil && format == output.FormatTable
}

// readInput returns the named file, the argument, or standard input when
// the argument is empty or "-".
func readInput(c *cli.Context, file, arg string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if arg != "" && arg != "-" {
		return arg, nil
	}

	data, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// confirm asks a yes/no question on the app streams.
func confirm(c *cli.Context, question string) bool {
	fmt.Fprintf(c.App.ErrWriter, "%s [y/N]: ", question)

	var answer string
	fmt.Fscanln(c.App.Reader, &answer)
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
