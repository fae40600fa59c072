package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/framechat/internal/cliconfig"
	"github.com/bft-labs/framechat/pkg/framechat"
	"github.com/bft-labs/framechat/pkg/log"
	"github.com/bft-labs/framechat/plugins/configwatcher"
	"github.com/bft-labs/framechat/plugins/metrics"
)

const helpDescription = `
Chat with a single TCP peer using fixed-width frames.

Every line you type is sent as one zero-padded frame; every frame the peer
sends is printed as it arrives. Type the quit command (default ":quit") on
its own line to leave.

Configure via file ($HOME/.framechat/config.toml), FRAMECHAT_* environment
variables, or flags, in increasing order of precedence.
`

var exampleUsage = strings.TrimSpace(`
  framechat --endpoint 127.0.0.1:6000
  framechat --mode poll --poll 100ms --render bytes
  framechat --config ./framechat.toml --metrics-addr :9100
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "framechat",
		Short:         "Point-to-point chat over fixed-width TCP frames",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			loadedPath := ""
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
				loadedPath = cfgFile
			}

			// Environment overrides the file; changed flags override both.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cliconfig.SetLogLevel(cfg.LogLevel); err != nil {
				return err
			}

			logger.Debug().Interface("config", cfg).Str("file", loadedPath).Msg("configuration")

			opts := []framechat.Option{
				framechat.WithLogger(log.NewZerologAdapterWithLogger(logger)),
			}
			if loadedPath != "" {
				opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
					SetLevel: cliconfig.SetLogLevel,
				}))
			}
			if cfg.MetricsAddr != "" {
				opts = append(opts, metrics.WithMetrics(metrics.Config{Addr: cfg.MetricsAddr}))
			}

			client, err := framechat.New(cfg.Library(loadedPath), opts...)
			if err != nil {
				return fmt.Errorf("create client: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := client.Run(ctx); err != nil {
				return err
			}
			if client.Status() == framechat.StateFrameTooLarge {
				logger.Warn().Msg("a message exceeded the frame width and was not sent")
			}
			return nil
		},
	}

	bindFlags(root.Flags(), &cfg, &cfgPath)

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("framechat")
		os.Exit(1)
	}
}

// bindFlags registers every CLI flag. Flag names double as the keys of the
// changed map consulted by the file and env loaders.
func bindFlags(fs *pflag.FlagSet, cfg *cliconfig.Config, cfgPath *string) {
	fs.StringVar(cfgPath, "config", "", "path to config file (default: $HOME/.framechat/config.toml)")
	fs.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "peer address as host:port")
	fs.IntVar(&cfg.FrameWidth, "frame-width", cfg.FrameWidth, "frame size in bytes")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, `worker mode: "select" or "poll"`)
	fs.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "pacing interval in poll mode")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "connect timeout")
	fs.DurationVar(&cfg.DrainTimeout, "drain-timeout", cfg.DrainTimeout, "wait this long for queued messages on exit (0: do not wait)")
	fs.StringVar(&cfg.QuitCommand, "quit", cfg.QuitCommand, "line that ends the session")
	fs.StringVar(&cfg.Render, "render", cfg.Render, `received message rendering: "text" or "bytes"`)
	fs.BoolVar(&cfg.EchoSent, "echo-sent", cfg.EchoSent, "print a confirmation after each sent message")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
}
