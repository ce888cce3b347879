package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	podcastsim "github.com/botirk38/podcastsim"
	"github.com/botirk38/podcastsim/options"
)

// cli carries state shared by every subcommand
type cli struct {
	configPath string
	logLevel   string
	config     Config
	logger     *logrus.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{logger: logrus.StandardLogger()}

	root := &cobra.Command{
		Use:           "podsim",
		Short:         "Podcast similarity from episode descriptions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Flags())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", defaultConfigFile, "path to the TOML config file")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (overrides the config file)")

	root.AddCommand(
		newTokenizeCommand(c),
		newBuildCommand(c),
		newNeighborsCommand(c),
		newServeCommand(c),
	)
	return root
}

func (c *cli) setup(flags *pflag.FlagSet) error {
	cfg, err := loadConfig(c.configPath, flags.Changed("config"))
	if err != nil {
		return err
	}
	c.config = cfg

	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	c.logger.SetLevel(parsed)
	return nil
}

// engine builds an engine from the loaded config. withSource selects the
// configured token source; query-only commands pass false and get an empty
// in-memory one.
func (c *cli) engine(withSource bool, extra ...options.Option) (*podcastsim.Engine, error) {
	opts := []options.Option{options.WithLogger(c.logger)}

	if withSource {
		sourceOpts, err := c.config.sourceOptions()
		if err != nil {
			return nil, err
		}
		opts = append(opts, sourceOpts...)
	} else {
		opts = append(opts, options.WithMemorySource(nil))
	}

	storeOpt, err := c.config.storeOption()
	if err != nil {
		return nil, err
	}
	opts = append(opts, storeOpt)

	return podcastsim.New(append(opts, extra...)...)
}
