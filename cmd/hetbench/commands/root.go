package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/LynnColeArt/hetmem"
	"github.com/LynnColeArt/hetmem/device"
	"github.com/LynnColeArt/hetmem/internal/config"
	"github.com/LynnColeArt/hetmem/internal/logging"
)

// session carries the settings shared by the subcommands of one invocation.
type session struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	cfg     *config.Config
}

// Execute runs the root command
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	s := &session{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "hetbench",
		Short: "Benchmark kernels against host and device memory",
		Long: `hetbench moves data between host and device memory, times kernels
on the device runtime and reports their effective memory bandwidth against
the theoretical peak of the device.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: s.setup,
	}

	rootCmd.PersistentFlags().StringVar(&s.cfgFile, "config", "", "config file (default is ./hetbench.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newMatrixCommand(s),
		newDeviceCommand(s),
		newSummaryCommand(s),
		newVersionCommand(),
	)
	return rootCmd
}

// flagKeys maps subcommand flags onto the configuration keys they override.
var flagKeys = map[string]string{
	"size":    "bench.array_size",
	"block":   "bench.block_size",
	"log-dir": "bench.log_dir",
}

// setup loads configuration, installs the logger and applies the device
// section before any subcommand runs.
func (s *session) setup(cmd *cobra.Command, args []string) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := s.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg, err := config.Load(s.v, s.cfgFile)
	if err != nil {
		return err
	}
	if s.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Init(cfg.Logging.Level, cfg.Logging.File, cfg.Logging.Console); err != nil {
		return err
	}
	hetmem.SetLogger(logging.Get())

	if err := hetmem.Check(hetmem.Fatal, device.Configure(cfg.DeviceOptions()),
		"device.Configure(cfg.DeviceOptions())"); err != nil {
		return err
	}
	logging.Debugf("configuration loaded from %q", s.v.ConfigFileUsed())
	s.cfg = cfg
	return nil
}
