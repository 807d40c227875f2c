package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/LynnColeArt/hetmem"
	"github.com/LynnColeArt/hetmem/device"
	"github.com/LynnColeArt/hetmem/internal/config"
)

func newDeviceCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "device",
		Short: "Show device information",
		Long: `Display the attributes of the active device: memory clock, bus width,
memory in use and the theoretical bandwidth derived from them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := hetmem.PrintDeviceAttributes(out); err != nil {
				return err
			}
			fmt.Fprintf(out, "Devices: %d\n", device.GetDeviceCount())
			fmt.Fprintf(out, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			if s.cfg.Device != (config.DeviceConfig{}) {
				fmt.Fprintln(out, "Attributes overridden by configuration")
			}
			return nil
		},
	}
}
