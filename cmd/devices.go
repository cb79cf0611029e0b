// Package cmd holds the auxiliary CLI subcommands.
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/droidcast/droidcast/internal/adb"
	"github.com/droidcast/droidcast/internal/logging"
	"github.com/spf13/cobra"
)

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	var adbPath string
	var resolution bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List connected Android devices",
		Long: `Lists the devices known to adb together with their authorization status. ` +
			`With --resolution the screen size of each ready device is queried as well.`,
		Run: func(_ *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})
			logger := logging.GetLogger("adb")

			bridge := adb.NewBridge(adbPath, logger)
			devices := bridge.ListDevices()
			if len(devices) == 0 {
				fmt.Println("No devices found")
				return
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERIAL\tSTATUS\tRESOLUTION")
			for _, d := range devices {
				size := "-"
				if resolution && d.Ready() {
					if res, ok := bridge.QueryResolution(d.Serial); ok {
						size = res.String()
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.Serial, d.Status, size)
			}
			w.Flush()
		},
	}

	cmd.Flags().StringVar(&adbPath, "adb", "", "Path to the adb binary (defaults to PATH lookup)")
	cmd.Flags().BoolVar(&resolution, "resolution", false, "Query the screen resolution of ready devices")

	return cmd
}
