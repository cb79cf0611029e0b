package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/droidcast/droidcast/internal/logging"
	"github.com/droidcast/droidcast/internal/updater"
	"github.com/droidcast/droidcast/internal/version"
	"github.com/spf13/cobra"
)

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var repository string
	var prerelease bool
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the binary to the latest release",
		Long: `Checks GitHub for a newer release and replaces the running binary in place. ` +
			`A backup of the current binary is kept for rollback. Use --check to only report availability.`,
		Run: func(_ *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{Level: "info", Format: "text"})
			logger := logging.GetLogger("updater")

			svc, err := updater.NewService(&updater.Options{
				Repository: repository,
				Prerelease: prerelease,
			})
			if err != nil {
				logger.Error("Failed to create update service", "error", err)
				os.Exit(1)
			}
			if !svc.IsEnabled() {
				logger.Error("Updates disabled", "reason", svc.DisabledReason())
				os.Exit(1)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			info, err := svc.CheckForUpdate(ctx)
			if err != nil {
				logger.Error("Update check failed", "error", err)
				os.Exit(1)
			}

			if !info.UpdateAvailable {
				fmt.Printf("Already up to date (%s)\n", version.String())
				return
			}

			fmt.Printf("Update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
			if checkOnly {
				return
			}

			if err := svc.ApplyUpdate(ctx); err != nil {
				logger.Error("Update failed", "error", err)
				os.Exit(1)
			}
			fmt.Printf("Updated to %s, restart to use the new version\n", info.LatestVersion)
		},
	}

	cmd.Flags().StringVar(&repository, "repository", "droidcast/droidcast", "GitHub repository slug to update from")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prereleases")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for an update, do not apply it")

	return cmd
}
