package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fabriq-labs/gqlprobe/internal/config"
	"github.com/fabriq-labs/gqlprobe/internal/utils/colors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	releaseOwner = "fabriq-labs"
	releaseRepo  = "gqlprobe"
)

var versionFlags struct {
	Check bool
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(w, config.Version)
		if !versionFlags.Check {
			return nil
		}

		latest, err := fetchLatestVersion(cmd.Context())
		if err != nil {
			return err
		}
		if config.Version != config.VersionDev && latest != config.Version {
			_, _ = fmt.Fprint(w,
				colors.Warning("A new version of gqlprobe is available: "),
				colors.UserInput(latest), "\n",
			)
		} else {
			_, _ = fmt.Fprintln(w, colors.Faint("latest release: ", latest))
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(
		&versionFlags.Check, "check", false,
		"check GitHub for a newer release",
	)
}

func fetchLatestVersion(ctx context.Context) (string, error) {
	if latest, ok := config.CachedLatestVersion(); ok {
		return latest, nil
	}
	client, err := newGitHubClient()
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	latest, err := client.LatestRelease(ctx, releaseOwner, releaseRepo)
	if err != nil {
		return "", err
	}
	if err := config.SaveLatestVersion(latest); err != nil {
		logrus.WithError(err).Debug("failed to cache the latest version")
	}
	return latest, nil
}
