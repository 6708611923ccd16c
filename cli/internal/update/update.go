package update

import (
	"fmt"
	"runtime"

	"github.com/hashicorp/go-version"
	"github.com/satishbabariya/migrago/cli/internal/ui"
)

// CheckForUpdates checks if a newer version is available
func CheckForUpdates(currentVersion string) error {
	current, err := version.NewVersion(currentVersion)
	if err != nil {
		return fmt.Errorf("invalid version format: %w", err)
	}

	// TODO: fetch the latest release tag from the GitHub releases API
	latestVersionStr := "0.1.0"
	latest, err := version.NewVersion(latestVersionStr)
	if err != nil {
		return fmt.Errorf("invalid latest version format: %w", err)
	}

	if current.LessThan(latest) {
		ui.PrintWarning("A new version is available!")
		fmt.Printf("Current version: %s\n", currentVersion)
		fmt.Printf("Latest version:  %s\n", latestVersionStr)
		fmt.Printf("\nUpdate with: go install github.com/satishbabariya/migrago/cmd/migrago@latest\n")
		return nil
	}

	return nil
}

// GetDownloadURL returns the download URL for the current platform
func GetDownloadURL(version string) string {
	os := runtime.GOOS
	arch := runtime.GOARCH

	return fmt.Sprintf("https://github.com/satishbabariya/migrago/releases/download/v%s/migrago-%s-%s", version, os, arch)
}
