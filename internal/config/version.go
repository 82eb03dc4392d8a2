package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

const VersionDev = "<dev>"

// Version is the version of the gqlprobe application.
// It is set automatically when creating release builds.
var Version = VersionDev

// versionCacheTTL is how long a fetched release name is trusted.
const versionCacheTTL = 24 * time.Hour

func versionCacheFile() (string, error) {
	return xdg.CacheFile(filepath.Join("gqlprobe", "version-check"))
}

// CachedLatestVersion returns the latest release name recorded by
// SaveLatestVersion, if it's recent enough.
func CachedLatestVersion() (string, bool) {
	pth, err := versionCacheFile()
	if err != nil {
		return "", false
	}
	stat, err := os.Stat(pth)
	if err != nil || time.Since(stat.ModTime()) > versionCacheTTL {
		return "", false
	}
	data, err := os.ReadFile(pth)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// SaveLatestVersion records the latest release name in the user's cache dir.
func SaveLatestVersion(name string) error {
	pth, err := versionCacheFile()
	if err != nil {
		return err
	}
	return os.WriteFile(pth, []byte(name), 0644)
}
