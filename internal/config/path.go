// Package config assembles the bot's settings from viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a configured location such as output.dir, font.path,
// database.path, roster.xlsx_path, groups.file or sheets.service_account_path.
// A leading ~ becomes the home directory, then $VAR references are substituted.
// The home directory is left unexpanded when it cannot be determined.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return ""
	case path == "~":
		path = underHome(path, "")
	case strings.HasPrefix(path, "~/"):
		path = underHome(path, path[2:])
	}
	return os.ExpandEnv(path)
}

func underHome(original, rel string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return original
	}
	if rel == "" {
		return home
	}
	return filepath.Join(home, rel)
}
