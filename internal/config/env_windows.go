//go:build windows

package config

// mapEnvKey lets settings files written for Unix hosts resolve on Windows.
func mapEnvKey(key string) string {
	switch key {
	case "HOSTNAME":
		return "COMPUTERNAME"
	case "HOME":
		return "USERPROFILE"
	case "USER":
		return "USERNAME"
	}
	return key
}
