// internal/ua/ua.go
//
// User-Agent classification for request auditing.
//
// Context
// -------
// The API never varies its responses by client, but the audit trail and the
// access log record what kind of client made each call.  Parse turns the raw
// header into a small Info value: the browser and OS names reported by
// `github.com/avct/uasurfer`, a coarse device class, and two flags the
// suspicious-request detector consumes (IsBot and Scanner).
//
// Notes
// -----
//   - uasurfer enums never leave this package.
//   - Scanner matching is a lowercase substring test; it is a heuristic for
//     the audit trail, not an access control.
//   - Oxford commas, two spaces after periods.
package ua

import (
	"fmt"
	"strconv"
	"strings"

	surfer "github.com/avct/uasurfer"
)

// Device classes.
const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceOther   = "Other"
)

// scannerTokens are lowercase User-Agent fragments of common attack tools.
var scannerTokens = []string{"sqlmap", "nikto"}

// Info is the parsed form of one User-Agent header.
type Info struct {
	Browser string
	Version string
	OS      string
	Device  string
	IsBot   bool
	Scanner string // matched scanner token, "" if none
	Raw     string
}

// Parse classifies raw.  An empty header yields Device "Other" and no flags.
func Parse(raw string) Info {
	info := Info{Raw: raw, Scanner: scannerToken(raw)}
	if raw == "" {
		info.Device = DeviceOther
		return info
	}

	u := surfer.Parse(raw)
	info.Browser = strings.TrimPrefix(u.Browser.Name.String(), "Browser")
	info.Version = versionToString(u.Browser.Version)
	info.OS = strings.TrimPrefix(u.OS.Name.String(), "OS")
	info.IsBot = u.IsBot()

	switch u.DeviceType {
	case surfer.DeviceComputer:
		info.Device = DeviceDesktop
	case surfer.DeviceTablet:
		info.Device = DeviceTablet
	case surfer.DevicePhone, surfer.DeviceWearable:
		info.Device = DeviceMobile
	default:
		info.Device = DeviceOther
	}
	return info
}

// Automated reports whether the client is a crawler or a known scanner.
func (i Info) Automated() bool { return i.IsBot || i.Scanner != "" }

// Summary renders "Browser/Version on OS (Device)" for log lines.
func (i Info) Summary() string {
	if i.Browser == "" && i.OS == "" {
		return i.Device
	}
	b := i.Browser
	if i.Version != "" {
		b += "/" + i.Version
	}
	return fmt.Sprintf("%s on %s (%s)", b, i.OS, i.Device)
}

func scannerToken(raw string) string {
	lower := strings.ToLower(raw)
	for _, s := range scannerTokens {
		if strings.Contains(lower, s) {
			return s
		}
	}
	return ""
}

// versionToString renders major[.minor[.patch]] without trailing zero parts.
func versionToString(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return strconv.Itoa(int(v.Major))
	}
}
