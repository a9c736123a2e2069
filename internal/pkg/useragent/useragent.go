// Package useragent classifies User-Agent strings into the coarse
// device/OS/browser buckets the dashboard groups by. Token matching is
// intentionally shallow: the analytics only need family-level buckets,
// and anything unrecognized stays empty so the aggregation layer can map
// it to its Unknown sentinel.
package useragent

import "strings"

// Device type buckets.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// Classification is the coarse device profile derived from a User-Agent.
// Empty fields mean the string carried no recognizable token.
type Classification struct {
	DeviceType string
	OS         string
	Browser    string
}

// Classify derives device type, operating system and browser family from
// a raw User-Agent string.
func Classify(ua string) Classification {
	if ua == "" {
		return Classification{}
	}
	lower := strings.ToLower(ua)

	return Classification{
		DeviceType: deviceType(lower),
		OS:         operatingSystem(lower),
		Browser:    browser(lower),
	}
}

func deviceType(lower string) string {
	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		return DeviceTablet
	case strings.Contains(lower, "mobi") || strings.Contains(lower, "iphone") ||
		strings.Contains(lower, "android"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

func operatingSystem(lower string) string {
	switch {
	case strings.Contains(lower, "windows"):
		return "Windows"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad") ||
		strings.Contains(lower, "ios"):
		return "iOS"
	case strings.Contains(lower, "mac os") || strings.Contains(lower, "macintosh") ||
		strings.Contains(lower, "darwin"):
		return "macOS"
	case strings.Contains(lower, "android"):
		return "Android"
	case strings.Contains(lower, "linux"):
		return "Linux"
	default:
		return ""
	}
}

// browser checks the most-shadowed tokens first: Edge and Opera embed
// "Chrome", and Chrome embeds "Safari".
func browser(lower string) string {
	switch {
	case strings.Contains(lower, "edg/") || strings.Contains(lower, "edge"):
		return "Edge"
	case strings.Contains(lower, "opr/") || strings.Contains(lower, "opera"):
		return "Opera"
	case strings.Contains(lower, "firefox"):
		return "Firefox"
	case strings.Contains(lower, "chrome") || strings.Contains(lower, "crios"):
		return "Chrome"
	case strings.Contains(lower, "safari"):
		return "Safari"
	default:
		return ""
	}
}
