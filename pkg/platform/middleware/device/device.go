// Package device derives a human-readable device label from a User-Agent.
// Onboarding audit events carry the label so reviewers can tell which device
// a submission came from without storing the raw header.
package device

import (
	"context"
	"strings"

	"github.com/mssola/useragent"

	"kycportal/pkg/requestcontext"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent returns a label such as "Chrome on Mac OS X 10_15_7".
func ParseUserAgent(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return unknownDevice
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	platform := ua.OS()
	if platform == "" {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = "Unknown OS"
	}
	if ua.Mobile() && !strings.Contains(platform, ua.Platform()) {
		platform = ua.Platform() + " " + platform
	}

	return strings.Join(strings.Fields(browser+" on "+platform), " ")
}

// Label returns the device label for the User-Agent stored in ctx.
func Label(ctx context.Context) string {
	return ParseUserAgent(requestcontext.UserAgent(ctx))
}
