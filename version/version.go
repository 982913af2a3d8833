package version

import "strings"

var buildVersion = "v0.3.0"

// String returns the semantic version of the SDK. Override via ldflags, e.g.:
// go build -ldflags "-X github.com/carebridge/sdk-go/version.buildVersion=v0.3.0".
func String() string {
	return strings.TrimSpace(buildVersion)
}
