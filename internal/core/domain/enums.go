// internal/core/domain/enums.go
package domain

import (
	"fmt"
	"runtime"

	"pybaseline/internal/platform/errors"
)

// Platform identifies one of the host variants a tool is published for.
type Platform string

const (
	PlatformMacOSArm64  Platform = "macos_arm64"
	PlatformMacOSX86_64 Platform = "macos_x86_64"
	PlatformLinuxArm64  Platform = "linux_arm64"
	PlatformLinuxX86_64 Platform = "linux_x86_64"
)

var platformTriples = map[Platform]string{
	PlatformMacOSArm64:  "aarch64-apple-darwin",
	PlatformMacOSX86_64: "x86_64-apple-darwin",
	PlatformLinuxArm64:  "aarch64-unknown-linux-gnu",
	PlatformLinuxX86_64: "x86_64-unknown-linux-gnu",
}

// AllPlatforms returns the known platforms in a stable order.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformMacOSArm64,
		PlatformMacOSX86_64,
		PlatformLinuxArm64,
		PlatformLinuxX86_64,
	}
}

// IsValid reports whether p is one of the known platforms.
func (p Platform) IsValid() bool {
	_, ok := platformTriples[p]
	return ok
}

// Triple returns the Rust target triple used in release asset names.
// Unknown platforms fail closed.
func (p Platform) Triple() (string, error) {
	triple, ok := platformTriples[p]
	if !ok {
		return "", errors.Wrapf(errors.ErrUnsupportedPlatform, "platform %q", string(p))
	}
	return triple, nil
}

func (p Platform) String() string {
	return string(p)
}

// ParsePlatform validates a platform identifier.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if !p.IsValid() {
		return "", errors.Wrapf(errors.ErrUnsupportedPlatform, "platform %q", s)
	}
	return p, nil
}

// PlatformFor maps a GOOS/GOARCH pair to a Platform.
func PlatformFor(goos, goarch string) (Platform, error) {
	switch fmt.Sprintf("%s/%s", goos, goarch) {
	case "darwin/arm64":
		return PlatformMacOSArm64, nil
	case "darwin/amd64":
		return PlatformMacOSX86_64, nil
	case "linux/arm64":
		return PlatformLinuxArm64, nil
	case "linux/amd64":
		return PlatformLinuxX86_64, nil
	default:
		return "", errors.Wrapf(errors.ErrUnsupportedPlatform, "%s/%s", goos, goarch)
	}
}

// HostPlatform returns the Platform of the running process.
func HostPlatform() (Platform, error) {
	return PlatformFor(runtime.GOOS, runtime.GOARCH)
}

// OutputFormat is the user-facing report format shared by every tool.
type OutputFormat string

const (
	OutputText   OutputFormat = "text"
	OutputJSON   OutputFormat = "json"
	OutputGitHub OutputFormat = "github"
)

// IsValid verifies the format is one of text, json or github.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputText, OutputJSON, OutputGitHub:
		return true
	default:
		return false
	}
}

func (f OutputFormat) String() string {
	return string(f)
}

// ParseOutputFormat rejects unknown formats with ErrInvalidConfig.
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(s)
	if !f.IsValid() {
		return "", errors.Wrapf(errors.ErrInvalidConfig, "unknown output format %q (want text, json or github)", s)
	}
	return f, nil
}

// Goal names a user-invocable quality operation.
type Goal string

const (
	GoalLint      Goal = "lint"
	GoalFmt       Goal = "fmt"
	GoalTypecheck Goal = "typecheck"
	GoalTest      Goal = "test"
	GoalAudit     Goal = "audit"
)

// Verb is the word used in "No files to <verb>" messages.
func (g Goal) Verb() string {
	switch g {
	case GoalLint:
		return "lint"
	case GoalFmt:
		return "format"
	case GoalTypecheck:
		return "type check"
	case GoalTest:
		return "test"
	case GoalAudit:
		return "audit"
	default:
		return string(g)
	}
}

func (g Goal) String() string {
	return string(g)
}
