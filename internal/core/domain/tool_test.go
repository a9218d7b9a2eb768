// internal/core/domain/tool_test.go
package domain

import (
	"strings"
	"testing"

	"pybaseline/internal/platform/errors"
)

func TestPlatform_Triple(t *testing.T) {
	tests := []struct {
		platform Platform
		triple   string
	}{
		{PlatformMacOSArm64, "aarch64-apple-darwin"},
		{PlatformMacOSX86_64, "x86_64-apple-darwin"},
		{PlatformLinuxArm64, "aarch64-unknown-linux-gnu"},
		{PlatformLinuxX86_64, "x86_64-unknown-linux-gnu"},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			got, err := tt.platform.Triple()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.triple {
				t.Errorf("Triple() = %q, want %q", got, tt.triple)
			}
		})
	}
}

func TestToolSpec_Locate(t *testing.T) {
	spec := NewToolSpec("ruff", "0.9.6", nil)

	for _, p := range AllPlatforms() {
		t.Run(string(p), func(t *testing.T) {
			url, exe, err := spec.Locate(p)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			triple, _ := p.Triple()
			if !strings.Contains(url, triple) {
				t.Errorf("url %q does not contain %q", url, triple)
			}
			wantURL := "https://github.com/astral-sh/ruff/releases/download/0.9.6/ruff-" + triple + ".tar.gz"
			if url != wantURL {
				t.Errorf("url = %q, want %q", url, wantURL)
			}
			if exe != "ruff-"+triple+"/ruff" {
				t.Errorf("exe = %q", exe)
			}
		})
	}
}

func TestToolSpec_Locate_UnsupportedPlatform(t *testing.T) {
	spec := NewToolSpec("ty", "0.0.1-alpha.10", nil)

	for _, p := range []Platform{"windows_x86_64", "", "linux_riscv64"} {
		_, _, err := spec.Locate(p)
		if !errors.Is(err, errors.ErrUnsupportedPlatform) {
			t.Errorf("Locate(%q) error = %v, want ErrUnsupportedPlatform", p, err)
		}
	}
}

func TestPlatformFor(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         Platform
		wantErr      bool
	}{
		{"darwin", "arm64", PlatformMacOSArm64, false},
		{"darwin", "amd64", PlatformMacOSX86_64, false},
		{"linux", "arm64", PlatformLinuxArm64, false},
		{"linux", "amd64", PlatformLinuxX86_64, false},
		{"windows", "amd64", "", true},
		{"linux", "386", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := PlatformFor(tt.goos, tt.goarch)
			if tt.wantErr {
				if !errors.IsUnsupportedPlatform(err) {
					t.Fatalf("expected ErrUnsupportedPlatform, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("PlatformFor = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestParseKnownVersion(t *testing.T) {
	line := "0.9.6|linux_x86_64|bed850f15d4d5aaaef2b6a131bfecd5b9d7d3191596249d07e576bd9fd37078e|12511815"
	kv, err := ParseKnownVersion(line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kv.Version != "0.9.6" || kv.Platform != PlatformLinuxX86_64 || kv.Size != 12511815 {
		t.Errorf("unexpected parse: %+v", kv)
	}
	if !kv.Pinned() {
		t.Error("real hash should be pinned")
	}

	zero, err := ParseKnownVersion("0.5.21|macos_arm64|" + strings.Repeat("0", 64) + "|0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zero.Pinned() {
		t.Error("all-zero hash should not count as a pin")
	}

	for _, bad := range []string{
		"0.9.6|linux_x86_64|abc|1",
		"0.9.6|windows|" + strings.Repeat("a", 64) + "|1",
		"0.9.6|linux_x86_64|" + strings.Repeat("a", 64),
		"0.9.6|linux_x86_64|" + strings.Repeat("a", 64) + "|-4",
	} {
		if _, err := ParseKnownVersion(bad); !errors.Is(err, errors.ErrInvalidConfig) {
			t.Errorf("ParseKnownVersion(%q) error = %v, want ErrInvalidConfig", bad, err)
		}
	}
}

func TestToolSpec_Pin(t *testing.T) {
	pin := KnownVersion{Version: "0.9.6", Platform: PlatformMacOSArm64, SHA256: strings.Repeat("a", 64), Size: 1}
	other := KnownVersion{Version: "0.9.5", Platform: PlatformMacOSArm64, SHA256: strings.Repeat("b", 64), Size: 1}
	spec := NewToolSpec("ruff", "0.9.6", []KnownVersion{other, pin})

	got, ok := spec.Pin(PlatformMacOSArm64)
	if !ok || got != pin {
		t.Errorf("Pin = %+v, %v", got, ok)
	}
	if _, ok := spec.Pin(PlatformLinuxArm64); ok {
		t.Error("no pin expected for linux_arm64")
	}
}

func TestParseOutputFormat(t *testing.T) {
	for _, ok := range []string{"text", "json", "github"} {
		if _, err := ParseOutputFormat(ok); err != nil {
			t.Errorf("ParseOutputFormat(%q) unexpected error: %v", ok, err)
		}
	}
	_, err := ParseOutputFormat("sarif")
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
