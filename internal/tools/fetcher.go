// Package tools downloads, verifies and unpacks the external tool releases
// the goals run.
package tools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/core/ports"
	"pybaseline/internal/platform/cache"
	"pybaseline/internal/platform/config"
	"pybaseline/internal/platform/errors"
	"pybaseline/internal/platform/httpclient"
	"pybaseline/internal/platform/logx"
	"pybaseline/internal/snapshot"
)

const (
	// releaseCapacity bounds the in-memory table of fetched releases.
	releaseCapacity = 16
	extractedDir    = "root"
	completeMarker  = ".complete"
)

// Fetcher downloads tool archives into an on-disk cache and snapshots the
// extracted tree. Extracted releases are reused across runs.
type Fetcher struct {
	cacheDir   string
	http       *httpclient.Client
	store      *snapshot.Store
	signatures map[string]config.Signature
	logger     logx.Logger

	mu       sync.Mutex
	releases *cache.LRU[ports.DownloadedTool]
}

var _ ports.Fetcher = (*Fetcher)(nil)

// NewFetcher builds a fetcher. An empty cacheDir falls back to
// DefaultCacheDir.
func NewFetcher(cacheDir string, client *httpclient.Client, store *snapshot.Store, signatures map[string]config.Signature, logger logx.Logger) *Fetcher {
	if cacheDir == "" {
		cacheDir = DefaultCacheDir()
	}
	return &Fetcher{
		cacheDir:   cacheDir,
		http:       client,
		store:      store,
		signatures: signatures,
		logger:     logger.With("component", "fetcher"),
		releases:   cache.NewLRU[ports.DownloadedTool](releaseCapacity),
	}
}

// DefaultCacheDir is the per-user tool cache.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "pybaseline", "tools")
}

// CacheDir returns the root of the on-disk cache.
func (f *Fetcher) CacheDir() string {
	return f.cacheDir
}

// Fetch returns the extracted release of spec for platform, downloading
// and verifying it when it is not cached yet.
func (f *Fetcher) Fetch(ctx context.Context, spec domain.ToolSpec, platform domain.Platform) (ports.DownloadedTool, error) {
	url, exe, err := spec.Locate(platform)
	if err != nil {
		return ports.DownloadedTool{}, err
	}

	key := spec.Name + "/" + spec.Version + "/" + string(platform)
	pin, pinned := spec.Pin(platform)
	pinned = pinned && pin.Pinned()
	if pinned {
		key += "/" + strings.ToLower(pin.SHA256)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if tool, ok := f.releases.Get(key); ok {
		return tool, nil
	}

	base := filepath.Join(f.cacheDir, spec.Name, spec.Version, string(platform))
	root := filepath.Join(base, extractedDir)
	sum, cached := readMarker(filepath.Join(base, completeMarker))
	if cached && pinned && !strings.EqualFold(sum, pin.SHA256) {
		f.logger.Warn("cached release does not match pin, reinstalling",
			"tool", spec.String(), "platform", platform, "cached_sha256", sum, "pinned_sha256", pin.SHA256)
		cached = false
	}
	if !cached {
		if err := f.install(ctx, spec, platform, url, base); err != nil {
			return ports.DownloadedTool{}, err
		}
	} else {
		f.logger.Debug("using cached release", "tool", spec.String(), "dir", root)
	}

	snap, err := f.store.CaptureDir(root)
	if err != nil {
		return ports.DownloadedTool{}, err
	}
	if _, ok := snap.Lookup(exe); !ok {
		return ports.DownloadedTool{}, errors.Wrapf(errors.ErrToolNotFound, "%s: %s not in archive", spec, exe)
	}

	tool := ports.DownloadedTool{Spec: spec, Snapshot: snap, Exe: exe}
	f.releases.Set(key, tool)
	return tool, nil
}

// readMarker returns the archive sha256 recorded when the release was
// installed.
func readMarker(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

func (f *Fetcher) install(ctx context.Context, spec domain.ToolSpec, platform domain.Platform, url, base string) error {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return errors.Wrapf(err, "create cache dir")
	}

	f.logger.Info("downloading tool", "tool", spec.String(), "platform", platform, "url", url)
	archive, err := os.CreateTemp(base, "download-*.tar.gz")
	if err != nil {
		return errors.Wrapf(err, "create temp file")
	}
	defer os.Remove(archive.Name())

	hasher := sha256.New()
	size, err := f.http.Download(ctx, url, io.MultiWriter(archive, hasher))
	closeErr := archive.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "write archive")
	}
	sum := hex.EncodeToString(hasher.Sum(nil))

	if pin, ok := spec.Pin(platform); ok && pin.Pinned() {
		if err := verifyPin(pin, sum, size); err != nil {
			return errors.Wrapf(err, "%s %s", spec, platform)
		}
	} else {
		f.logger.Warn("no checksum pin, skipping verification", "tool", spec.String(), "platform", platform, "sha256", sum, "size", size)
	}

	if sig, ok := f.signatures[spec.Name]; ok {
		if err := f.checkSignature(ctx, sig, url, archive.Name()); err != nil {
			return errors.Wrapf(err, "%s %s", spec, platform)
		}
	}

	staging, err := os.MkdirTemp(base, "extract-")
	if err != nil {
		return errors.Wrapf(err, "create staging dir")
	}
	defer os.RemoveAll(staging)
	if err := ExtractTarGz(archive.Name(), staging); err != nil {
		return errors.Wrapf(errors.ErrDownload, "%s: %v", spec, err)
	}

	root := filepath.Join(base, extractedDir)
	if err := os.RemoveAll(root); err != nil {
		return errors.Wrapf(err, "clear %s", root)
	}
	if err := os.Rename(staging, root); err != nil {
		return errors.Wrapf(err, "install %s", spec)
	}
	if err := os.WriteFile(filepath.Join(base, completeMarker), []byte(sum+"\n"), 0o644); err != nil {
		return errors.Wrapf(err, "mark %s complete", spec)
	}
	return nil
}

func (f *Fetcher) checkSignature(ctx context.Context, sig config.Signature, url, archive string) error {
	suffix := sig.Suffix
	if suffix == "" {
		suffix = ".sig"
	}
	keyring, err := loadKeyRing(sig.KeyFile)
	if err != nil {
		return err
	}
	data, err := f.http.Fetch(ctx, url+suffix)
	if err != nil {
		return errors.Wrapf(errors.ErrSignature, "fetch signature: %v", err)
	}
	if err := verifySignature(keyring, archive, data); err != nil {
		return err
	}
	f.logger.Debug("signature verified", "url", url+suffix)
	return nil
}

// LookPath resolves an executable that is expected on PATH rather than
// downloaded.
func LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(errors.ErrToolNotFound, "%s: %v", name, err)
	}
	return path, nil
}
