package tools

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/platform/config"
	"pybaseline/internal/platform/errors"
	"pybaseline/internal/platform/httpclient"
	"pybaseline/internal/platform/logx"
	"pybaseline/internal/snapshot"
)

type tarFile struct {
	name string
	body string
	mode int64
}

func buildTarGz(t *testing.T, files ...tarFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, f := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     f.name,
			Mode:     f.mode,
			Size:     int64(len(f.body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func ruffArchive(t *testing.T) []byte {
	return buildTarGz(t,
		tarFile{name: "ruff-x86_64-unknown-linux-gnu/ruff", body: "#!/bin/sh\necho ruff\n", mode: 0o755},
		tarFile{name: "ruff-x86_64-unknown-linux-gnu/LICENSE", body: "MIT\n", mode: 0o644},
	)
}

type releaseServer struct {
	*httptest.Server
	hits atomic.Int32
}

func serveFiles(t *testing.T, files map[string][]byte) *releaseServer {
	t.Helper()
	rs := &releaseServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.hits.Add(1)
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func testSpec(serverURL string, pins ...domain.KnownVersion) domain.ToolSpec {
	spec := domain.NewToolSpec("ruff", "0.9.6", pins)
	spec.URLTemplate = serverURL + "/{version}/{name}-{triple}.tar.gz"
	return spec
}

func pinFor(data []byte) domain.KnownVersion {
	sum := sha256.Sum256(data)
	return domain.KnownVersion{
		Version:  "0.9.6",
		Platform: domain.PlatformLinuxX86_64,
		SHA256:   hex.EncodeToString(sum[:]),
		Size:     int64(len(data)),
	}
}

func newTestFetcher(t *testing.T, cacheDir string, sigs map[string]config.Signature) *Fetcher {
	t.Helper()
	client := httpclient.New(httpclient.DefaultConfig(), logx.Discard())
	store := snapshot.NewStore(t.TempDir(), logx.Discard())
	return NewFetcher(cacheDir, client, store, sigs, logx.Discard())
}

const archivePath = "/0.9.6/ruff-x86_64-unknown-linux-gnu.tar.gz"

func TestFetcher_Fetch(t *testing.T) {
	data := ruffArchive(t)
	srv := serveFiles(t, map[string][]byte{archivePath: data})
	cacheDir := t.TempDir()
	f := newTestFetcher(t, cacheDir, nil)

	tool, err := f.Fetch(context.Background(), testSpec(srv.URL, pinFor(data)), domain.PlatformLinuxX86_64)
	require.NoError(t, err)

	assert.Equal(t, "ruff-x86_64-unknown-linux-gnu/ruff", tool.Exe)
	assert.Equal(t, []string{
		"ruff-x86_64-unknown-linux-gnu/LICENSE",
		"ruff-x86_64-unknown-linux-gnu/ruff",
	}, tool.Snapshot.Files())
	exe, ok := tool.Snapshot.Lookup(tool.Exe)
	require.True(t, ok)
	assert.True(t, exe.Executable)

	_, err = os.Stat(filepath.Join(cacheDir, "ruff", "0.9.6", "linux_x86_64", completeMarker))
	assert.NoError(t, err)
}

func TestFetcher_Fetch_Cached(t *testing.T) {
	data := ruffArchive(t)
	srv := serveFiles(t, map[string][]byte{archivePath: data})
	cacheDir := t.TempDir()
	spec := testSpec(srv.URL, pinFor(data))

	f := newTestFetcher(t, cacheDir, nil)
	first, err := f.Fetch(context.Background(), spec, domain.PlatformLinuxX86_64)
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), spec, domain.PlatformLinuxX86_64)
	require.NoError(t, err)
	assert.Equal(t, first.Snapshot.Digest(), second.Snapshot.Digest())
	assert.EqualValues(t, 1, srv.hits.Load(), "memoized within a fetcher")

	// A fresh fetcher reuses the extracted release on disk.
	again, err := newTestFetcher(t, cacheDir, nil).Fetch(context.Background(), spec, domain.PlatformLinuxX86_64)
	require.NoError(t, err)
	assert.Equal(t, first.Snapshot.Digest(), again.Snapshot.Digest())
	assert.EqualValues(t, 1, srv.hits.Load(), "served from disk cache")
}

func TestFetcher_Fetch_ChecksumMismatch(t *testing.T) {
	data := ruffArchive(t)
	srv := serveFiles(t, map[string][]byte{archivePath: data})
	pin := pinFor(data)
	pin.SHA256 = strings.Repeat("ab", 32)
	cacheDir := t.TempDir()

	_, err := newTestFetcher(t, cacheDir, nil).Fetch(context.Background(), testSpec(srv.URL, pin), domain.PlatformLinuxX86_64)
	require.Error(t, err)
	assert.True(t, errors.IsChecksumMismatch(err))

	_, statErr := os.Stat(filepath.Join(cacheDir, "ruff", "0.9.6", "linux_x86_64", completeMarker))
	assert.True(t, os.IsNotExist(statErr), "failed download is not cached")
}

func TestFetcher_Fetch_SizeMismatch(t *testing.T) {
	data := ruffArchive(t)
	srv := serveFiles(t, map[string][]byte{archivePath: data})
	pin := pinFor(data)
	pin.Size++

	_, err := newTestFetcher(t, t.TempDir(), nil).Fetch(context.Background(), testSpec(srv.URL, pin), domain.PlatformLinuxX86_64)
	assert.True(t, errors.IsChecksumMismatch(err))
}

func TestFetcher_Fetch_Unpinned(t *testing.T) {
	data := ruffArchive(t)
	srv := serveFiles(t, map[string][]byte{archivePath: data})
	placeholder := domain.KnownVersion{
		Version:  "0.9.6",
		Platform: domain.PlatformLinuxX86_64,
		SHA256:   "0000000000000000000000000000000000000000000000000000000000000000",
	}

	tool, err := newTestFetcher(t, t.TempDir(), nil).Fetch(context.Background(), testSpec(srv.URL, placeholder), domain.PlatformLinuxX86_64)
	require.NoError(t, err)
	assert.Equal(t, 2, tool.Snapshot.Len())
}

func TestFetcher_Fetch_CachedReleaseCheckedAgainstPin(t *testing.T) {
	data := ruffArchive(t)
	srv := serveFiles(t, map[string][]byte{archivePath: data})
	cacheDir := t.TempDir()

	_, err := newTestFetcher(t, cacheDir, nil).Fetch(context.Background(), testSpec(srv.URL), domain.PlatformLinuxX86_64)
	require.NoError(t, err)
	require.Equal(t, int32(1), srv.hits.Load())

	wrong := pinFor(data)
	wrong.SHA256 = strings.Repeat("ab", 32)
	_, err = newTestFetcher(t, cacheDir, nil).Fetch(context.Background(), testSpec(srv.URL, wrong), domain.PlatformLinuxX86_64)
	require.Error(t, err)
	assert.True(t, errors.IsChecksumMismatch(err), "got %v", err)
	assert.Equal(t, int32(2), srv.hits.Load(), "mismatched cache entry must be downloaded again")
}

func TestFetcher_Fetch_CachedReleaseMatchingPin(t *testing.T) {
	data := ruffArchive(t)
	srv := serveFiles(t, map[string][]byte{archivePath: data})
	cacheDir := t.TempDir()

	_, err := newTestFetcher(t, cacheDir, nil).Fetch(context.Background(), testSpec(srv.URL), domain.PlatformLinuxX86_64)
	require.NoError(t, err)

	tool, err := newTestFetcher(t, cacheDir, nil).Fetch(context.Background(), testSpec(srv.URL, pinFor(data)), domain.PlatformLinuxX86_64)
	require.NoError(t, err)
	assert.Equal(t, "ruff-x86_64-unknown-linux-gnu/ruff", tool.Exe)
	assert.Equal(t, int32(1), srv.hits.Load(), "recorded sum matches the pin, no download")
}

func TestFetcher_Fetch_MissingExecutable(t *testing.T) {
	data := buildTarGz(t, tarFile{name: "other/README", body: "x", mode: 0o644})
	srv := serveFiles(t, map[string][]byte{archivePath: data})

	_, err := newTestFetcher(t, t.TempDir(), nil).Fetch(context.Background(), testSpec(srv.URL), domain.PlatformLinuxX86_64)
	assert.True(t, errors.Is(err, errors.ErrToolNotFound))
}

func TestFetcher_Fetch_NotFound(t *testing.T) {
	srv := serveFiles(t, nil)

	_, err := newTestFetcher(t, t.TempDir(), nil).Fetch(context.Background(), testSpec(srv.URL), domain.PlatformLinuxX86_64)
	assert.True(t, errors.Is(err, errors.ErrDownload))
}

func TestFetcher_Fetch_UnsupportedPlatform(t *testing.T) {
	_, err := newTestFetcher(t, t.TempDir(), nil).Fetch(context.Background(), testSpec("http://unused"), domain.Platform("windows_x86_64"))
	assert.True(t, errors.IsUnsupportedPlatform(err))
}

func writeKeyPair(t *testing.T, dir string) (*openpgp.Entity, string) {
	t.Helper()
	entity, err := openpgp.NewEntity("Release Bot", "", "release@example.com", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.Serialize(w))
	require.NoError(t, w.Close())

	path := filepath.Join(dir, "release.asc")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return entity, path
}

func armoredSignature(t *testing.T, signer *openpgp.Entity, data []byte) []byte {
	t.Helper()
	var sig bytes.Buffer
	require.NoError(t, openpgp.ArmoredDetachSign(&sig, signer, bytes.NewReader(data), nil))
	return sig.Bytes()
}

func TestFetcher_Fetch_Signature(t *testing.T) {
	data := ruffArchive(t)
	signer, keyFile := writeKeyPair(t, t.TempDir())
	srv := serveFiles(t, map[string][]byte{
		archivePath:          data,
		archivePath + ".asc": armoredSignature(t, signer, data),
	})
	sigs := map[string]config.Signature{"ruff": {KeyFile: keyFile, Suffix: ".asc"}}

	_, err := newTestFetcher(t, t.TempDir(), sigs).Fetch(context.Background(), testSpec(srv.URL, pinFor(data)), domain.PlatformLinuxX86_64)
	require.NoError(t, err)
}

func TestFetcher_Fetch_BadSignature(t *testing.T) {
	data := ruffArchive(t)
	_, keyFile := writeKeyPair(t, t.TempDir())
	other, _ := writeKeyPair(t, t.TempDir())
	srv := serveFiles(t, map[string][]byte{
		archivePath:          data,
		archivePath + ".sig": armoredSignature(t, other, data),
	})
	sigs := map[string]config.Signature{"ruff": {KeyFile: keyFile}}

	_, err := newTestFetcher(t, t.TempDir(), sigs).Fetch(context.Background(), testSpec(srv.URL, pinFor(data)), domain.PlatformLinuxX86_64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSignature))
}

func TestExtractTarGz_RejectsEscape(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar.gz")
	require.NoError(t, os.WriteFile(archive, buildTarGz(t, tarFile{name: "../evil", body: "x", mode: 0o644}), 0o644))

	err := ExtractTarGz(archive, filepath.Join(dir, "out"))
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "evil"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLookPath_Missing(t *testing.T) {
	_, err := LookPath("pybaseline-definitely-not-installed")
	assert.True(t, errors.Is(err, errors.ErrToolNotFound))
}
