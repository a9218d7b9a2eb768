package httpclient

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"pybaseline/internal/platform/errors"
	"pybaseline/internal/platform/logx"
	"pybaseline/internal/testutil"
)

func TestNew_AppliesDefaults(t *testing.T) {
	client := New(Config{}, logx.Discard())

	testutil.AssertEqual(t, client.config.Timeout, 5*time.Minute, "default timeout")
	testutil.AssertEqual(t, client.config.UserAgent, "pybaseline/dev", "default user agent")
}

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "pybaseline/test" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("archive-bytes"))
	}))
	defer server.Close()

	client := New(Config{UserAgent: "pybaseline/test"}, logx.Discard())
	var buf bytes.Buffer
	n, err := client.Download(context.Background(), server.URL+"/ruff.tar.gz", &buf)

	testutil.AssertNoError(t, err, "download")
	testutil.AssertEqual(t, n, int64(len("archive-bytes")), "byte count")
	testutil.AssertEqual(t, buf.String(), "archive-bytes", "body")
}

func TestDownload_SingleAttemptOnFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(DefaultConfig(), logx.Discard())
	_, err := client.Download(context.Background(), server.URL, &bytes.Buffer{})

	testutil.AssertTrue(t, errors.Is(err, errors.ErrDownload), "503 maps to ErrDownload")
	testutil.AssertEqual(t, atomic.LoadInt32(&calls), int32(1), "no retries")
}

func TestFetch_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultConfig(), logx.Discard()).Fetch(ctx, server.URL)
	testutil.AssertTrue(t, errors.Is(err, errors.ErrDownload), "canceled request is a download error")
}

func TestIsGitHub(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://github.com/astral-sh/ruff/releases/download/0.9.6/ruff.tar.gz", true},
		{"https://objects.githubusercontent.com/x", true},
		{"https://api.github.com/repos", true},
		{"https://example.com/github.com", false},
	}

	for _, tt := range tests {
		u, _ := url.Parse(tt.raw)
		testutil.AssertEqual(t, isGitHub(u), tt.want, tt.raw)
	}
}

func TestCheckStatus(t *testing.T) {
	testutil.AssertNoError(t, CheckStatus(&http.Response{StatusCode: 200}), "200")
	testutil.AssertTrue(t, errors.Is(CheckStatus(&http.Response{StatusCode: 404}), errors.ErrDownload), "404")
	testutil.AssertError(t, CheckStatus(nil), "nil response")
}
