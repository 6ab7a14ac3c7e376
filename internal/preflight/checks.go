package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"vidresolve/internal/config"
	"vidresolve/internal/resolvecache"
)

const checkTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDirectory is CheckDirectoryAccess for the artifact directory. A
// missing directory is advisory: sidecar writes wait until it appears.
func CheckOutputDirectory(path string) Result {
	const name = "Output directory"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("%s (missing; sidecars deferred until it exists)", path)}
	}
	return CheckDirectoryAccess(name, path)
}

// CheckCache pings backends that support it. In-process backends always pass.
func CheckCache(ctx context.Context, backend string, cache resolvecache.Cache) Result {
	const name = "Cache"
	switch backend {
	case config.CacheBackendOff:
		return Result{Name: name, Passed: true, Detail: "disabled"}
	case config.CacheBackendMemory, "":
		return Result{Name: name, Passed: true, Detail: "in-process memory"}
	}
	pinger, ok := cache.(resolvecache.Pinger)
	if !ok {
		return Result{Name: name, Detail: fmt.Sprintf("%s backend not initialised", backend)}
	}
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := pinger.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s unreachable (%s)", backend, summarizeNetError(err))}
	}
	return Result{Name: name, Passed: true, Detail: backend + " reachable"}
}

// CheckEndpoint verifies the host answers HTTP. Any status below 500 counts
// as reachable: the player endpoint rejects a bare GET.
func CheckEndpoint(ctx context.Context, name, endpoint string, client *http.Client) Result {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if client == nil {
		client = &http.Client{Timeout: checkTimeout}
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("bad url (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Result{Name: name, Detail: fmt.Sprintf("server error (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%d)", resp.StatusCode)}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	return err.Error()
}
