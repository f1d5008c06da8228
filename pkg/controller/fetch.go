package controller

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/starmesh-systems/starmesh/pkg/topo"
	"github.com/starmesh-systems/starmesh/pkg/util"
)

// snapshotHTTPClient disables the transport's own transparent gzip
// negotiation: the constellation service's body is gzipped JSON as a content
// format, not an HTTP-level Content-Encoding, so this code does its own
// gzip.NewReader over the raw bytes.
var snapshotHTTPClient = &http.Client{Transport: &http.Transport{DisableCompression: true}}

// FetchSnapshot pulls and validates one constellation snapshot for tick t.
// A non-200 response or a transport error is wrapped in FetchError: the
// caller skips this tick and preserves last_links. A schema violation is
// wrapped in SchemaError and is unrecoverable.
func FetchSnapshot(ctx context.Context, apiURL, constellation string, t time.Time) (*topo.Snapshot, error) {
	u, err := buildSnapshotURL(apiURL, constellation, t)
	if err != nil {
		return nil, util.NewFetchError(apiURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, util.NewFetchError(u, err)
	}

	resp, err := snapshotHTTPClient.Do(req)
	if err != nil {
		return nil, util.NewFetchError(u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, util.NewFetchError(u, fmt.Errorf("status %d", resp.StatusCode))
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, util.NewFetchError(u, fmt.Errorf("ungzip response: %w", err))
	}
	defer gz.Close()

	body, err := io.ReadAll(gz)
	if err != nil {
		return nil, util.NewFetchError(u, fmt.Errorf("read response: %w", err))
	}

	var snap topo.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, util.NewSchemaError(fmt.Sprintf("invalid JSON: %v", err))
	}
	if err := snap.Validate(); err != nil {
		return nil, util.NewSchemaError(err.Error())
	}
	return &snap, nil
}

func buildSnapshotURL(apiURL, constellation string, t time.Time) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	q := u.Query()
	q.Set("startTime", t.UTC().Format(time.RFC3339))
	q.Set("constellation", constellation)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
