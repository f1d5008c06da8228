package controller

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func gzipBody(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

const sampleSnapshotJSON = `{
  "sat": [{"id":0,"lat":0,"lon":0,"alt":550}],
  "ground": [{"id":0,"lat":1,"lon":1,"alt":0}],
  "link_ISL": [],
  "link_GSL_Up": []
}`

func TestFetchSnapshot_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("constellation") != "demo" {
			t.Errorf("missing constellation query param, got %q", r.URL.RawQuery)
		}
		w.Write(gzipBody(t, sampleSnapshotJSON))
	}))
	defer srv.Close()

	snap, err := FetchSnapshot(context.Background(), srv.URL, "demo", time.Now())
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}
	if len(snap.Sat) != 1 || len(snap.Ground) != 1 {
		t.Errorf("unexpected snapshot shape: %+v", snap)
	}
}

func TestFetchSnapshot_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := FetchSnapshot(context.Background(), srv.URL, "demo", time.Now()); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestFetchSnapshot_SchemaViolation(t *testing.T) {
	bad := `{"sat":[{"id":1,"lat":0,"lon":0,"alt":0}],"ground":[],"link_ISL":[],"link_GSL_Up":[]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(gzipBody(t, bad))
	}))
	defer srv.Close()

	if _, err := FetchSnapshot(context.Background(), srv.URL, "demo", time.Now()); err == nil {
		t.Error("expected schema violation error")
	}
}

func TestBuildSnapshotURL(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := buildSnapshotURL("https://api.example.com/snapshot", "demo", at)
	if err != nil {
		t.Fatalf("buildSnapshotURL: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if u.Query().Get("constellation") != "demo" {
		t.Errorf("constellation query missing: %s", got)
	}
	if u.Query().Get("startTime") == "" {
		t.Errorf("startTime query missing: %s", got)
	}
}
