package facade

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starmesh-systems/starmesh/pkg/topo"
	"github.com/starmesh-systems/starmesh/pkg/transport"
)

type fakeTransport struct {
	out     string
	err     error
	lastCmd string
	closed  bool
}

func (f *fakeTransport) Exec(ctx context.Context, command string) (string, error) {
	f.lastCmd = command
	return f.out, f.err
}
func (f *fakeTransport) PushFile(ctx context.Context, remotePath string, content []byte) error {
	return nil
}
func (f *fakeTransport) Close() error { f.closed = true; return nil }

func sampleFacade(ft *fakeTransport) *Facade {
	assignment := &topo.Assignment{
		NodeName: []string{"SAT0", "GS0"},
		NodeMID:  []int{0, 1},
		IP:       []string{"10.0.0.1", "10.0.0.2"},
	}
	return &Facade{
		Assignment: assignment,
		RemoteDir:  "/var/lib/starmesh",
		Dial: func(addr string) (transport.Transport, error) {
			return ft, nil
		},
	}
}

func TestHandleExecute_Success(t *testing.T) {
	ft := &fakeTransport{out: "line one\nline two\n"}
	f := sampleFacade(ft)

	req := httptest.NewRequest(http.MethodPost, "/execute", bytes.NewBufferString(`{"node":"SAT0","command":"ip addr"}`))
	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "line one\nline two\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if ft.lastCmd == "" {
		t.Error("expected a remote command to be built")
	}
	if !ft.closed {
		t.Error("expected transport to be closed after the request")
	}
}

func TestHandleExecute_UnknownNode(t *testing.T) {
	ft := &fakeTransport{}
	f := sampleFacade(ft)

	req := httptest.NewRequest(http.MethodPost, "/execute", bytes.NewBufferString(`{"node":"SAT9","command":"ip addr"}`))
	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleExecute_MissingFields(t *testing.T) {
	ft := &fakeTransport{}
	f := sampleFacade(ft)

	req := httptest.NewRequest(http.MethodPost, "/execute", bytes.NewBufferString(`{"node":"SAT0"}`))
	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleExecute_WrongMethod(t *testing.T) {
	ft := &fakeTransport{}
	f := sampleFacade(ft)

	req := httptest.NewRequest(http.MethodGet, "/execute", nil)
	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
