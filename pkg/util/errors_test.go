package util

import (
	"errors"
	"strings"
	"testing"
)

func TestFetchError(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewFetchError("http://constellation:8080/snapshot", inner)

	msg := err.Error()
	if !strings.Contains(msg, "http://constellation:8080/snapshot") {
		t.Errorf("Error message should contain URL: %s", msg)
	}
	if !strings.Contains(msg, "connection refused") {
		t.Errorf("Error message should contain wrapped error: %s", msg)
	}
	if !errors.Is(err, ErrFetchTransient) {
		t.Error("FetchError should unwrap to ErrFetchTransient")
	}
}

func TestSchemaError(t *testing.T) {
	err := NewSchemaError("sat[3].id == 7, expected 3")

	msg := err.Error()
	if !strings.Contains(msg, "sat[3].id == 7, expected 3") {
		t.Errorf("Error message should contain detail: %s", msg)
	}
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Error("SchemaError should unwrap to ErrSchemaInvalid")
	}
}

func TestLinkOpError(t *testing.T) {
	inner := errors.New("exit status 2")
	err := NewLinkOpError("add_inter", "sat-0012", "gs-0003", inner)

	msg := err.Error()
	if !strings.Contains(msg, "add_inter") {
		t.Errorf("Error message should contain op: %s", msg)
	}
	if !strings.Contains(msg, "sat-0012") || !strings.Contains(msg, "gs-0003") {
		t.Errorf("Error message should contain endpoints: %s", msg)
	}
	if !errors.Is(err, ErrLinkOpFailed) {
		t.Error("LinkOpError should unwrap to ErrLinkOpFailed")
	}
}

func TestSpawnError(t *testing.T) {
	inner := errors.New("no space left on device")
	err := NewSpawnError("sat-0099", inner)

	msg := err.Error()
	if !strings.Contains(msg, "sat-0099") {
		t.Errorf("Error message should contain node name: %s", msg)
	}
	if !strings.Contains(msg, "no space left on device") {
		t.Errorf("Error message should contain wrapped error: %s", msg)
	}
	if !errors.Is(err, ErrContainerSpawnFailed) {
		t.Error("SpawnError should unwrap to ErrContainerSpawnFailed")
	}
}

func TestWorkerError(t *testing.T) {
	inner := errors.New("dial tcp: i/o timeout")
	err := NewWorkerError(4, "host4.lan", inner)

	msg := err.Error()
	if !strings.Contains(msg, "4") {
		t.Errorf("Error message should contain machine id: %s", msg)
	}
	if !strings.Contains(msg, "host4.lan") {
		t.Errorf("Error message should contain host: %s", msg)
	}
	if !errors.Is(err, ErrWorkerUnreachable) {
		t.Error("WorkerError should unwrap to ErrWorkerUnreachable")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrFetchTransient,
		ErrSchemaInvalid,
		ErrLinkOpFailed,
		ErrContainerSpawnFailed,
		ErrWorkerUnreachable,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v == %v", err1, err2)
			}
		}
	}
}

func TestErrorsIsWrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"FetchError", NewFetchError("u", errors.New("x")), ErrFetchTransient},
		{"SchemaError", NewSchemaError("d"), ErrSchemaInvalid},
		{"LinkOpError", NewLinkOpError("del", "a", "b", errors.New("x")), ErrLinkOpFailed},
		{"SpawnError", NewSpawnError("n", errors.New("x")), ErrContainerSpawnFailed},
		{"WorkerError", NewWorkerError(1, "h", errors.New("x")), ErrWorkerUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%s should wrap %v", tt.name, tt.sentinel)
			}
		})
	}
}
