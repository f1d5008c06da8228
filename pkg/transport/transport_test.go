package transport

import (
	"os"
	"testing"
)

func TestAuthMethod_Password(t *testing.T) {
	auth, err := authMethod("secret", "")
	if err != nil {
		t.Fatalf("authMethod: %v", err)
	}
	if auth == nil {
		t.Error("expected non-nil password auth method")
	}
}

func TestAuthMethod_MissingKeyFile(t *testing.T) {
	if _, err := authMethod("", "/nonexistent/path/to/key"); err == nil {
		t.Error("expected error for missing key file")
	}
}

func TestAuthMethod_InvalidKeyContents(t *testing.T) {
	path := t.TempDir() + "/key"
	if err := os.WriteFile(path, []byte("not a key"), 0o600); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	if _, err := authMethod("", path); err == nil {
		t.Error("expected error for unparseable key contents")
	}
}
