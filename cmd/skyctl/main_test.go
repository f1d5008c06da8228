package main

import "testing"

func TestRootCommandWiresEverySubcommand(t *testing.T) {
	want := map[string]bool{"tc": false, "ha": false, "facade": false, "status": false, "version": false}
	for _, c := range rootCmd.Commands() {
		name := c.Name()
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("rootCmd missing subcommand %q", name)
		}
	}
}

func TestTCCommandHasRunSubcommand(t *testing.T) {
	tc := newTCCmd()
	if _, _, err := tc.Find([]string{"run"}); err != nil {
		t.Fatalf("tc run not found: %v", err)
	}
}

func TestFacadeCommandHasServeSubcommand(t *testing.T) {
	f := newFacadeCmd()
	if _, _, err := f.Find([]string{"serve"}); err != nil {
		t.Fatalf("facade serve not found: %v", err)
	}
}
