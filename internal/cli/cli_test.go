package cli

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	want := map[string]bool{
		"edit":       false,
		"arrange":    false,
		"snapshot":   false,
		"serve":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.SetLogLevel(log.DebugLevel)
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestNewStoreUnknownBackend(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.config.Store.Backend = "carrier-pigeon"

	if _, err := c.newStore(context.Background()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewStoreFileBackend(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.config.Store.Backend = StoreBackendFile
	c.config.Store.Dir = t.TempDir()

	st, err := c.newStore(context.Background())
	if err != nil {
		t.Fatalf("newStore: %v", err)
	}
	defer st.Close()

	keys, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("fresh store has %d keys", len(keys))
	}
}
