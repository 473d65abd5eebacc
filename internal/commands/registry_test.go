package commands_test

import (
	"errors"
	"testing"

	"taskflow/internal/commands"
)

func TestRegistry_FindByNameAndAlias(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.RmCmd{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, name := range []string{"rm", "delete", "RM"} {
		cmd, ok := r.Find(name)
		if !ok || cmd.Name() != "rm" {
			t.Errorf("Find(%q) = %v, %v", name, cmd, ok)
		}
	}
	if _, ok := r.Find("remove"); ok {
		t.Error("unexpected match for unknown name")
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.AddCmd{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := r.Register(&commands.AddCmd{})
	if !errors.Is(err, commands.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if len(r.All()) != 1 {
		t.Errorf("failed registration must not be kept, got %d commands", len(r.All()))
	}
}

func TestDefaultRegistry_Sorted(t *testing.T) {
	all := commands.DefaultRegistry.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].Name() >= all[i].Name() {
			t.Errorf("not sorted: %s before %s", all[i-1].Name(), all[i].Name())
		}
	}
	for _, name := range []string{"list", "ls", "add", "create", "done", "undo", "rm", "show", "edit", "stats",
		"login", "signup", "logout", "whoami", "profile", "passwd", "ui", "help", "version"} {
		if _, ok := commands.DefaultRegistry.Find(name); !ok {
			t.Errorf("command %q not registered", name)
		}
	}
}
