package tools

import (
	"testing"
)

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	registry := NewRegistry()
	for _, tool := range []Tool{
		NewSystemStatsTool(),
		NewMoscowTimeTool(),
		NewSearchNewsTool(nil, 5),
	} {
		if err := registry.Register(tool); err != nil {
			t.Fatalf("Register(%s) failed: %v", tool.GetName(), err)
		}
	}

	if registry.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", registry.Count())
	}

	want := []string{NameSystemStats, NameMoscowTime, NameSearchNews}
	infos := registry.List()
	for i, name := range want {
		if infos[i].Name != name {
			t.Errorf("List()[%d] = %q, want %q", i, infos[i].Name, name)
		}
	}
	names := registry.Names()
	for i, name := range want {
		if names[i] != name {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(NewMoscowTimeTool()); err != nil {
		t.Fatalf("first Register() failed: %v", err)
	}
	if err := registry.Register(NewMoscowTimeTool()); err == nil {
		t.Fatal("expected error on duplicate registration")
	}
}

func TestRegistryGet(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(NewMoscowTimeTool()); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	if _, ok := registry.Get(NameMoscowTime); !ok {
		t.Error("registered tool not found")
	}
	if _, ok := registry.Get("nonexistent"); ok {
		t.Error("unregistered tool reported as found")
	}
}
