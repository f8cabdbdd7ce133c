package models

import (
	"testing"

	"github.com/google/uuid"
)

type fakeModel struct {
	Base
}

func TestBaseSatisfiesModel(t *testing.T) {
	var m Model = &fakeModel{Base: NewBase("sample")}

	if m.ModuleID() != "sample" {
		t.Errorf("expected module id sample, got %q", m.ModuleID())
	}
	if m.LoadBackend() != (BackendTag{}) {
		t.Errorf("expected zero backend tag, got %+v", m.LoadBackend())
	}

	m.SetLoadBackend(BackendTag{Kind: "LOCAL"})
	if m.LoadBackend().Kind != "LOCAL" {
		t.Errorf("expected LOCAL, got %q", m.LoadBackend().Kind)
	}

	id, ok := m.(Identified)
	if !ok {
		t.Fatal("expected Base to provide LoadID")
	}
	if _, err := uuid.Parse(id.LoadID()); err != nil {
		t.Errorf("expected uuid load id, got %q: %v", id.LoadID(), err)
	}
}

func TestLoadIDsAreUnique(t *testing.T) {
	a := NewBase("sample")
	b := NewBase("sample")
	if a.LoadID() == b.LoadID() {
		t.Errorf("expected distinct load ids, both %q", a.LoadID())
	}
	if a.LoadedAt().IsZero() {
		t.Error("expected LoadedAt to be set")
	}
}

func TestBackendTagString(t *testing.T) {
	tests := []struct {
		tag  BackendTag
		want string
	}{
		{BackendTag{Kind: "LOCAL"}, "LOCAL"},
		{BackendTag{Kind: "LOCAL", Name: "LOCAL"}, "LOCAL"},
		{BackendTag{Kind: "CATALOG", Name: "primary"}, "CATALOG/primary"},
	}
	for _, tt := range tests {
		if got := tt.tag.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
