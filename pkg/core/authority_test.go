package core

import (
	"errors"
	"testing"
)

func TestAuthorityRegistryAddRemoveProgram(t *testing.T) {
	admin := testOwner()
	r, err := NewAuthorityRegistry(admin, 255, nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	program := testRecipient()

	if r.IsAuthorized(program) {
		t.Fatalf("program should not be authorized yet")
	}
	if err := r.AddProgram(program); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !r.IsAuthorized(program) {
		t.Fatalf("program should be authorized")
	}
	if err := r.AddProgram(program); err == nil {
		t.Fatalf("expected ProgramAlreadyAuthorized on duplicate add")
	}
	if err := r.RemoveProgram(program); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if r.IsAuthorized(program) {
		t.Fatalf("program should no longer be authorized")
	}
}

func TestAuthorityRegistryCap(t *testing.T) {
	r, err := NewAuthorityRegistry(testOwner(), 255, nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	for i := 0; i < MaxAuthorizedProgram; i++ {
		var p PubKey
		p[0] = byte(i + 1)
		if err := r.AddProgram(p); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	var overflow PubKey
	overflow[0] = 0xFF
	if err := r.AddProgram(overflow); err == nil {
		t.Fatalf("expected MaxAuthorizedProgramsReached")
	}
}

func TestNewAuthorityRegistrySeedsInitialPrograms(t *testing.T) {
	var p1, p2 PubKey
	p1[0], p2[0] = 1, 2
	r, err := NewAuthorityRegistry(testOwner(), 255, []PubKey{p1, p2})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if !r.IsAuthorized(p1) || !r.IsAuthorized(p2) {
		t.Fatalf("initial program list not seeded")
	}
}

func TestNewAuthorityRegistryRejectsOversizedInitialList(t *testing.T) {
	programs := make([]PubKey, MaxAuthorizedProgram+1)
	for i := range programs {
		programs[i][0] = byte(i + 1)
	}
	if _, err := NewAuthorityRegistry(testOwner(), 255, programs); !errors.Is(err, ErrMaxAuthorizedProgramsReached) {
		t.Fatalf("expected MaxAuthorizedProgramsReached, got %v", err)
	}
}

func TestNewAuthorityRegistryRejectsDuplicateInitialProgram(t *testing.T) {
	var p PubKey
	p[0] = 1
	if _, err := NewAuthorityRegistry(testOwner(), 255, []PubKey{p, p}); !errors.Is(err, ErrProgramAlreadyAuthorized) {
		t.Fatalf("expected ProgramAlreadyAuthorized, got %v", err)
	}
}
