package sports

import "testing"

func TestFootballRegistered(t *testing.T) {
	def, ok := Lookup(Football)
	if !ok {
		t.Fatal("football should be registered")
	}
	if !def.ValidPosition("striker") {
		t.Fatal("striker should be a valid football position")
	}
	if def.ValidPosition("pitcher") {
		t.Fatal("pitcher should not be a valid football position")
	}
	if !def.ValidFoot("right") || !def.ValidFoot("left") {
		t.Fatal("right and left should be valid feet")
	}
	if def.ValidExperience("nhl") {
		t.Fatal("nhl should not be a football experience level")
	}
}

func TestAllIsSorted(t *testing.T) {
	all := All()
	if len(all) == 0 {
		t.Fatal("expected at least one registered sport")
	}
	for i := 1; i < len(all); i++ {
		if all[i-1] >= all[i] {
			t.Fatalf("All() not sorted: %v", all)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	Register(Definition{Sport: Football})
}
