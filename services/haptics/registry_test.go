// services/haptics/registry_test.go
package haptics

import "testing"

type nopBuilder struct{}

func (nopBuilder) Build(BuildInput) (BuildOutput, error) { return BuildOutput{}, nil }

func TestRegisterBuilder_DuplicatePanics(t *testing.T) {
	RegisterBuilder("registry-test-type", nopBuilder{})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	RegisterBuilder("registry-test-type", nopBuilder{})
}

func TestRegisterBuilder_EmptyTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty type")
		}
	}()
	RegisterBuilder("", nopBuilder{})
}
