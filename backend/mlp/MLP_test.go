package mlp

import (
	"path/filepath"
	"testing"

	"github.com/thuthu-c/urnai-tools/backend"
	"gonum.org/v1/gonum/mat"
)

func newTestMLP(t *testing.T) *MLP {
	t.Helper()
	m, err := New(backend.Config{
		StateSize:    3,
		ActionSize:   2,
		BatchSize:    4,
		LearningRate: 0.01,
		HiddenSizes:  []int{8},
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestEvaluateShapes(t *testing.T) {
	m := newTestMLP(t)

	// Batches of size 1 and of other sizes must both work
	for _, rows := range []int{1, 4, 7} {
		out, err := m.Evaluate(mat.NewDense(rows, 3, nil))
		if err != nil {
			t.Fatal(err)
		}
		r, c := out.Dims()
		if r != rows || c != 2 {
			t.Errorf("expected %vx2 output, got %vx%v", rows, r, c)
		}
	}

	if _, err := m.Evaluate(mat.NewDense(1, 5, nil)); err == nil {
		t.Error("expected error for wrong state size")
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	m := newTestMLP(t)
	states := mat.NewDense(1, 3, []float64{0.1, -0.4, 2.0})

	first, err := m.Evaluate(states)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Evaluate(states)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(first, second, 0) {
		t.Errorf("evaluation not deterministic without updates:\n%v\n%v",
			mat.Formatted(first), mat.Formatted(second))
	}
}

func TestUpdateRejectsWrongBatch(t *testing.T) {
	m := newTestMLP(t)
	err := m.Update(mat.NewDense(2, 3, nil), mat.NewDense(2, 2, nil))
	if err == nil {
		t.Error("expected error for batch size differing from construction")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := newTestMLP(t)
	probe := mat.NewDense(1, 3, []float64{1, 2, 3})

	before, err := m.Evaluate(probe)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "mlp.bin")
	if err := m.Save(path); err != nil {
		t.Fatal(err)
	}

	restored := newTestMLP(t)
	if err := restored.Load(path); err != nil {
		t.Fatal(err)
	}

	after, err := restored.Evaluate(probe)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(before, after, 1e-12) {
		t.Errorf("evaluation changed across save/load:\n%v\n%v",
			mat.Formatted(before), mat.Formatted(after))
	}
}

func TestLoadArchitectureMismatch(t *testing.T) {
	m := newTestMLP(t)
	path := filepath.Join(t.TempDir(), "mlp.bin")
	if err := m.Save(path); err != nil {
		t.Fatal(err)
	}

	other, err := New(backend.Config{
		StateSize:    3,
		ActionSize:   2,
		BatchSize:    4,
		LearningRate: 0.01,
		HiddenSizes:  []int{16},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := other.Load(path); err == nil {
		t.Error("expected error loading into a different architecture")
	}
}
