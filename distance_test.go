package fmc

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestEuclideanDist(t *testing.T) {
	d := EuclideanDist{}
	a := []float64{0, 0}
	b := []float64{3, 4}

	if got := d.Distance(a, a); got != 0 {
		t.Errorf("d(a,a) = %v, want 0", got)
	}
	if got := d.Distance(a, b); got != 5 {
		t.Errorf("d(a,b) = %v, want 5", got)
	}
	if d.Distance(a, b) != d.Distance(b, a) {
		t.Errorf("distance is not symmetric")
	}
}

func TestHammingDist(t *testing.T) {
	d := HammingDist{Tol: 1e-9}
	a := []float64{1, 0, 1, 1}
	b := []float64{1, 1, 0, 1}

	if got := d.Distance(a, a); got != 0 {
		t.Errorf("d(a,a) = %v, want 0", got)
	}
	if got := d.Distance(a, b); got != 2 {
		t.Errorf("d(a,b) = %v, want 2", got)
	}
	if d.Distance(a, b) != d.Distance(b, a) {
		t.Errorf("distance is not symmetric")
	}
}

func TestDistanceBatch(t *testing.T) {
	obs := mat.NewDense(3, 1, []float64{0, 1, 5})
	dst := make([]float64, 3)
	DistanceBatch(EuclideanDist{}, obs, []int{1, 2, 0}, dst)

	want := []float64{1, 4, 5}
	for i := range want {
		if math.Abs(dst[i]-want[i]) > 1e-15 {
			t.Errorf("pair %v: distance = %v, want %v", i, dst[i], want[i])
		}
	}
}
