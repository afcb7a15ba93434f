package fmc

import (
	"math/rand"
	"testing"
)

func TestClonerTiesAreStable(t *testing.T) {
	c := NewCloner(0, rand.New(rand.NewSource(1)))
	vr := []float64{0.5, 0.5, 0.5}
	alive := []bool{true, true, true}

	dst, src := c.Decide(vr, alive, []int{1, 2, 0}, -1)
	if len(dst) != 0 || len(src) != 0 {
		t.Errorf("equal virtual rewards produced clones: dst=%v src=%v", dst, src)
	}
}

func TestClonerCertainClone(t *testing.T) {
	c := NewCloner(0, rand.New(rand.NewSource(1)))
	// p[0] = (1 - 0) / 1 = 1: walker 0 must clone walker 1 every time
	vr := []float64{0, 1}
	alive := []bool{true, true}

	for trial := 0; trial < 20; trial++ {
		dst, src := c.Decide(vr, alive, []int{1, 0}, 1)
		if len(dst) != 1 || dst[0] != 0 || src[0] != 1 {
			t.Fatalf("trial %v: dst=%v src=%v, want walker 0 cloning walker 1", trial, dst, src)
		}
	}
}

func TestClonerProtectsBest(t *testing.T) {
	c := NewCloner(0, rand.New(rand.NewSource(3)))
	// walker 0 would always clone, but it holds the best reward
	vr := []float64{0, 1}
	alive := []bool{true, true}

	dst, _ := c.Decide(vr, alive, []int{1, 0}, 0)
	for _, i := range dst {
		if i == 0 {
			t.Errorf("protected walker selected as clone destination")
		}
	}
}

func TestClonerDeadRespawn(t *testing.T) {
	c := NewCloner(0, rand.New(rand.NewSource(5)))
	vr := []float64{0.5, 0, 0, 0.5}
	alive := []bool{true, false, false, true}
	// walker 1's companion is dead too, forcing a uniform draw of a living
	// walker; walker 2's companion is alive and is used directly
	companions := []int{3, 2, 0, 0}

	for trial := 0; trial < 20; trial++ {
		dst, src := c.Decide(vr, alive, companions, -1)
		respawned := map[int]int{}
		for k, i := range dst {
			respawned[i] = src[k]
		}
		for _, i := range []int{1, 2} {
			j, ok := respawned[i]
			if !ok {
				t.Fatalf("trial %v: dead walker %v not cloned", trial, i)
			}
			if !alive[j] {
				t.Fatalf("trial %v: dead walker %v cloned dead walker %v", trial, i, j)
			}
		}
	}
}

func TestClonerAllDead(t *testing.T) {
	c := NewCloner(0, rand.New(rand.NewSource(7)))
	vr := []float64{0, 0}
	alive := []bool{false, false}

	dst, src := c.Decide(vr, alive, []int{1, 0}, -1)
	if len(dst) != 0 || len(src) != 0 {
		t.Errorf("all-dead population produced clones: dst=%v src=%v", dst, src)
	}
}

func TestClonerSingleWalker(t *testing.T) {
	c := NewCloner(0, rand.New(rand.NewSource(9)))
	dst, src := c.Decide([]float64{1}, []bool{true}, []int{0}, 0)
	if len(dst) != 0 || len(src) != 0 {
		t.Errorf("single-walker population produced clones: dst=%v src=%v", dst, src)
	}
}

// A losing or tying walker never clones, so the walker holding the maximum
// virtual reward is never a destination and the maximum survives the step.
func TestClonerMaxSurvives(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	c := NewCloner(0, rng)
	comps := NewCompanions(rand.New(rand.NewSource(12)))

	n := 20
	vr := make([]float64, n)
	alive := make([]bool, n)
	companions := make([]int, n)
	for trial := 0; trial < 100; trial++ {
		maxi := 0
		for i := range vr {
			vr[i] = rng.Float64()
			alive[i] = true
			if vr[i] > vr[maxi] {
				maxi = i
			}
		}
		comps.Sample(companions)

		dst, _ := c.Decide(vr, alive, companions, -1)
		for _, i := range dst {
			if i == maxi {
				t.Fatalf("trial %v: max virtual reward walker %v was overwritten", trial, maxi)
			}
		}
	}
}
