package fmc

import "math/rand"

// DefaultEpsilon guards the clone-probability division when the candidate's
// virtual reward is zero.
const DefaultEpsilon = 1e-8

// Cloner decides which walkers are destroyed and replaced by copies of
// better positioned ones.  A walker clones its companion with probability
// proportional to how much larger the companion's virtual reward is:
//
//	p[i] = (vr[j] - vr[i]) / max(vr[j], eps)
//
// clamped to [0,1].  Ties and losses give probability zero, so equal-value
// walkers are stable.  The clone candidate is the same companion used for
// the virtual-reward computation.
type Cloner struct {
	Epsilon float64
	rng     *rand.Rand
}

func NewCloner(epsilon float64, rng *rand.Rand) *Cloner {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Cloner{Epsilon: epsilon, rng: rng}
}

// Decide returns the clone batch for this step as paired destination and
// source index lists.  keep is the index of the walker holding the run's
// best cumulative reward; it is never selected as a destination (pass -1 to
// protect nobody).
//
// Dead walkers clone unconditionally so the active population never shrinks:
// if their companion is dead too, a living walker is drawn uniformly.  When
// no living walker exists, or the population has a single walker, no clones
// are produced.
func (c *Cloner) Decide(vr []float64, alive []bool, companions []int, keep int) (dst, src []int) {
	n := len(vr)
	if n < 2 {
		return nil, nil
	}

	living := make([]int, 0, n)
	for i, a := range alive {
		if a {
			living = append(living, i)
		}
	}
	if len(living) == 0 {
		return nil, nil
	}

	for i := 0; i < n; i++ {
		if i == keep {
			continue
		}
		j := companions[i]

		if !alive[i] {
			if !alive[j] {
				j = living[c.rng.Intn(len(living))]
			}
			dst = append(dst, i)
			src = append(src, j)
			continue
		}

		if j == i {
			continue
		}
		p := (vr[j] - vr[i]) / max(vr[j], c.Epsilon)
		if p <= 0 {
			continue
		}
		if p > 1 {
			p = 1
		}
		if c.rng.Float64() < p {
			dst = append(dst, i)
			src = append(src, j)
		}
	}
	return dst, src
}
