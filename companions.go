package fmc

import "math/rand"

// Companions pairs each walker with another walker drawn uniformly at
// random.  The draws are independent, so one walker may serve as companion
// to several others; the only guarantee is no self-pairing when the
// population has more than one walker.
//
// The rng is supplied explicitly so runs are reproducible under a seed.
type Companions struct {
	rng *rand.Rand
}

func NewCompanions(rng *rand.Rand) *Companions {
	return &Companions{rng: rng}
}

// Sample fills dst[i] with the companion index for walker i.  With a single
// walker the only possible companion is the walker itself.
func (c *Companions) Sample(dst []int) {
	n := len(dst)
	if n == 1 {
		dst[0] = 0
		return
	}
	for i := range dst {
		j := c.rng.Intn(n - 1)
		if j >= i {
			j++
		}
		dst[i] = j
	}
}
