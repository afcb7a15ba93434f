package fmc

import "math"

// VirtualReward scores each walker by combining its cumulative reward with
// its distance to a randomly paired companion.  Both quantities are min/max
// normalized over the alive part of the population, then weighted by
// exponents:
//
//	vr[i] = normreward[i]^RewardScale * normdist[i]^DistScale
//
// RewardScale weights exploitation, DistScale weights exploration.  Dead
// walkers always score zero so they are never chosen as clone sources.
type VirtualReward struct {
	RewardScale float64
	DistScale   float64
	Dist        Distancer

	dists []float64
	normr []float64
}

// Compute fills dst[i] with walker i's virtual reward using the given
// companion pairing.  Dead walkers may still carry a companion; their
// distance is computed but their score is forced to zero.
func (v *VirtualReward) Compute(b *Buffer, companions []int, dst []float64) {
	n := b.Len()
	if len(v.dists) != n {
		v.dists = make([]float64, n)
		v.normr = make([]float64, n)
	}
	d := v.Dist
	if d == nil {
		d = EuclideanDist{}
	}

	DistanceBatch(d, b.Obs(), companions, v.dists)

	alive := b.AliveFlags()
	normalize(b.Rewards(), alive, v.normr)
	normalize(v.dists, alive, v.dists)

	for i := 0; i < n; i++ {
		if !alive[i] {
			dst[i] = 0
			continue
		}
		dst[i] = math.Pow(v.normr[i], v.RewardScale) * math.Pow(v.dists[i], v.DistScale)
	}
}

// normalize rescales the alive entries of vals to [0,1] using the alive
// min/max.  A zero range means the population is indistinguishable on this
// score, so every alive entry gets 1 rather than dividing by zero.  Dead
// entries are zeroed.  dst may alias vals.
func normalize(vals []float64, alive []bool, dst []float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, a := range alive {
		if !a {
			continue
		}
		lo = math.Min(lo, vals[i])
		hi = math.Max(hi, vals[i])
	}

	for i, a := range alive {
		switch {
		case !a:
			dst[i] = 0
		case hi == lo:
			dst[i] = 1
		default:
			dst[i] = (vals[i] - lo) / (hi - lo)
		}
	}
}
