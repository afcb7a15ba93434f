package fmc

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Buffer is the columnar store backing a swarm: states, observations,
// cumulative rewards and alive flags are parallel arrays indexed by walker.
// It only stores and mutates rows; all selection logic lives elsewhere.
//
// Shape mismatches panic - they are programming errors, not recoverable
// conditions.  Collaborator batches must be validated before they reach the
// buffer.
type Buffer struct {
	// Accumulate controls whether Update sums per-step rewards into the
	// running totals (trajectory search) or overwrites them (stateless
	// function optimization, where only the latest score matters).
	Accumulate bool

	n       int
	states  *mat.Dense
	obs     *mat.Dense
	rewards []float64
	alive   []bool
}

func NewBuffer(n int) *Buffer {
	if n < 1 {
		panic(fmt.Sprintf("fmc: buffer size %v < 1", n))
	}
	return &Buffer{
		Accumulate: true,
		n:          n,
		rewards:    make([]float64, n),
		alive:      make([]bool, n),
	}
}

func (b *Buffer) Len() int { return b.n }

// Reset fills every walker slot with the same starting state and
// observation, zero cumulative reward, alive.  The state and observation
// dimensions are fixed by the first Reset of a run.
func (b *Buffer) Reset(state, obs []float64) {
	b.states = mat.NewDense(b.n, len(state), nil)
	b.obs = mat.NewDense(b.n, len(obs), nil)
	for i := 0; i < b.n; i++ {
		b.states.SetRow(i, state)
		b.obs.SetRow(i, obs)
		b.rewards[i] = 0
		b.alive[i] = true
	}
}

// Update overwrites every row with the environment batch, accumulating
// per-step rewards into the cumulative totals.  The batch must match the
// dimensions fixed by Reset; a narrower matrix would leave stale columns
// behind.
func (b *Buffer) Update(res *StepResult) {
	_, sdim := b.states.Dims()
	_, odim := b.obs.Dims()
	if err := res.Validate(b.n, sdim, odim); err != nil {
		panic(err.Error())
	}
	b.states.Copy(res.States)
	b.obs.Copy(res.Obs)
	for i := 0; i < b.n; i++ {
		if b.Accumulate {
			b.rewards[i] += res.Rewards[i]
		} else {
			b.rewards[i] = res.Rewards[i]
		}
		b.alive[i] = !res.Terminal[i]
	}
}

// CloneBatch copies every field of row src[k] into row dst[k] for all pairs
// at once.  Source rows are snapshotted before any destination is written,
// so a walker that is both a source and a destination in the same batch
// contributes its pre-clone value.
func (b *Buffer) CloneBatch(dst, src []int) {
	if len(dst) != len(src) {
		panic(fmt.Sprintf("fmc: clone batch lengths differ: %v != %v", len(dst), len(src)))
	}
	if len(dst) == 0 {
		return
	}

	_, sdim := b.states.Dims()
	_, odim := b.obs.Dims()
	srcStates := mat.NewDense(len(src), sdim, nil)
	srcObs := mat.NewDense(len(src), odim, nil)
	srcRewards := make([]float64, len(src))
	srcAlive := make([]bool, len(src))
	for k, j := range src {
		srcStates.SetRow(k, b.states.RawRowView(j))
		srcObs.SetRow(k, b.obs.RawRowView(j))
		srcRewards[k] = b.rewards[j]
		srcAlive[k] = b.alive[j]
	}
	for k, i := range dst {
		b.states.SetRow(i, srcStates.RawRowView(k))
		b.obs.SetRow(i, srcObs.RawRowView(k))
		b.rewards[i] = srcRewards[k]
		b.alive[i] = srcAlive[k]
	}
}

// States returns the walker state matrix.  The caller must treat it as
// read-only; it is reused across steps.
func (b *Buffer) States() *mat.Dense { return b.states }

func (b *Buffer) Obs() *mat.Dense { return b.obs }

func (b *Buffer) Reward(i int) float64 { return b.rewards[i] }

func (b *Buffer) Rewards() []float64 { return b.rewards }

func (b *Buffer) Alive(i int) bool { return b.alive[i] }

func (b *Buffer) AliveFlags() []bool { return b.alive }

// NumAlive counts walkers whose trajectory has not terminated.
func (b *Buffer) NumAlive() int {
	n := 0
	for _, a := range b.alive {
		if a {
			n++
		}
	}
	return n
}

// State returns a copy of walker i's state paired with its cumulative
// reward.
func (b *Buffer) State(i int) Point {
	return NewPoint(b.states.RawRowView(i), b.rewards[i])
}

// Snapshot is a read-only view of a swarm at the end of a step, handed to
// observers and convergence predicates.  The matrices and slices are copies
// and safe to retain.
type Snapshot struct {
	Step           int
	States         *mat.Dense
	Obs            *mat.Dense
	Rewards        []float64
	VirtualRewards []float64
	Alive          []bool
	Best           Point
}

// Snap copies the buffer contents into a Snapshot.
func (b *Buffer) Snap(step int, vrewards []float64, best Point) *Snapshot {
	return &Snapshot{
		Step:           step,
		States:         mat.DenseCopyOf(b.states),
		Obs:            mat.DenseCopyOf(b.obs),
		Rewards:        append([]float64{}, b.rewards...),
		VirtualRewards: append([]float64{}, vrewards...),
		Alive:          append([]bool{}, b.alive...),
		Best:           best,
	}
}
