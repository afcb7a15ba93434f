package bench_test

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/fractalmc/fmc/bench"
	"github.com/fractalmc/fmc/swarm"
)

const (
	maxsteps = 2000
	nwalkers = 40
)

func buildSwarm(t *testing.T, fn bench.Func, seed int64) *swarm.Swarm {
	t.Helper()
	low, up := fn.Bounds()
	env := bench.NewFuncEnv(fn)
	model := &bench.GaussianModel{
		Sigma: (up[0] - low[0]) / 20,
		Rng:   rand.New(rand.NewSource(seed)),
	}

	s, err := swarm.New(env, model, nwalkers,
		swarm.Seed(seed),
		swarm.MaxSteps(maxsteps),
		swarm.AccumulateRewards(false),
	)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSimple(t *testing.T) {
	for _, fn := range bench.AllFuncs {
		optimum := fn.Optima()[0].Reward

		s := buildSwarm(t, fn, 7)
		best, nsteps, err := bench.Benchmark(s, fn, .01)
		if err != nil {
			t.Errorf("[FAIL:%v] %v", fn.Name(), err)
		} else if nsteps < maxsteps {
			t.Logf("[pass:%v] %v steps: optimum is %v, got %v", fn.Name(), nsteps, optimum, best.Reward)
		} else {
			t.Logf("[INFO:%v] budget spent: optimum is %v, got %v", fn.Name(), optimum, best.Reward)
		}
	}
}

// The best state reported for a function run must be inside the domain and
// score what the function says it scores.
func TestBenchmarkBestConsistent(t *testing.T) {
	fn := bench.Ackley{}
	s := buildSwarm(t, fn, 3)
	best, _, err := bench.Benchmark(s, fn, .01)
	if err != nil {
		t.Fatal(err)
	}

	if !bench.InsideBounds(best.Pos(), fn) {
		t.Errorf("best position %v escaped the domain", best.Pos())
	}
	if got := -fn.Eval(best.Pos()); math.Abs(got-best.Reward) > 1e-9 {
		t.Errorf("best reward %v does not match re-evaluation %v", best.Reward, got)
	}
}

func TestFuncEnvStaysInBounds(t *testing.T) {
	fn := bench.Ackley{}
	env := bench.NewFuncEnv(fn)

	state, _, err := env.Reset()
	if err != nil {
		t.Fatal(err)
	}

	n := 10
	states := mat.NewDense(n, len(state), nil)
	for i := 0; i < n; i++ {
		states.SetRow(i, state)
	}
	// huge actions that would leave the domain without projection
	actions := mat.NewDense(n, len(state), nil)
	for i := 0; i < n; i++ {
		actions.Set(i, 0, 1e6)
		actions.Set(i, 1, -1e6)
	}

	res, err := env.Step(states, actions)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if !bench.InsideBounds(res.States.RawRowView(i), fn) {
			t.Errorf("walker %v escaped the domain: %v", i, res.States.RawRowView(i))
		}
		if math.IsInf(res.Rewards[i], 0) || math.IsNaN(res.Rewards[i]) {
			t.Errorf("walker %v got non-finite reward %v", i, res.Rewards[i])
		}
	}
}

func TestLineEnv(t *testing.T) {
	env := bench.LineEnv{Start: 10}
	state, obs, err := env.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if state[0] != 10 || obs[0] != 10 {
		t.Errorf("reset state = %v, obs = %v, want 10", state, obs)
	}

	states := mat.NewDense(2, 1, []float64{10, -3})
	actions := mat.NewDense(2, 1, []float64{-1, 1})
	res, err := env.Step(states, actions)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.States.At(0, 0); got != 9 {
		t.Errorf("next state = %v, want 9", got)
	}
	if got := res.Rewards[0]; got != -9 {
		t.Errorf("reward = %v, want -9", got)
	}
	if got := res.Rewards[1]; got != -2 {
		t.Errorf("reward = %v, want -2", got)
	}
	for i, term := range res.Terminal {
		if term {
			t.Errorf("walker %v terminal in LineEnv", i)
		}
	}
}
