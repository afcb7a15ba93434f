// Package swarm drives a Fractal Monte Carlo search: it owns the walker
// buffer and runs the step loop (act, evaluate, score, clone) until the step
// budget runs out, a convergence predicate fires, or every walker dies.
//
// The cloning mechanism is described in:
//
//	Hernandez, S. and Duran, G. "Fractal AI: A fragile theory of
//	intelligence" arXiv:1803.05049
package swarm

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/fractalmc/fmc"
)

// Status is the lifecycle position of a swarm run.
type Status int

const (
	Initialized Status = iota
	Running
	// Converged means the configured convergence predicate held.
	Converged
	// BudgetExhausted means the step counter reached the maximum.
	BudgetExhausted
	// Dead means every walker reached a terminal state.
	Dead
)

func (s Status) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Converged:
		return "converged"
	case BudgetExhausted:
		return "budget-exhausted"
	case Dead:
		return "dead"
	}
	return fmt.Sprintf("status(%v)", int(s))
}

// ErrFinished is returned by Step once a run has left the running states.
var ErrFinished = errors.New("swarm: run already finished")

const (
	// TblWalkers is the name of the sql database table that contains
	// positions, rewards, virtual rewards, and alive flags for every walker
	// at each step.
	TblWalkers = "fmcwalkers"
	// TblBest is the name of the sql database table that contains the best
	// state found so far at each step.
	TblBest = "fmcbest"
)

const DefaultMaxSteps = 1000

type Option func(*Swarm)

// Seed fixes the random source used for companion draws and clone coin
// flips.  Two swarms with the same seed, configuration and collaborators
// produce identical runs.
func Seed(seed int64) Option {
	return func(s *Swarm) {
		s.seed = seed
	}
}

// Scales sets the virtual-reward exponents: reward weights exploitation,
// dist weights exploration.  Both default to 1.
func Scales(reward, dist float64) Option {
	return func(s *Swarm) {
		s.vr.RewardScale = reward
		s.vr.DistScale = dist
	}
}

// Epsilon sets the clone-probability division guard.
func Epsilon(eps float64) Option {
	return func(s *Swarm) {
		s.epsilon = eps
	}
}

func MaxSteps(n int) Option {
	return func(s *Swarm) {
		s.maxSteps = n
	}
}

// Distance swaps the walker dissimilarity measure.  Euclidean distance on
// observations is the default.
func Distance(d fmc.Distancer) Option {
	return func(s *Swarm) {
		s.vr.Dist = d
	}
}

// Converge installs an optional stopping predicate checked after every
// step.  Without one, only the step budget (or total walker death) ends a
// run.
func Converge(c fmc.Converger) Option {
	return func(s *Swarm) {
		s.conv = c
	}
}

// DB sets a database where per-step walker and best-state records are
// written.
func DB(db *sql.DB) Option {
	return func(s *Swarm) {
		s.db = db
	}
}

// Hook installs a per-step observer.  The snapshot passed to it is a copy;
// the search does not depend on what the hook does with it.
func Hook(fn func(*fmc.Snapshot)) Option {
	return func(s *Swarm) {
		s.hook = fn
	}
}

// AccumulateRewards controls whether walker rewards are summed along the
// trajectory (the default) or replaced each step.  Replacement suits
// stateless function optimization where only the latest score ranks a
// walker.
func AccumulateRewards(accum bool) Option {
	return func(s *Swarm) {
		s.buf.Accumulate = accum
	}
}

// Archive keeps the k highest-reward states seen across the run available
// through Archived.
func Archive(k int) Option {
	return func(s *Swarm) {
		s.archive = newArchive(k)
	}
}

type Swarm struct {
	env   fmc.Environment
	model fmc.Model

	n        int
	maxSteps int
	epsilon  float64
	seed     int64

	buf    *fmc.Buffer
	comps  *fmc.Companions
	vr     fmc.VirtualReward
	cloner *fmc.Cloner
	conv   fmc.Converger
	hook   func(*fmc.Snapshot)

	archive *archive
	db      *sql.DB
	dbready bool

	companions []int
	vrewards   []float64
	sdim       int
	odim       int

	count  int
	status Status
	ready  bool
	best   fmc.Point
}

// New validates the configuration and assembles a swarm of n walkers.  No
// collaborator is called until Reset or the first Step.
func New(env fmc.Environment, model fmc.Model, n int, opts ...Option) (*Swarm, error) {
	if env == nil {
		return nil, fmc.Configf("nil environment")
	} else if model == nil {
		return nil, fmc.Configf("nil model")
	} else if n < 1 {
		return nil, fmc.Configf("n_walkers %v < 1", n)
	}

	s := &Swarm{
		env:        env,
		model:      model,
		n:          n,
		maxSteps:   DefaultMaxSteps,
		epsilon:    fmc.DefaultEpsilon,
		seed:       1,
		vr:         fmc.VirtualReward{RewardScale: 1, DistScale: 1},
		buf:        fmc.NewBuffer(n),
		companions: make([]int, n),
		vrewards:   make([]float64, n),
		best:       fmc.NewPoint(nil, math.Inf(-1)),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.vr.RewardScale < 0 || s.vr.DistScale < 0 {
		return nil, fmc.Configf("negative scale exponents (%v, %v)", s.vr.RewardScale, s.vr.DistScale)
	} else if s.epsilon <= 0 {
		return nil, fmc.Configf("epsilon %v <= 0", s.epsilon)
	} else if s.maxSteps < 1 {
		return nil, fmc.Configf("max_steps %v < 1", s.maxSteps)
	}

	return s, nil
}

func (s *Swarm) Status() Status { return s.status }

func (s *Swarm) StepCount() int { return s.count }

// Best returns the highest cumulative reward state observed across all
// walkers and all steps of the run so far.
func (s *Swarm) Best() fmc.Point { return s.best }

// Archived returns the retained top states in descending reward order, or
// nil when no archive was configured.
func (s *Swarm) Archived() []fmc.Point {
	if s.archive == nil {
		return nil
	}
	return s.archive.points()
}

// Reset initializes every walker to the environment's starting state and
// rewinds the step counter.  It is called implicitly by the first Step.
func (s *Swarm) Reset() error {
	state, obs, err := s.env.Reset()
	if err != nil {
		return err
	}
	s.buf.Reset(state, obs)
	// state and observation widths are fixed for the rest of the run
	s.sdim = len(state)
	s.odim = len(obs)

	rng := rand.New(rand.NewSource(s.seed))
	s.comps = fmc.NewCompanions(rng)
	s.cloner = fmc.NewCloner(s.epsilon, rng)

	s.count = 0
	s.status = Initialized
	s.ready = true
	// Nothing observed yet: the starting state seeds best-found with a
	// sentinel reward so the first step always improves on it.
	s.best = fmc.NewPoint(state, math.Inf(-1))
	if s.archive != nil {
		s.archive.reset()
	}
	return nil
}

// Run resets the swarm, steps it until it leaves the running states, and
// returns the best state found.
func (s *Swarm) Run() (best fmc.Point, err error) {
	if err := s.Reset(); err != nil {
		return s.best, err
	}
	for {
		err := s.Step()
		if err == ErrFinished {
			return s.best, nil
		} else if err != nil {
			return s.best, err
		}
	}
}

// Step executes one full iteration: propose actions, advance the
// environment, rescore the population, and apply cloning.  Collaborator
// contract violations are returned immediately.
func (s *Swarm) Step() error {
	if !s.ready {
		if err := s.Reset(); err != nil {
			return err
		}
	}
	if s.status != Initialized && s.status != Running {
		return ErrFinished
	}
	s.status = Running

	actions, err := s.model.Propose(s.buf.States())
	if err != nil {
		return err
	}
	if actions == nil {
		return &fmc.ContractError{Field: "action rows", Want: s.n, Got: 0}
	} else if rows, _ := actions.Dims(); rows != s.n {
		return &fmc.ContractError{Field: "action rows", Want: s.n, Got: rows}
	}

	res, err := s.env.Step(s.buf.States(), actions)
	if err != nil {
		return err
	}
	if err := res.Validate(s.n, s.sdim, s.odim); err != nil {
		return err
	}

	s.buf.Update(res)
	keep := s.updateBest()

	if s.buf.NumAlive() == 0 {
		// The whole swarm hit terminal states: no companion can revive
		// anybody, so the run ends without a cloning phase.
		for i := range s.vrewards {
			s.vrewards[i] = 0
		}
		s.count++
		s.status = Dead
		s.finishStep()
		return nil
	}

	s.comps.Sample(s.companions)
	s.vr.Compute(s.buf, s.companions, s.vrewards)
	dst, src := s.cloner.Decide(s.vrewards, s.buf.AliveFlags(), s.companions, keep)
	s.buf.CloneBatch(dst, src)

	s.count++
	snap := s.finishStep()

	if s.conv != nil && s.conv.Converged(snap) {
		s.status = Converged
	} else if s.count >= s.maxSteps {
		s.status = BudgetExhausted
	}
	return nil
}

// updateBest records any new best state and returns the index of the alive
// walker currently holding the highest cumulative reward, or -1 if none.
// That walker is never overwritten by cloning.
func (s *Swarm) updateBest() (keep int) {
	keep = -1
	kbest := math.Inf(-1)
	for i := 0; i < s.n; i++ {
		if !s.buf.Alive(i) {
			continue
		}
		if r := s.buf.Reward(i); r > kbest {
			kbest = r
			keep = i
		}
	}
	if keep >= 0 && kbest > s.best.Reward {
		s.best = s.buf.State(keep)
		if s.archive != nil {
			s.archive.add(s.best)
		}
	}
	return keep
}

// finishStep produces the step snapshot and feeds the observers.
func (s *Swarm) finishStep() *fmc.Snapshot {
	var snap *fmc.Snapshot
	if s.hook != nil || s.conv != nil {
		snap = s.buf.Snap(s.count, s.vrewards, s.best)
	}
	if s.hook != nil {
		s.hook(snap)
	}
	s.updateDb()
	return snap
}

func (s *Swarm) initdb() {
	if s.db == nil || s.dbready {
		return
	}

	q := "CREATE TABLE IF NOT EXISTS " + TblWalkers + " (walker INTEGER, step INTEGER, reward REAL, vreward REAL, alive INTEGER"
	q += s.xdbsql("define")
	q += ");"
	_, err := s.db.Exec(q)
	panicif(err)

	q = "CREATE TABLE IF NOT EXISTS " + TblBest + " (step INTEGER, reward REAL"
	q += s.xdbsql("define")
	q += ");"
	_, err = s.db.Exec(q)
	panicif(err)

	s.dbready = true
}

func (s *Swarm) xdbsql(op string) string {
	q := ""
	_, dims := s.buf.States().Dims()
	for i := 0; i < dims; i++ {
		if op == "?" {
			q += ",?"
		} else if op == "define" {
			q += fmt.Sprintf(",x%v REAL", i)
		} else if op == "x" {
			q += fmt.Sprintf(",x%v", i)
		} else {
			panic("invalid db op " + op)
		}
	}
	return q
}

func pos2iface(pos []float64) []interface{} {
	iface := []interface{}{}
	for _, v := range pos {
		iface = append(iface, v)
	}
	return iface
}

func (s *Swarm) updateDb() {
	if s.db == nil {
		return
	}
	s.initdb()

	tx, err := s.db.Begin()
	if err != nil {
		panic(err.Error())
	}
	defer tx.Commit()

	q1 := "INSERT INTO " + TblWalkers + " (walker,step,reward,vreward,alive" + s.xdbsql("x") + ") VALUES (?,?,?,?,?" + s.xdbsql("?") + ");"
	for i := 0; i < s.n; i++ {
		p := s.buf.State(i)
		args := []interface{}{i, s.count, p.Reward, s.vrewards[i], s.buf.Alive(i)}
		args = append(args, pos2iface(p.Pos())...)
		_, err := tx.Exec(q1, args...)
		panicif(err)
	}

	q2 := "INSERT INTO " + TblBest + " (step,reward" + s.xdbsql("x") + ") VALUES (?,?" + s.xdbsql("?") + ");"
	args := []interface{}{s.count, s.best.Reward}
	args = append(args, pos2iface(s.best.Pos())...)
	_, err = tx.Exec(q2, args...)
	panicif(err)
}

func panicif(err error) {
	if err != nil {
		panic(err.Error())
	}
}
