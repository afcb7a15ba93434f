package main

import (
	"database/sql"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	_ "modernc.org/sqlite"

	"github.com/fractalmc/fmc/bench"
	"github.com/fractalmc/fmc/swarm"
)

var (
	nwalkers = flag.Int("walkers", 64, "number of walkers in the swarm")
	maxsteps = flag.Int("maxsteps", 2000, "step budget per trial")
	ntrials  = flag.Int("trials", 100, "number of independent trials")
	dbname   = flag.String("db", "", "sqlite file to record the last trial into")
)

func main() {
	flag.Parse()

	fn := bench.Eggholder{}
	optimum := fn.Optima()[0].Reward

	var db *sql.DB
	if *dbname != "" {
		var err error
		db, err = sql.Open("sqlite", *dbname)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open %v: %v\n", *dbname, err)
			os.Exit(1)
		}
		defer db.Close()
	}

	nsuccess := 0
	for n := 0; n < *ntrials; n++ {
		s := buildSwarm(fn, int64(n), db, n == *ntrials-1)

		best, nsteps, err := bench.Benchmark(s, fn, .01)
		if err != nil {
			fmt.Fprintf(os.Stderr, "trial %v: %v\n", n, err)
			os.Exit(1)
		}

		if math.Abs(best.Reward-optimum) < math.Abs(optimum*.01) {
			nsuccess++
			fmt.Printf("Succeeded (%v steps):\n", nsteps)
		} else {
			fmt.Printf("Failed (%v steps):\n", nsteps)
		}
		fmt.Printf("    optimum: %v at %v\n", optimum, fn.Optima()[0].Pos())
		fmt.Printf("    best: %v at %v\n", best.Reward, best.Pos())
	}
	fmt.Printf("%v%% succeeded\n", float64(nsuccess)/float64(*ntrials)*100)
}

func buildSwarm(fn bench.Func, seed int64, db *sql.DB, record bool) *swarm.Swarm {
	low, up := fn.Bounds()
	env := bench.NewFuncEnv(fn)
	model := &bench.GaussianModel{
		Sigma: (up[0] - low[0]) / 20,
		Rng:   rand.New(rand.NewSource(seed)),
	}

	opts := []swarm.Option{
		swarm.Seed(seed),
		swarm.MaxSteps(*maxsteps),
		swarm.AccumulateRewards(false),
		swarm.Archive(10),
	}
	if db != nil && record {
		opts = append(opts, swarm.DB(db))
	}

	s, err := swarm.New(env, model, *nwalkers, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return s
}
