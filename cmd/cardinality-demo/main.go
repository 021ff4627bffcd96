// Command cardinality-demo inserts a stream of random 64-bit client IDs into
// an Estimator and reports how its estimate, representation, and memory
// footprint evolve as the stream grows.
package main

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	estimator "github.com/LucaCappelletti94/cardinality-estimator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cardinality-demo:", err)
		os.Exit(1)
	}
}

func run() error {
	count := flag.IntP("count", "n", 1_000_000, "number of random 64-bit values to insert")
	p := flag.IntP("precision", "p", estimator.DefaultSettings.P, "HLL precision, log2(registers), in [4, 18]")
	w := flag.IntP("width", "w", estimator.DefaultSettings.W, "HLL register width in bits, in [4, 6]")
	seed := flag.Int64P("seed", "s", 1, "seed for the random value generator")
	reportEvery := flag.IntP("report-every", "r", 0, "if > 0, print a progress line every N insertions")
	flag.Parse()

	e, err := estimator.NewWithSettings(estimator.Settings{P: *p, W: *w})
	if err != nil {
		return errors.Wrap(err, "invalid settings")
	}

	rng := rand.New(rand.NewSource(*seed))
	var buf [8]byte

	start := time.Now()
	for i := 0; i < *count; i++ {
		binary.LittleEndian.PutUint64(buf[:], uint64(rng.Int63()))
		e.Insert(buf[:])

		if *reportEvery > 0 && (i+1)%*reportEvery == 0 {
			fmt.Printf("after %d insertions: %s\n", i+1, e.String())
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("inserted %d values in %s\n", *count, elapsed)
	fmt.Printf("final state: %s\n", e.String())
	fmt.Printf("relative error: %.4f%%\n", relativeErrorPercent(*count, e.Estimate()))

	return nil
}

func relativeErrorPercent(truth int, got uint64) float64 {
	if truth == 0 {
		return 0
	}
	diff := float64(got) - float64(truth)
	if diff < 0 {
		diff = -diff
	}
	return 100 * diff / float64(truth)
}
