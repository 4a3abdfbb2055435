package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-drift/motion/pkg/animation"
)

const barWidth = 40

func init() {
	RegisterCommand(&Command{
		Name:  "curve",
		Short: "Sample an easing curve",
		Long: `Print an easing curve sampled at samples+1 evenly spaced points
(default 10 samples), with its CSS timing function.

The easing is any name motion.yaml accepts: linear, ease-in, back-out,
cubic-bezier(0.2, 0, 0, 1), spring(200, 10, 1), bouncy and so on.`,
		Usage: "motion curve <easing> [samples]",
		Run:   runCurve,
	})
}

func runCurve(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: motion curve <easing> [samples]")
	}
	e, err := animation.ParseEasing(args[0])
	if err != nil {
		return err
	}
	samples, err := parseSamples(args[1:], 10)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s\n", e)
	fmt.Fprintf(stdout, "css: %s\n", e.CSS())
	if d := e.Duration(); d > 0 {
		fmt.Fprintf(stdout, "natural duration: %.3fs\n", d)
	}
	for i := 0; i <= samples; i++ {
		t := float64(i) / float64(samples)
		v := e.Evaluate(t)
		fmt.Fprintf(stdout, "%5.2f  %8.4f  %s\n", t, v, bar(v))
	}
	return nil
}

func parseSamples(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > 1000 {
		return 0, fmt.Errorf("samples must be an integer in [1, 1000] (got %q)", args[0])
	}
	return n, nil
}

// bar draws v in [0, 1] as a row of blocks. Overshoot past either end is
// clipped to the plot.
func bar(v float64) string {
	n := int(v*barWidth + 0.5)
	n = max(0, min(barWidth+barWidth/4, n))
	return strings.Repeat("#", n)
}
