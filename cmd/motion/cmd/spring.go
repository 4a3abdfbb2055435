package cmd

import (
	"fmt"
	"strconv"

	"github.com/go-drift/motion/pkg/animation"
)

func init() {
	RegisterCommand(&Command{
		Name:  "spring",
		Short: "Show a spring's settle time and trajectory",
		Long: `Print the damping regime, settle duration and unit step response of
a spring with the given stiffness, damping and mass.`,
		Usage: "motion spring <stiffness> <damping> <mass> [samples]",
		Run:   runSpring,
	})
}

func runSpring(args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return fmt.Errorf("usage: motion spring <stiffness> <damping> <mass> [samples]")
	}
	var params [3]float64
	for i, name := range []string{"stiffness", "damping", "mass"} {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", name, args[i])
		}
		params[i] = v
	}
	cfg := animation.SpringConfig{Stiffness: params[0], Damping: params[1], Mass: params[2]}
	if err := cfg.Validate(); err != nil {
		return err
	}
	samples, err := parseSamples(args[3:], 10)
	if err != nil {
		return err
	}

	d := cfg.SettleDuration()
	fmt.Fprintf(stdout, "regime: %s (damping ratio %.3f)\n", cfg.Regime(), cfg.DampingRatio())
	fmt.Fprintf(stdout, "settles in: %.3fs\n", d)
	for i, v := range cfg.Trajectory(samples) {
		t := d * float64(i) / float64(samples)
		fmt.Fprintf(stdout, "%6.3fs  %8.4f  %s\n", t, v, bar(v))
	}
	return nil
}
