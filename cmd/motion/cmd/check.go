package cmd

import (
	"fmt"
	"sort"

	"github.com/go-drift/motion/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "check",
		Short: "Validate motion.yaml and show the resolved settings",
		Long: `Validate the project's motion.yaml and print the settings the runtime
will use. The project root is the nearest directory at or above dir (default
".") containing motion.yaml or go.mod. A missing motion.yaml is not an error:
the defaults are shown.`,
		Usage: "motion check [dir]",
		Run:   runCheck,
	})
}

func runCheck(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("check takes at most one directory")
	}
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		return err
	}
	r, err := config.Resolve(root)
	if err != nil {
		return err
	}

	source := r.Path
	if source == "" {
		source = "(defaults, no " + config.FileName + ")"
	}
	fmt.Fprintf(stdout, "Project: %s\n", r.Root)
	if r.ModulePath != "" {
		fmt.Fprintf(stdout, "Module:  %s\n", r.ModulePath)
	}
	fmt.Fprintf(stdout, "Config:  %s (schema %s)\n", source, r.Version)
	fmt.Fprintln(stdout)

	b := r.Budget
	fmt.Fprintln(stdout, "Budget:")
	fmt.Fprintf(stdout, "  frame time      %.2f ms\n", b.MaxFrameTimeMs)
	fmt.Fprintf(stdout, "  animations      %d\n", b.MaxAnimations)
	fmt.Fprintf(stdout, "  memory          %d bytes\n", b.MaxMemoryBytes)
	fmt.Fprintf(stdout, "  gpu layers      %d\n", b.MaxGPULayers)
	fmt.Fprintf(stdout, "  target fps      %g\n", b.TargetFPS)

	degraded := r.Policy.Apply(b)
	fmt.Fprintln(stdout, "Degraded:")
	fmt.Fprintf(stdout, "  animations      %d\n", degraded.MaxAnimations)
	fmt.Fprintf(stdout, "  target fps      %g\n", degraded.TargetFPS)
	fmt.Fprintf(stdout, "  momentum        %s\n", onOff(!r.Policy.DisableMomentum))

	d := r.Drag
	fmt.Fprintln(stdout, "Gestures:")
	fmt.Fprintf(stdout, "  elastic         %g\n", d.Elastic)
	fmt.Fprintf(stdout, "  restitution     %g\n", d.Restitution)
	fmt.Fprintf(stdout, "  power           %g\n", d.Power)
	fmt.Fprintf(stdout, "  spring          k=%g c=%g m=%g (%s)\n", d.Spring.Stiffness, d.Spring.Damping, d.Spring.Mass, d.Spring.Regime())

	fmt.Fprintln(stdout, "FLIP:")
	fmt.Fprintf(stdout, "  duration        %gs\n", r.Flip.Duration)
	fmt.Fprintf(stdout, "  ease            %s\n", r.Flip.Ease)

	if len(r.Easings) > 0 {
		names := make([]string, 0, len(r.Easings))
		for name := range r.Easings {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(stdout, "Easings:")
		for _, name := range names {
			fmt.Fprintf(stdout, "  %-15s %s\n", name, r.Easings[name])
		}
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
