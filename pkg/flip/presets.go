package flip

import "github.com/go-drift/motion/pkg/animation"

// ListReorder suits items changing places in a list: 0.3 s, ease-out.
func ListReorder() Config {
	return Config{Duration: 0.3, Ease: animation.EaseOut}
}

// GridResize suits grids gaining or losing columns: 0.4 s, ease-in-out.
func GridResize() Config {
	return Config{Duration: 0.4, Ease: animation.EaseInOut}
}

// Breakpoint suits switching between responsive layouts: 0.5 s,
// ease-in-out.
func Breakpoint() Config {
	return Config{Duration: 0.5, Ease: animation.EaseInOut}
}

// ModalExpand suits a card growing into a modal: 0.25 s, ease-out, raised
// to zIndex while it animates.
func ModalExpand(zIndex int) Config {
	return Config{Duration: 0.25, Ease: animation.EaseOut, ZIndex: zIndex}
}

// Preset returns a configuration by name: list-reorder, grid-resize,
// breakpoint or modal-expand. modal-expand uses z-index 1000.
func Preset(name string) (Config, bool) {
	switch name {
	case "list-reorder":
		return ListReorder(), true
	case "grid-resize":
		return GridResize(), true
	case "breakpoint":
		return Breakpoint(), true
	case "modal-expand":
		return ModalExpand(1000), true
	}
	return Config{}, false
}
