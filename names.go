package loom

import "fmt"

// findElement performs a breadth-first search over obj's Elements() tree
// for a frame whose Name() equals name, matching the Rust source's
// `find_element` (a plain BFS, not DFS — siblings are preferred over
// descending early).
func findElement(obj Object, name string) *Frame {
	queue := obj.Elements()
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if f == nil {
			continue
		}
		if f.Name() == name {
			return f
		}
		if f.object != nil {
			queue = append(queue, f.object.Elements()...)
		}
	}
	return nil
}

// pickName finds a name for a new frame in sys that does not collide with
// any existing frame name reachable from sys, starting from base and
// appending "2", "3", ... until the BFS turns up no match. Mirrors the
// Rust source's `System::pick_name`.
func pickName(sys *System, base string) string {
	candidate := base
	for n := 2; nameTaken(sys, candidate); n++ {
		candidate = fmt.Sprintf("%s%d", base, n)
	}
	return candidate
}

// nameTaken reports whether any frame in sys (or, via findElement's BFS
// over System.Elements, its nested subsystems) already uses name.
func nameTaken(sys *System, name string) bool {
	return findElement(sys, name) != nil
}
