package loom

// SystemNode, FrameNode and LinkNode are a read-only introspection tree
// over a System's current shape, grounded on the teacher's
// Flow/FlowVariant/Node pattern (schema.go) — a way for an embedder (a
// debugger, a visualizer) to walk the graph without depending on the
// core's internal types.
type SystemNode struct {
	Frames []FrameNode
	Links  []LinkNode
}

// FrameNode describes one frame: its name, whether it currently holds an
// object, and — if that object is itself a System — the nested schema.
type FrameNode struct {
	Name       string
	HasObject  bool
	ObjectName string
	Scheduled  bool
	Running    bool
	Nested     *SystemNode
}

// LinkNode describes one link in terms safe to print: endpoint frame
// names (or, for a Symbolic end, the anchor frame's name plus the
// referenced element name) and the relation.
type LinkNode struct {
	Relation Relation
	A        LinkEndNode
	B        LinkEndNode
}

// LinkEndNode is the introspection-safe rendering of a LinkEnd.
type LinkEndNode struct {
	Symbolic  bool
	FrameName string
	Element   string
}

func linkEndNode(e LinkEnd) LinkEndNode {
	n := LinkEndNode{Symbolic: e.Symbolic()}
	if e.frame != nil {
		n.FrameName = e.frame.name
	}
	if n.Symbolic {
		n.Element = e.name
	}
	return n
}

// Schema snapshots sys's current frames and links into a plain
// read-only tree, recursing into any frame whose held object is itself
// a System.
func (sys *System) Schema() SystemNode {
	node := SystemNode{}
	for _, f := range sys.frames {
		fn := FrameNode{
			Name:      f.name,
			Scheduled: f.scheduled,
			Running:   f.running,
		}
		if f.object != nil {
			fn.HasObject = true
			fn.ObjectName = f.object.Name()
			if c := f.object.Concrete(); c.Kind == ConcreteSystem && c.System != nil {
				nested := c.System.Schema()
				fn.Nested = &nested
			}
		}
		node.Frames = append(node.Frames, fn)
	}
	for _, l := range sys.links {
		node.Links = append(node.Links, LinkNode{
			Relation: l.Relation,
			A:        linkEndNode(l.A),
			B:        linkEndNode(l.B),
		})
	}
	return node
}
