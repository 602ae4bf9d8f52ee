package nlm

import (
	"go.uber.org/zap"
)

// resolveAnnotations binds staged source id targets to created nodes and
// commits annotations. Unresolved targets are reported, the annotation is
// kept. Annotations whose owning node was never created cannot be placed and
// are dropped.
func (c *Converter) resolveAnnotations(st *State) {
	resolved, missed := 0, 0
	for _, a := range st.annotations {
		if !st.Doc.Contains(a.Path[0]) {
			st.LookupMiss(a.Kind, a.Path[0], "Annotation owner does not exist, dropping annotation")
			continue
		}
		if a.Target != nil && !a.Target.Resolved() {
			if id := c.lookup(st, a.Kind, a.Target.SourceID); id != "" {
				a.Target.NodeID = id
				resolved++
			} else {
				st.LookupMiss(a.Kind, a.Target.SourceID, "Annotation target not found")
				missed++
			}
		}
		st.Commit(a)
	}
	st.annotations = nil
	st.Log.Debug("Annotations resolved", zap.Int("resolved", resolved), zap.Int("unresolved", missed))
}

func (c *Converter) lookup(st *State, kind, sid string) string {
	candidates := st.Doc.BySourceID(sid)
	if len(candidates) == 0 {
		return ""
	}
	for _, t := range c.targets[kind] {
		for _, n := range candidates {
			if n.NodeType() == t {
				return n.NodeID()
			}
		}
	}
	return candidates[0].NodeID()
}
