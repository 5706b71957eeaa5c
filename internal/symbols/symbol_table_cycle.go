package symbols

// DetectInheritanceCycle walks sym's BaseType edges (mark-and-sweep, per
// design note §9) and reports whether following them ever revisits a
// type already on the current walk — the source left this undetected;
// this implementation raises E214 for it (see analyzer).
func DetectInheritanceCycle(sym *Symbol) bool {
	visited := make(map[*Symbol]bool)
	for t := sym; t != nil; t = t.BaseType {
		if visited[t] {
			return true
		}
		visited[t] = true
	}
	return false
}
