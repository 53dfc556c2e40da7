package navigation

// history is the session's stack of committed locations.
type history struct {
	entries []string
	index   int
}

func (h *history) at(i int) (string, bool) {
	if i < 0 || i >= len(h.entries) {
		return "", false
	}
	return h.entries[i], true
}

// record stores a committed location. A history navigation moves the index
// to the entry it targeted; otherwise the location is pushed, dropping any
// forward entries, or replaces the current entry.
func (h *history) record(loc string, pop, replace bool, popIndex int) {
	switch {
	case pop && popIndex >= 0 && popIndex < len(h.entries):
		h.index = popIndex
		h.entries[popIndex] = loc
	case replace && h.index >= 0:
		h.entries[h.index] = loc
	default:
		h.entries = append(h.entries[:h.index+1], loc)
		h.index++
	}
}
