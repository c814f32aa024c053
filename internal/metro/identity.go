package metro

// LineIdentity returns the canonical key for one direction of one line,
// e.g. "BL-1". No trimming or case folding is applied: the same inputs always
// yield the same key and distinct inputs never collide.
func LineIdentity(code, direction string) string {
	return code + "-" + direction
}
