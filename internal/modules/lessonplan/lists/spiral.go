package lists

// ParseSpiralReview returns one sentence per non-empty line, newest first as
// written.
func ParseSpiralReview(text string) []string {
	return cleanLines(text)
}
