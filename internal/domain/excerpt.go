package domain

// ExcerptLength is the stored and displayed excerpt size in characters.
const ExcerptLength = 200

// Excerpt truncates s to at most n characters without splitting a UTF-8
// sequence.
func Excerpt(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
