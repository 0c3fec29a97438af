// Package text holds small plain-text helpers shared by handlers.
package text

// Chunk splits s into pieces of at most size runes, preserving order and
// content. Splitting on rune boundaries keeps multi-byte characters intact.
// A non-positive size returns the whole string as a single chunk.
func Chunk(s string, size int) []string {
	if s == "" {
		return nil
	}
	if size <= 0 {
		return []string{s}
	}

	runes := []rune(s)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
