package buffer

// Split cuts text into consecutive chunks of at most max bytes. The cut
// ignores word boundaries. Every chunk but the last is exactly max bytes
// long, and concatenating the chunks reproduces text. Empty text yields a
// single empty chunk. Chunks share memory with text.
//
// Split panics if max is less than 1.
func Split(text string, max int) []string {
	if max < 1 {
		panic("buffer: split length must be at least 1")
	}
	if len(text) <= max {
		return []string{text}
	}

	chunks := make([]string, 0, (len(text)+max-1)/max)
	for len(text) > max {
		chunks = append(chunks, text[:max])
		text = text[max:]
	}
	return append(chunks, text)
}
