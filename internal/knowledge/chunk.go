package knowledge

import "strings"

// DefaultChunkSize is the target chunk length in bytes. Small pages fit in
// a single chunk; only content longer than this is split.
const DefaultChunkSize = 4000

// Split breaks content into chunks of at most size bytes, preferring
// paragraph boundaries so chunks stay readable. Returns at least one chunk
// for non-empty content, and exactly one empty chunk for empty content so
// every crawled page leaves a record.
func Split(content string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if len(content) <= size {
		return []string{content}
	}

	paragraphs := strings.Split(content, "\n\n")
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, p := range paragraphs {
		// Oversized paragraph: hard-split on the byte boundary.
		for len(p) > size {
			flush()
			chunks = append(chunks, p[:size])
			p = p[size:]
		}
		if current.Len() > 0 && current.Len()+len(p)+2 > size {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()

	if len(chunks) == 0 {
		return []string{""}
	}
	return chunks
}
