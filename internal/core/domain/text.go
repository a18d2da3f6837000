package domain

// Sentence is a segment of a document with byte offsets into the source text.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// Contains reports whether the byte range [start,end) lies within the sentence.
func (s Sentence) Contains(start, end int) bool {
	return s.Start <= start && end <= s.End
}
