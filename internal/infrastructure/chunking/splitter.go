package chunking

import "strings"

// Splitter groups clauses into overlapping windows so each chunk keeps the
// neighbouring clauses as context.
type Splitter struct {
	clauses *ClauseSplitter
	Overlap int
}

func NewSplitter(clauses *ClauseSplitter, overlap int) *Splitter {
	if overlap < 0 {
		overlap = 0
	}
	return &Splitter{
		clauses: clauses,
		Overlap: overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	return ChunkClauses(s.clauses.Clauses(text), s.Overlap)
}

// ChunkClauses walks the clauses with a stride of overlap+1 and joins each clause
// with up to overlap neighbours on either side.
func ChunkClauses(clauses []string, overlap int) []string {
	if len(clauses) == 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}

	step := overlap + 1
	out := make([]string, 0, len(clauses)/step+1)
	for i := 0; i < len(clauses); i += step {
		from := max(0, i-overlap)
		to := min(len(clauses), i+1+overlap)
		out = append(out, strings.Join(clauses[from:to], " "))
	}
	return out
}
