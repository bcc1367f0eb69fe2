package similarity

import "slices"

// Candidate is an item with the vector it is ranked by.
type Candidate[T any] struct {
	Item   T
	Vector []float32
}

// Match is a ranked candidate.
type Match[T any] struct {
	Item  T
	Score float64
}

// TopK scores every candidate against query and returns the k best,
// highest first. Equal scores keep their input order. k <= 0 returns all
// candidates ranked. Any dimension mismatch is an error.
func TopK[T any](query []float32, candidates []Candidate[T], k int) ([]Match[T], error) {
	matches := make([]Match[T], 0, len(candidates))
	for _, c := range candidates {
		score, err := Cosine(query, c.Vector)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match[T]{Item: c.Item, Score: score})
	}

	slices.SortStableFunc(matches, func(a, b Match[T]) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}
