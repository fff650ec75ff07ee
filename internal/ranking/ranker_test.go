package ranking

import (
	"testing"
)

func TestRanker_Order(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		scores []float64
		want   []int
	}{
		{"descending", 10, []float64{0.1, 0.9, 0.5}, []int{1, 2, 0}},
		{"ties keep corpus order", 10, []float64{0.5, 0.7, 0.5, 0.7}, []int{1, 3, 0, 2}},
		{"all zero keeps corpus order", 10, []float64{0, 0, 0}, []int{0, 1, 2}},
		{"truncated", 2, []float64{0.2, 0.3, 0.1}, []int{1, 0}},
		{"unlimited", 0, []float64{0.2, 0.3, 0.1}, []int{1, 0, 2}},
		{"empty", 10, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRanker(tt.limit).Order(tt.scores)
			if len(got) != len(tt.want) {
				t.Fatalf("Order() returned %d results, want %d", len(got), len(tt.want))
			}
			for i, s := range got {
				if s.Index != tt.want[i] {
					t.Errorf("position %d: index %d, want %d", i, s.Index, tt.want[i])
				}
				if s.Score != tt.scores[s.Index] {
					t.Errorf("position %d: score %v, want %v", i, s.Score, tt.scores[s.Index])
				}
			}
		})
	}
}

func TestRanker_LimitDefault(t *testing.T) {
	scores := make([]float64, 15)
	got := NewRanker(DefaultLimit).Order(scores)
	if len(got) != 10 {
		t.Fatalf("expected 10 results, got %d", len(got))
	}
	for i, s := range got {
		if s.Index != i {
			t.Errorf("expected corpus order on all-zero scores, got index %d at %d", s.Index, i)
		}
	}
}

func TestScore_Bounds(t *testing.T) {
	query := []float64{0.4, 0, 1.2}
	docs := [][]float64{
		{0.8, 0, 2.4},
		{0, 3, 0},
		{0, 0, 0},
		{0.1, 0.1, 0.1},
	}
	scores := Score(query, docs)
	for i, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("score %d out of bounds: %v", i, s)
		}
	}
	if scores[0] < scores[3] {
		t.Errorf("scalar multiple of the query should score at least as high: %v < %v", scores[0], scores[3])
	}
	if scores[1] != 0 || scores[2] != 0 {
		t.Errorf("orthogonal and zero vectors should score 0, got %v and %v", scores[1], scores[2])
	}
}

func TestRanker_Rank(t *testing.T) {
	query := []float64{1, 0}
	docs := [][]float64{{0, 1}, {1, 1}, {2, 0}}
	got := NewRanker(2).Rank(query, docs)
	if len(got) != 2 || got[0].Index != 2 || got[1].Index != 1 {
		t.Errorf("unexpected ranking: %+v", got)
	}
}
