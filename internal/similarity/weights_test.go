package similarity

import "testing"

func TestChunkWeight(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		index  int
		total  int
		expect float64
	}{
		{"title signal", "Article Title", 3, 10, 5.0},
		{"japanese title signal", "記事タイトル", 4, 10, 5.0},
		{"first chunk untitled", "", 0, 10, 5.0},
		{"intro signal", "Introduction", 5, 10, 3.0},
		{"japanese intro signal", "はじめに", 5, 10, 3.0},
		{"second chunk untitled", "", 1, 10, 3.0},
		{"conclusion signal", "Summary of findings", 4, 10, 2.0},
		{"japanese conclusion signal", "まとめ", 4, 10, 2.0},
		{"last chunk untitled", "", 9, 10, 2.0},
		{"footer signal", "References", 4, 10, 0.5},
		{"japanese footer signal", "参考文献", 4, 10, 0.5},
		{"plain body", "中盤の話", 4, 10, 1.0},
		{"untitled body", "", 4, 10, 1.0},
		// First rule wins: index 0 outranks the conclusion position rule.
		{"single chunk article", "", 0, 1, 5.0},
		{"title signal on last chunk", "title recap", 9, 10, 5.0},
		// Footer signal loses to the last-position conclusion rule.
		{"footer heading on last chunk", "references", 9, 10, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChunkWeight(tt.title, tt.index, tt.total); got != tt.expect {
				t.Errorf("ChunkWeight(%q, %d, %d) = %v, want %v", tt.title, tt.index, tt.total, got, tt.expect)
			}
		})
	}
}

func TestChunkWeightCaseInsensitive(t *testing.T) {
	if got := ChunkWeight("INTRODUCTION", 5, 10); got != 3.0 {
		t.Errorf("uppercase heading not matched, got %v", got)
	}
}
