package similarity

import "strings"

// Structural weight tiers. A title carries roughly five times the signal of a
// body paragraph when judging whether two articles cover the same ground;
// reference/footer sections carry half.
const (
	weightTitle      = 5.0
	weightIntro      = 3.0
	weightConclusion = 2.0
	weightFooter     = 0.5
	weightBody       = 1.0
)

// Heading keyword sets, matched case-insensitively as substrings. The corpus
// is mixed Japanese/English, so both spellings are listed.
var (
	titleSignals = []string{
		"タイトル", "題名", "見出し", "title", "heading",
	}
	introSignals = []string{
		"はじめに", "導入", "概要", "イントロ", "introduction", "intro", "overview",
	}
	conclusionSignals = []string{
		"まとめ", "結論", "おわりに", "要点", "summary", "conclusion", "key points",
	}
	footerSignals = []string{
		"参考", "関連リンク", "注釈", "脚注", "references", "related links", "notes", "footnote",
	}
)

// ChunkWeight assigns a structural importance weight to a chunk based on its
// heading text and position within the article. Rules are checked in order and
// the first match wins, so a single-chunk article (index 0 == totalChunks-1)
// is weighted as a title, not a conclusion.
func ChunkWeight(title string, index, totalChunks int) float64 {
	t := strings.ToLower(title)
	switch {
	case containsAny(t, titleSignals) || index == 0:
		return weightTitle
	case containsAny(t, introSignals) || index == 1:
		return weightIntro
	case containsAny(t, conclusionSignals) || index == totalChunks-1:
		return weightConclusion
	case containsAny(t, footerSignals):
		return weightFooter
	default:
		return weightBody
	}
}

func containsAny(s string, signals []string) bool {
	if s == "" {
		return false
	}
	for _, sig := range signals {
		if strings.Contains(s, sig) {
			return true
		}
	}
	return false
}
