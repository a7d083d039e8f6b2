package doctree

import "unicode"

// UTF16Len returns the length of s in UTF-16 code units, the unit spec.md
// §3.2 invariant 6 measures block-local offsets in.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Width(r)
	}
	return n
}

func utf16Width(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

const zeroWidthJoiner = '‍'

// isExtender reports whether r attaches to the preceding grapheme cluster
// instead of starting a new one: combining marks, variation selectors, and
// skin-tone modifiers. This is the practical subset of UAX #29 that the
// spec's testable boundary scenarios (emoji ZWJ sequences, combining marks)
// actually exercise — no third-party grapheme segmenter appears anywhere in
// the retrieval pack, so this is implemented directly against unicode
// categories (see DESIGN.md "Grapheme segmentation decision").
func isExtender(r rune) bool {
	if unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Me, r) || unicode.Is(unicode.Mc, r) {
		return true
	}
	if r >= 0xFE00 && r <= 0xFE0F { // variation selectors
		return true
	}
	if r >= 0x1F3FB && r <= 0x1F3FF { // emoji skin tone modifiers
		return true
	}
	return false
}

func isRegionalIndicator(r rune) bool {
	return r >= 0x1F1E6 && r <= 0x1F1FF
}

// GraphemeBoundariesUTF16 returns the sorted list of grapheme-cluster
// boundaries in s, expressed as UTF-16 code-unit offsets. The list always
// starts at 0 and ends at UTF16Len(s).
func GraphemeBoundariesUTF16(s string) []int {
	runes := []rune(s)
	if len(runes) == 0 {
		return []int{0}
	}
	widths := make([]int, len(runes))
	for i, r := range runes {
		widths[i] = utf16Width(r)
	}

	boundaries := []int{0}
	offset := widths[0]
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		joinPrevious := false
		switch {
		case isExtender(cur):
			joinPrevious = true
		case cur == zeroWidthJoiner:
			joinPrevious = true
		case prev == zeroWidthJoiner:
			joinPrevious = true
		case isRegionalIndicator(prev) && isRegionalIndicator(cur) && precededByOddRegionalRun(runes, i):
			joinPrevious = true
		}
		if !joinPrevious {
			boundaries = append(boundaries, offset)
		}
		offset += widths[i]
	}
	boundaries = append(boundaries, offset)
	return boundaries
}

// precededByOddRegionalRun reports whether the run of regional-indicator
// runes immediately before index i has odd length, meaning index i completes
// the flag pair opened by the run's last rune rather than starting a new one.
func precededByOddRegionalRun(runes []rune, i int) bool {
	count := 0
	for j := i - 1; j >= 0 && isRegionalIndicator(runes[j]); j-- {
		count++
	}
	return count%2 == 1
}

// NextGraphemeBoundary returns the first boundary in s strictly greater
// than from (UTF-16 offsets), or UTF16Len(s) if from is already at or past
// the end.
func NextGraphemeBoundary(s string, from int) int {
	bs := GraphemeBoundariesUTF16(s)
	for _, b := range bs {
		if b > from {
			return b
		}
	}
	return bs[len(bs)-1]
}

// PrevGraphemeBoundary returns the last boundary in s strictly less than
// from (UTF-16 offsets), or 0 if from is already at or before the start.
func PrevGraphemeBoundary(s string, from int) int {
	bs := GraphemeBoundariesUTF16(s)
	result := 0
	for _, b := range bs {
		if b < from {
			result = b
		} else {
			break
		}
	}
	return result
}
