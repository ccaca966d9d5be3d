package bot

import "unicode"

// emojiRanges covers the pictographic blocks seen in comment spam:
// misc symbols, dingbats, arrows/stars, variation selectors, and the
// supplementary pictographic planes.
var emojiRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1}, // misc symbols, dingbats
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1}, // arrows, stars
		{Lo: 0xFE0F, Hi: 0xFE0F, Stride: 1}, // variation selector-16
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1FAFF, Stride: 1}, // pictographs, emoticons, flags
	},
}

// isEmoji reports whether r renders as an emoji or emoji modifier.
func isEmoji(r rune) bool {
	if r == 0x200D || r == 0x20E3 { // zero-width joiner, keycap
		return true
	}
	return unicode.Is(emojiRanges, r)
}

// isEmojiOnly reports whether text consists solely of emoji and spaces,
// with at least one emoji present.
func isEmojiOnly(text string) bool {
	seen := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		if !isEmoji(r) {
			return false
		}
		seen = true
	}
	return seen
}

// hasRepeatedEmoji reports whether any single emoji appears at least
// minRun times consecutively.
func hasRepeatedEmoji(text string, minRun int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if isEmoji(r) && r == prev {
			run++
			if run >= minRun {
				return true
			}
		} else if isEmoji(r) {
			prev = r
			run = 1
		} else {
			prev = 0
			run = 0
		}
	}
	return false
}
