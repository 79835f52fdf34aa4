// Package yomi normalizes Japanese readings into canonical phonetic keys.
package yomi

import (
	"strings"
	"unicode"
)

// rule is a single substitution applied during normalization.
type rule struct {
	from string
	to   string
}

// rules collapse phonetic variants that arise from loanword transliteration.
// The table is fixed and ordered: longer patterns appear before shorter
// overlapping ones (ツィ before ツ, トゥ before ト, ドゥ before ド).
var rules = []rule{
	{"ー", ""}, // long-vowel mark
	{"ヰ", "イ"},
	{"ヱ", "エ"},
	{"ヂ", "ジ"},
	{"ヅ", "ズ"},
	{"ヮ", "ア"},
	{"ツィ", "チ"},
	{"ティ", "チ"},
	{"クサ", "キサ"},
	{"クシ", "キシ"},
	{"クス", "キス"},
	{"クソ", "キソ"},
	{"ヴァ", "バ"},
	{"ヴア", "バ"},
	{"ヴィ", "ビ"},
	{"ヴイ", "ビ"},
	{"ヴェ", "ベ"},
	{"ヴエ", "ベ"},
	{"ヴォ", "ボ"},
	{"ヴオ", "ボ"},
	{"ファ", "ハ"},
	{"フィ", "ヒ"},
	{"フェ", "ヘ"},
	{"フォ", "ホ"},
	{"グァ", "ガ"},
	{"シェ", "セ"},
	{"ジェ", "ゼ"},
	{"トゥ", "ト"},
	{"ツ", "ト"},
	{"ドゥ", "ド"},
	{"デュ", "ジュ"},
	{"テュ", "チュ"},
	{"イェ", "エ"},
	{"ッ", ""}, // gemination mark
}

const (
	hiraganaFirst = 'ぁ' // U+3041
	hiraganaLast  = 'ゔ' // U+3094
	kanaShift     = 'ァ' - 'ぁ'
)

// Normalize maps a display string to its canonical phonetic key.
// It drops every rune outside the letter/number categories, folds hiragana
// to katakana, then applies the substitution table in order. Applying it to
// an already-normalized key is a no-op.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			continue
		}
		if r >= hiraganaFirst && r <= hiraganaLast {
			r += kanaShift
		}
		b.WriteRune(r)
	}
	out := b.String()
	for _, ru := range rules {
		out = strings.ReplaceAll(out, ru.from, ru.to)
	}
	return out
}
