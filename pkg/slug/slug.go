// Copyright (c) 2026 GenrA. All rights reserved.

// Package slug folds Unicode text into ASCII identifiers.
//
// Genre slugs ("science-fiction") come from [From]; generated usernames and
// seed e-mail addresses use [Compact], which drops separators entirely.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold strips accents: "é" decomposes to "e" plus a combining mark, which is removed.
var fold = transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}))

// From returns a lower-case slug with runs of other characters collapsed to one hyphen.
//
//	From("Ciencia Ficción!") // "ciencia-ficcion"
func From(value string) string {
	var builder strings.Builder
	pendingHyphen := false

	for _, r := range ascii(value) {
		if isAlnum(r) {
			if pendingHyphen && builder.Len() > 0 {
				builder.WriteByte('-')
			}
			builder.WriteRune(r)
			pendingHyphen = false
			continue
		}
		pendingHyphen = true
	}
	return builder.String()
}

// Compact keeps only ASCII letters and digits, lower-cased.
//
//	Compact("Ana María López") // "anamarialopez"
func Compact(value string) string {
	return strings.Map(func(r rune) rune {
		if isAlnum(r) {
			return r
		}
		return -1
	}, ascii(value))
}

func ascii(value string) string {
	folded, _, err := transform.String(fold, value)
	if err != nil {
		folded = value
	}
	return strings.ToLower(folded)
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
}
