package lexer

import "github.com/psh-go/psh/token"

// Transform runs the single token-transformer pass of spec.md §4.3 over a
// freshly lexed stream. The lexer already emits SEMI_SEMI/SEMI_AMP/
// SEMI_SEMI_AMP with the longest-match rule; this pass does not need to
// reclassify them — legality of ';;' outside a case body is a parser-level
// context check (spec.md §4.3: "the transformer still preserves their kind
// so the parser can produce a precise error"). The pass returns the tokens
// unchanged and stores no per-token whitespace flag: whether a token is
// immediately followed by whitespace is computed on demand by
// FollowedByWhitespace from the spans of the token and its successor.
func Transform(toks []token.Token) []token.Token {
	return toks
}

// FollowedByWhitespace reports whether the token at index i in toks is
// immediately followed by a non-adjacent token (whitespace, operator
// boundary, or end of stream).
func FollowedByWhitespace(toks []token.Token, i int) bool {
	if i < 0 || i+1 >= len(toks) {
		return true
	}
	return !token.IsAdjacent(toks[i], toks[i+1])
}
