package lexer

import (
	"errors"
	"testing"

	"github.com/psh-go/psh/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeSimpleCommand(t *testing.T) {
	toks, err := Tokenize("echo hello world")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []token.Kind{token.WORD, token.WORD, token.WORD, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenizeOperators(t *testing.T) {
	tests := []struct {
		src  string
		want token.Kind
	}{
		{"||", token.OR_OR},
		{"&&", token.AND_AND},
		{";;", token.SEMI_SEMI},
		{";&", token.SEMI_AMP},
		{";;&", token.SEMI_SEMI_AMP},
		{">>", token.DGREAT},
		{"<<<", token.HERESTRING},
		{"&>", token.AMPGREAT},
		{"<>", token.LESSGREAT},
		{"((", token.DLPAREN},
		{"))", token.DRPAREN},
		{"[[", token.DLBRACKET},
		{"]]", token.DRBRACKET},
	}
	for _, tt := range tests {
		toks, err := Tokenize(tt.src)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", tt.src, err)
		}
		if len(toks) < 1 || toks[0].Kind != tt.want {
			t.Errorf("Tokenize(%q)[0].Kind = %v, want %v", tt.src, toks[0].Kind, tt.want)
		}
	}
}

func TestTokenizeQuoting(t *testing.T) {
	toks, err := Tokenize(`'single' "double $x" ` + "`echo hi`")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Kind != token.SINGLE_STRING || toks[0].Value != "single" {
		t.Errorf("single-quoted token = %+v", toks[0])
	}
	if toks[1].Kind != token.STRING || toks[1].Value != "double $x" {
		t.Errorf("double-quoted token = %+v", toks[1])
	}
	if toks[2].Kind != token.COMMAND_SUB_BACKTICK || toks[2].Value != "echo hi" {
		t.Errorf("backtick token = %+v", toks[2])
	}
}

func TestTokenizeDoubleQuoteEscapes(t *testing.T) {
	toks, err := Tokenize(`"a\"b\$c\\d"`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if got, want := toks[0].Value, `a"b$c\d`; got != want {
		t.Errorf("escaped double-quote value = %q, want %q", got, want)
	}
}

func TestTokenizeUnterminatedQuoteIsFatal(t *testing.T) {
	_, err := Tokenize(`echo 'unterminated`)
	var lexErr *Error
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *lexer.Error, got %v (%T)", err, err)
	}
}

func TestTokenizeDollarForms(t *testing.T) {
	toks, err := Tokenize("$var $(cmd) $((1+2))")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []token.Kind{token.VARIABLE, token.COMMAND_SUB, token.ARITH_SUB, token.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if toks[1].Value != "cmd" {
		t.Errorf("command substitution body = %q, want %q", toks[1].Value, "cmd")
	}
	if toks[2].Value != "1+2" {
		t.Errorf("arithmetic substitution body = %q, want %q", toks[2].Value, "1+2")
	}
}

func TestTokenizeHeredocStart(t *testing.T) {
	toks, err := Tokenize("cat <<EOF")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	found := false
	for _, tk := range toks {
		if tk.Kind == token.HEREDOC_START {
			found = true
			if tk.Value != "EOF" {
				t.Errorf("heredoc delimiter = %q, want EOF", tk.Value)
			}
		}
	}
	if !found {
		t.Fatal("no HEREDOC_START token produced")
	}
}

func TestTokenizeCommentsAndWhitespaceSkipped(t *testing.T) {
	toks, err := Tokenize("  echo hi # a trailing comment\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []token.Kind{token.WORD, token.WORD, token.NEWLINE, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestIsAdjacentAcrossTokens(t *testing.T) {
	toks, err := Tokenize(`"foo"$bar`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if !token.IsAdjacent(toks[0], toks[1]) {
		t.Fatalf("expected %v and %v to be adjacent (no whitespace between)", toks[0], toks[1])
	}
}

func TestFollowedByWhitespace(t *testing.T) {
	toks, err := Tokenize(`foo bar`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if FollowedByWhitespace(toks, 0) != true {
		t.Error("expected foo to be followed by whitespace before bar")
	}
}
