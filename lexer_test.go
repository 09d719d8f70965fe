package corrosion

import (
	"reflect"
	"testing"
)

func toks(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer(src)
	ts, err := l.Tokenize()
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	return ts
}

func typesWithoutEOF(tokens []Token) []TokenType {
	if len(tokens) == 0 {
		return nil
	}
	end := len(tokens)
	if tokens[end-1].Type == TEOF {
		end--
	}
	out := make([]TokenType, 0, end)
	for i := 0; i < end; i++ {
		out = append(out, tokens[i].Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want []TokenType) []Token {
	t.Helper()
	got := toks(t, src)
	gotTypes := typesWithoutEOF(got)
	if !reflect.DeepEqual(gotTypes, want) {
		t.Fatalf("\nsource:\n%s\nwant types:\n%v\ngot types:\n%v\n", src, want, gotTypes)
	}
	return got
}

func Test_Lexer_LetBinding(t *testing.T) {
	wantTypes(t, `let x = 5;`, []TokenType{TLet, TIdent, TAssign, TInt, TSemicolon})
}

func Test_Lexer_Operators(t *testing.T) {
	wantTypes(t, `a -> b => c`, []TokenType{TIdent, TArrow, TIdent, TFatArrow, TIdent})
	wantTypes(t, `a == b != c <= d >= e`, []TokenType{
		TIdent, TEq, TIdent, TNeq, TIdent, TLe, TIdent, TGe, TIdent,
	})
	wantTypes(t, `a && b || !c`, []TokenType{TIdent, TAndAnd, TIdent, TOrOr, TBang, TIdent})
}

func Test_Lexer_Keywords(t *testing.T) {
	wantTypes(t, `fn fix if else for in true false import as case of`, []TokenType{
		TFn, TFix, TIf, TElse, TFor, TIn, TTrue, TFalse, TImport, TAs, TCase, TOf,
	})
	wantTypes(t, `cons head tail fst snd inl inr range print type`, []TokenType{
		TCons, THead, TTail, TFst, TSnd, TInl, TInr, TRange, TPrint, TType,
	})
}

func Test_Lexer_StringEscapes(t *testing.T) {
	toksOut := toks(t, `"a\nb\t\"c\\"`)
	if toksOut[0].Str != "a\nb\t\"c\\" {
		t.Fatalf("got %q", toksOut[0].Str)
	}
}

func Test_Lexer_Comments(t *testing.T) {
	wantTypes(t, `
// line comment
let x /* inline */ = 1;
`, []TokenType{TLet, TIdent, TAssign, TInt, TSemicolon})
}

func Test_Lexer_UnterminatedBlockComment(t *testing.T) {
	l := NewLexer(`/* never closed`)
	if _, err := l.Tokenize(); err == nil {
		t.Fatal("expected error for unterminated block comment")
	}
}

func Test_Lexer_SpanTracking(t *testing.T) {
	ts := toks(t, "let\nx = 1;")
	// 'x' is on line 2, column 1.
	if ts[1].Span.Line != 2 || ts[1].Span.Column != 1 {
		t.Fatalf("got span %v", ts[1].Span)
	}
}
