package catalog

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// tsqlLexer tokenises T-SQL well enough to find declarations while ignoring
// anything inside comments, string literals and quoted identifiers. Every
// input lexes: characters not covered by another rule become Punct.
var tsqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\r\n]*`},
	{Name: "MultilineComment", Pattern: `/\*[^*]*\*+([^/*][^*]*\*+)*/`},
	{Name: "String", Pattern: `[nN]?'([^']|'')*'`},
	{Name: "BracketIdent", Pattern: `\[([^\]]|\]\])*\]`},
	{Name: "QuotedIdent", Pattern: `"([^"]|"")*"`},
	{Name: "Variable", Pattern: `@@?[a-zA-Z0-9_#$@]*`},
	{Name: "Number", Pattern: `\d+(\.\d*)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_#][a-zA-Z0-9_#$@]*`},
	{Name: "Punct", Pattern: `[^\sa-zA-Z0-9_]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	symbols = tsqlLexer.Symbols()

	tokenString  = symbols["String"]
	tokenVar     = symbols["Variable"]
	tokenIdent   = symbols["Ident"]
	tokenPunct   = symbols["Punct"]
	tokenBracket = symbols["BracketIdent"]
	tokenQuoted  = symbols["QuotedIdent"]

	elided = map[lexer.TokenType]bool{
		symbols["Comment"]:          true,
		symbols["MultilineComment"]: true,
		symbols["Whitespace"]:       true,
	}
)
