package catalog

import (
	"io"
	"io/fs"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/script"
	"github.com/pseudomuto/tsqlrunner/pkg/utils"
)

// testPrefix is the name prefix tSQLt uses to recognise test procedures.
const testPrefix = "test"

type (
	// Test is a test procedure defined in a test class.
	Test struct {
		Class string
		Name  string
		File  string
		Line  int
	}

	// Class is a tSQLt test class (a schema created with tSQLt.NewTestClass).
	Class struct {
		Name  string
		File  string
		Line  int
		Tests []*Test
	}

	// File holds the declarations found in a single script.
	File struct {
		Path    string
		Classes []*Class
		Tests   []*Test
	}

	// Catalog is the inventory of test classes across a set of scripts.
	Catalog struct {
		Classes []*Class
	}
)

// Scan finds test class declarations and test procedures in a script.
//
// Recognised forms:
//
//	EXEC tSQLt.NewTestClass 'OrderTests';
//	EXECUTE [tSQLt].[NewTestClass] @ClassName = N'OrderTests';
//	CREATE PROCEDURE OrderTests.[test totals are rounded] AS ...
//	CREATE OR ALTER PROC [OrderTests].[test empty order] AS ...
//
// Text in comments and string literals is never matched.
func Scan(path string, r io.Reader) (*File, error) {
	lex, err := tsqlLexer.Lex(path, r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to tokenize %s", path)
	}

	all, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to tokenize %s", path)
	}

	tokens := make([]lexer.Token, 0, len(all))
	for _, tok := range all {
		if !elided[tok.Type] {
			tokens = append(tokens, tok)
		}
	}

	file := &File{Path: path}
	for i := 0; i < len(tokens); i++ {
		switch strings.ToUpper(tokens[i].Value) {
		case "EXEC", "EXECUTE":
			if tokens[i].Type != tokenIdent {
				continue
			}

			if name, ok := newTestClass(tokens, i+1); ok {
				file.Classes = append(file.Classes, &Class{
					Name: name,
					File: path,
					Line: tokens[i].Pos.Line,
				})
			}

		case "CREATE":
			if tokens[i].Type != tokenIdent {
				continue
			}

			if parts, ok := createProcedure(tokens, i+1); ok && len(parts) == 2 && isTestName(parts[1]) {
				file.Tests = append(file.Tests, &Test{
					Class: parts[0],
					Name:  parts[1],
					File:  path,
					Line:  tokens[i].Pos.Line,
				})
			}
		}
	}

	return file, nil
}

// Build scans every script in paths and groups tests by class. Classes keep
// the order in which they are first declared; tests in a schema that is never
// declared with tSQLt.NewTestClass are still listed under that schema.
func Build(fsys fs.FS, paths []string) (*Catalog, error) {
	cat := &Catalog{}

	var tests []*Test
	for _, path := range paths {
		s, err := script.Load(fsys, path)
		if err != nil {
			return nil, err
		}

		file, err := Scan(path, strings.NewReader(strings.Join(s.Lines, "\n")))
		if err != nil {
			return nil, err
		}

		for _, class := range file.Classes {
			if cat.Class(class.Name) == nil {
				cat.Classes = append(cat.Classes, class)
			}
		}

		tests = append(tests, file.Tests...)
	}

	for _, test := range tests {
		class := cat.Class(test.Class)
		if class == nil {
			class = &Class{Name: test.Class}
			cat.Classes = append(cat.Classes, class)
		}

		if class.test(test.Name) == nil {
			class.Tests = append(class.Tests, test)
		}
	}

	return cat, nil
}

// Class returns the class with the given name (compared case-insensitively,
// like SQL Server schema names), or nil.
func (c *Catalog) Class(name string) *Class {
	for _, class := range c.Classes {
		if strings.EqualFold(class.Name, name) {
			return class
		}
	}

	return nil
}

// TestCount returns the number of tests across all classes.
func (c *Catalog) TestCount() int {
	n := 0
	for _, class := range c.Classes {
		n += len(class.Tests)
	}

	return n
}

func (c *Class) test(name string) *Test {
	for _, t := range c.Tests {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}

	return nil
}

// newTestClass matches `tSQLt.NewTestClass [@ClassName =] '<name>'` at i.
func newTestClass(tokens []lexer.Token, i int) (string, bool) {
	parts, next := qualifiedName(tokens, i)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "tSQLt") || !strings.EqualFold(parts[1], "NewTestClass") {
		return "", false
	}

	if next < len(tokens) && tokens[next].Type == tokenVar {
		if !strings.EqualFold(tokens[next].Value, "@ClassName") {
			return "", false
		}

		if next+1 >= len(tokens) || tokens[next+1].Value != "=" {
			return "", false
		}
		next += 2
	}

	if next >= len(tokens) || tokens[next].Type != tokenString {
		return "", false
	}

	return utils.UnquoteString(tokens[next].Value), true
}

// createProcedure matches `[OR ALTER] PROC[EDURE] <name>` at i and returns
// the parts of the procedure name.
func createProcedure(tokens []lexer.Token, i int) ([]string, bool) {
	if keyword(tokens, i, "OR") && keyword(tokens, i+1, "ALTER") {
		i += 2
	}

	if !keyword(tokens, i, "PROC") && !keyword(tokens, i, "PROCEDURE") {
		return nil, false
	}

	parts, _ := qualifiedName(tokens, i+1)
	return parts, len(parts) > 0
}

// qualifiedName reads a dotted, possibly quoted, name starting at i and
// returns its unquoted parts along with the index of the following token.
func qualifiedName(tokens []lexer.Token, i int) ([]string, int) {
	var parts []string

	for i < len(tokens) && isName(tokens[i]) {
		parts = append(parts, utils.UnquoteIdentifier(tokens[i].Value))
		i++

		if i+1 < len(tokens) && tokens[i].Type == tokenPunct && tokens[i].Value == "." && isName(tokens[i+1]) {
			i++
			continue
		}

		break
	}

	return parts, i
}

func isName(tok lexer.Token) bool {
	return tok.Type == tokenIdent || tok.Type == tokenBracket || tok.Type == tokenQuoted
}

func isTestName(name string) bool {
	return len(name) >= len(testPrefix) && strings.EqualFold(name[:len(testPrefix)], testPrefix)
}

func keyword(tokens []lexer.Token, i int, word string) bool {
	return i < len(tokens) && tokens[i].Type == tokenIdent && strings.EqualFold(tokens[i].Value, word)
}
