package script

import (
	"bufio"
	"io"
	"io/fs"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxLineSize bounds a single line; vendored framework scripts carry long
// encoded assembly literals.
const maxLineSize = 16 * 1024 * 1024

type (
	// Script is the ordered content of a SQL script file.
	Script struct {
		// Path identifies where the script was loaded from.
		Path string

		// Lines holds the file content split on line endings, without terminators.
		Lines []string
	}

	// Batch is a contiguous run of script lines sent to the server as one command.
	Batch struct {
		// Index is the 1-based position of the batch within its script.
		Index int

		// Line is the 1-based line number of the first line in the batch.
		Line int

		// SQL is the batch text, lines joined with "\n".
		SQL string
	}

	// TrailingPolicy decides what happens to lines after the last delimiter.
	TrailingPolicy int
)

const (
	// FlushTrailing emits a non-blank remainder as the final batch.
	FlushTrailing TrailingPolicy = iota

	// DropTrailing discards anything after the last delimiter.
	DropTrailing
)

// String returns the configuration spelling of the policy.
func (p TrailingPolicy) String() string {
	if p == DropTrailing {
		return "drop"
	}

	return "flush"
}

// ParseTrailingPolicy converts a configuration value into a TrailingPolicy.
// The empty string selects FlushTrailing.
func ParseTrailingPolicy(s string) (TrailingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "flush":
		return FlushTrailing, nil
	case "drop":
		return DropTrailing, nil
	default:
		return FlushTrailing, errors.Errorf("unknown trailing batch policy: %q (expected flush or drop)", s)
	}
}

// IsDelimiter reports whether line separates two batches.
func IsDelimiter(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), "go")
}

// Load reads the script at path from fsys.
//
// Example:
//
//	s, err := script.Load(os.DirFS(root), "tSQLt_V1.0.8083.3529/PrepareServer.sql")
//	if err != nil {
//		return err
//	}
func Load(fsys fs.FS, path string) (*Script, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open script: %s", path)
	}
	defer func() { _ = f.Close() }()

	return Parse(path, f)
}

// Parse reads a script from r. A UTF-8 byte order mark is dropped and UTF-16
// content with a byte order mark is decoded; anything else is read as UTF-8.
func Parse(path string, r io.Reader) (*Script, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	s := &Script{Path: path}
	for scanner.Scan() {
		s.Lines = append(s.Lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read script: %s", path)
	}

	return s, nil
}

// Batches splits the script at delimiter lines. Blank batches are skipped.
//
// Example:
//
//	s := &script.Script{Lines: []string{"CREATE TABLE t(x int)", "GO", "INSERT INTO t VALUES(1)", "GO"}}
//	for _, b := range s.Batches(script.FlushTrailing) {
//		fmt.Println(b.SQL)
//	}
//	// CREATE TABLE t(x int)
//	// INSERT INTO t VALUES(1)
func (s *Script) Batches(policy TrailingPolicy) []*Batch {
	var (
		batches []*Batch
		buf     []string
		start   int
	)

	emit := func() {
		sql := strings.Join(buf, "\n")
		if strings.TrimSpace(sql) != "" {
			batches = append(batches, &Batch{
				Index: len(batches) + 1,
				Line:  start,
				SQL:   sql,
			})
		}
		buf = buf[:0]
	}

	for i, line := range s.Lines {
		if IsDelimiter(line) {
			emit()
			continue
		}

		if len(buf) == 0 {
			start = i + 1
		}
		buf = append(buf, line)
	}

	if policy == FlushTrailing {
		emit()
	}

	return batches
}
