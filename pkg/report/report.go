package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pseudomuto/tsqlrunner/pkg/catalog"
	"github.com/pseudomuto/tsqlrunner/pkg/harness"
)

// Summary counts test outcomes.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Errored int
	Skipped int
}

// Summarize counts the outcomes in results.
func Summarize(results []*harness.TestResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Result {
		case harness.ResultSuccess:
			s.Passed++
		case harness.ResultSkipped:
			s.Skipped++
		case harness.ResultFailure:
			s.Failed++
		default:
			s.Errored++
		}
	}

	return s
}

// OK reports whether no test failed or errored.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Errored == 0
}

// String renders the summary in the form tSQLt prints it.
func (s Summary) String() string {
	return fmt.Sprintf("Test Case Summary: %d test case(s) executed, %d succeeded, %d skipped, %d failed, %d errored.",
		s.Total, s.Passed, s.Skipped, s.Failed, s.Errored)
}

// WriteResults renders results as a table followed by the summary line.
func WriteResults(w io.Writer, results []*harness.TestResult) error {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"#", "Test Case Name", "Duration", "Result"})

	for i, r := range results {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			r.FullName(),
			fmt.Sprintf("%dms", r.Duration.Milliseconds()),
			r.Result,
		})
	}

	table.Render()

	for _, r := range results {
		if r.Passed() || r.Message == "" {
			continue
		}

		if _, err := fmt.Fprintf(w, "\n%s failed: %s\n", r.FullName(), r.Message); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n%s\n", Summarize(results))
	return err
}

// WriteCatalog renders the test inventory as plain text.
func WriteCatalog(w io.Writer, cat *catalog.Catalog) error {
	var b strings.Builder

	for _, class := range cat.Classes {
		if class.File != "" {
			fmt.Fprintf(&b, "%s (%s:%d)\n", class.Name, class.File, class.Line)
		} else {
			fmt.Fprintf(&b, "%s\n", class.Name)
		}

		for _, test := range class.Tests {
			fmt.Fprintf(&b, "  %s (%s:%d)\n", test.Name, test.File, test.Line)
		}
	}

	if len(cat.Classes) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%d %s, %d %s\n",
		len(cat.Classes), plural(len(cat.Classes), "class", "classes"),
		cat.TestCount(), plural(cat.TestCount(), "test", "tests"),
	)

	_, err := io.WriteString(w, b.String())
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}
