// Package export renders the active session as a CSV table.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stemsi/exstem-prep/internal/bank"
)

// Header is the first line of every export.
const Header = "id,question,selected,correct,flagged"

// CSV renders one row per question id in order. The question column is
// always quoted; selected and correct are original option indices, and
// selected is blank when unanswered. Rows are joined by "\n" with no
// trailing newline.
func CSV(b *bank.Bank, ids []int, answers map[int]int, flags map[int]bool) (string, error) {
	questions, err := b.Lookup(ids)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	lines := make([]string, 0, len(questions)+1)
	lines = append(lines, Header)

	for _, q := range questions {
		selected := ""
		if sel, ok := answers[q.ID]; ok {
			selected = strconv.Itoa(sel)
		}
		flagged := "0"
		if flags[q.ID] {
			flagged = "1"
		}
		lines = append(lines, strings.Join([]string{
			strconv.Itoa(q.ID),
			quote(q.Question),
			selected,
			strconv.Itoa(q.Correct),
			flagged,
		}, ","))
	}
	return strings.Join(lines, "\n"), nil
}

// WriteCSV writes the CSV rendering to w.
func WriteCSV(w io.Writer, b *bank.Bank, ids []int, answers map[int]int, flags map[int]bool) error {
	out, err := CSV(b, ids, answers, flags)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
