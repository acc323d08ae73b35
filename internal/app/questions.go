package app

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/rbright/mockview/internal/questionbank"
)

const minQuestionColumn = 12

type questionRow struct {
	role, kind, count, first string
}

// terminalWidth returns the column count of w, or 0 when w is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// writeQuestionTable prints one aligned row per combo. A positive width
// truncates the first-question column to fit.
func writeQuestionTable(w io.Writer, bank *questionbank.Bank, width int) {
	rows := []questionRow{{"ROLE", "TYPE", "COUNT", "FIRST QUESTION"}}
	for _, role := range bank.Roles() {
		for _, kind := range bank.Types() {
			questions, _ := bank.Questions(role, kind)
			first := "-"
			if len(questions) > 0 {
				first = questions[0]
			}
			rows = append(rows, questionRow{string(role), string(kind), strconv.Itoa(len(questions)), first})
		}
	}

	roleWidth, kindWidth, countWidth := 0, 0, 0
	for _, row := range rows {
		roleWidth = max(roleWidth, runewidth.StringWidth(row.role))
		kindWidth = max(kindWidth, runewidth.StringWidth(row.kind))
		countWidth = max(countWidth, runewidth.StringWidth(row.count))
	}
	lead := roleWidth + kindWidth + countWidth + 6

	for _, row := range rows {
		first := row.first
		if width > 0 {
			first = runewidth.Truncate(first, max(width-lead, minQuestionColumn), "…")
		}
		line := strings.Join([]string{
			runewidth.FillRight(row.role, roleWidth),
			runewidth.FillRight(row.kind, kindWidth),
			runewidth.FillLeft(row.count, countWidth),
			first,
		}, "  ")
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\n%d roles, %d interview types, %d questions\n", len(bank.Roles()), len(bank.Types()), bank.Total())
}
