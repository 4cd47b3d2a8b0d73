package tableprinter_test

import (
	"bytes"
	"testing"

	"go.arcalot.io/assert"
	"go.flow.arcalot.io/stepmonitor/internal/tableprinter"
)

const basicTwoColTable = `FUNCTION   MODEL   
a           1
b           2
c           3
`

func TestPrintTwoColumnTable(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	headers := []string{"function", "model"}
	rows := [][]string{
		{"a", "1"},
		{"b", "2"},
		{"c", "3"},
	}
	tableprinter.PrintTwoColumnTable(buf, headers, rows)
	assert.Equals(t, buf.String(), basicTwoColTable)
}

func TestPrintSteps(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	tableprinter.PrintSteps(
		buf,
		[]string{"b", "a"},
		map[string]string{"a": "first"},
	)
	expected := bytes.NewBuffer(nil)
	tableprinter.PrintTwoColumnTable(
		expected,
		[]string{"step", "description"},
		[][]string{{"a", "first"}, {"b", "-"}},
	)
	assert.Equals(t, buf.String(), expected.String())
	assert.Contains(t, buf.String(), "STEP")
}
