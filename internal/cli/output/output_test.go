package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	ID    string  `json:"id" yaml:"id"`
	Price float64 `json:"price" yaml:"price"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, FormatTable)

	err := p.Print([]listing{{ID: "p1", Price: 10}}, func() Table {
		return Table{
			Header: []string{"ID", "PRICE"},
			Rows:   [][]string{{"p1", "10"}},
		}
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "ID  PRICE")
	assert.Contains(t, out, "──")
	assert.Contains(t, out, "p1  10")
}

func TestPrintMachineFormats(t *testing.T) {
	v := listing{ID: "p1", Price: 10}
	tableCalled := false
	table := func() Table {
		tableCalled = true
		return Table{}
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatJSON).Print(v, table))
	assert.JSONEq(t, `{"id":"p1","price":10}`, buf.String())

	buf.Reset()
	require.NoError(t, New(&buf, FormatYAML).Print(v, table))
	assert.YAMLEq(t, "id: p1\nprice: 10\n", buf.String())

	assert.False(t, tableCalled)
}

func TestMessagesOnlyInTableMode(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, FormatJSON).Successf("done %d", 1)
	New(&buf, FormatYAML).Infof("note")
	assert.Empty(t, buf.String())

	New(&buf, FormatTable).Successf("done %d", 1)
	assert.Equal(t, "✓ done 1\n", buf.String())
}

func TestKeyValues(t *testing.T) {
	tbl := KeyValues("Email", "a@b.c", "Role", "admin", "dangling")
	assert.Equal(t, [][]string{{"Email:", "a@b.c"}, {"Role:", "admin"}}, tbl.Rows)
	assert.Empty(t, tbl.Header)
}
