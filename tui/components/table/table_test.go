package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleTableContainsCells(t *testing.T) {
	out := SimpleTable([]string{"ID", "NAME"}, [][]string{{"1", "Cash"}, {"2", "Card"}})
	for _, s := range []string{"ID", "NAME", "Cash", "Card"} {
		assert.Contains(t, out, s)
	}
}

func TestSelectableTableRendersAllRows(t *testing.T) {
	out := SelectableTable([]string{"ID"}, [][]string{{"7"}, {"8"}}, 1)
	assert.Contains(t, out, "7")
	assert.Contains(t, out, "8")
}

func TestStatusTable(t *testing.T) {
	out := StatusTable([][2]string{{"Socket", "/tmp/d.sock"}, {"PID", "42"}})
	assert.Contains(t, out, "Socket:")
	assert.Contains(t, out, "/tmp/d.sock")
	assert.Contains(t, out, "42")
}
