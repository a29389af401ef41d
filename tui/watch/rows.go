// Package watch renders the store as tables: statically for the state
// command and live in the watch view.
package watch

import (
	"sort"
	"strconv"

	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/pkg/models"
)

// List is one of the store's lists prepared for display.
type List struct {
	Title   string
	Field   store.Field
	Headers []string
	Rows    [][]string
	// IDs holds the id of each row, in row order.
	IDs []int64
	// Selected is the row holding the current selection, or -1.
	Selected int
}

// Lists returns every list of st in display order.
func Lists(st store.State) []List {
	lists := []List{
		lookupList("Payment types", store.FieldPaymentType, st.PaymentTypes),
		fileTypeList(st.FileTypes),
		sheetTypeList(st.SheetTypes),
		lookupList("Flow command types", store.FieldFlowCommandType, st.FlowCommandTypes),
		lookupList("Data command types", store.FieldDataCommandType, st.DataCommandTypes),
		commandList("Flow commands", store.FieldFlowCommand, st.FlowCommands),
		commandList("Data commands", store.FieldDataCommand, st.DataCommands),
	}
	for i := range lists {
		lists[i].Selected = indexOf(lists[i].IDs, st.Selections.Get(lists[i].Field))
	}
	return lists
}

func lookupList(title string, field store.Field, opts []models.LookupOption) List {
	l := List{Title: title, Field: field, Headers: []string{"ID", "LABEL"}}
	for _, o := range opts {
		l.Rows = append(l.Rows, []string{formatID(o.Value), o.Label})
		l.IDs = append(l.IDs, o.Value)
	}
	return l
}

func fileTypeList(opts []models.FileTypeOption) List {
	l := List{Title: "File types", Field: store.FieldFileType, Headers: []string{"ID", "LABEL", "PAYMENT TYPE"}}
	for _, o := range opts {
		l.Rows = append(l.Rows, []string{formatID(o.Value), o.Label, FormatRef(o.PaymentTypeID)})
		l.IDs = append(l.IDs, o.Value)
	}
	return l
}

func sheetTypeList(opts []models.SheetTypeOption) List {
	l := List{Title: "Sheet types", Field: store.FieldSheetType, Headers: []string{"ID", "LABEL", "FILE TYPE"}}
	for _, o := range opts {
		l.Rows = append(l.Rows, []string{formatID(o.Value), o.Label, FormatRef(o.FileTypeID)})
		l.IDs = append(l.IDs, o.Value)
	}
	return l
}

// commandList shows the id, the sheet type and the remaining attributes in
// key order.
func commandList(title string, field store.Field, cmds []models.Command) List {
	l := List{Title: title, Field: field, Headers: []string{"ID", "SHEET TYPE", "ATTRIBUTES"}}
	for _, c := range cmds {
		id, _ := c.ID()
		sheet := "global"
		if s, ok := c.SheetTypeID(); ok {
			sheet = formatID(s)
		}
		l.Rows = append(l.Rows, []string{formatID(id), sheet, attributes(c)})
		l.IDs = append(l.IDs, id)
	}
	return l
}

func attributes(c models.Command) string {
	keys := make([]string, 0, len(c))
	for k := range c {
		if k == "id" || k == models.SheetTypeField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += k + "=" + formatValue(c[k])
	}
	return out
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case interface{ String() string }:
		return x.String()
	}
	return "…"
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// FormatRef renders an optional id, with "-" for none.
func FormatRef(id *int64) string {
	if id == nil {
		return "-"
	}
	return formatID(*id)
}

func indexOf(ids []int64, id *int64) int {
	if id == nil {
		return -1
	}
	for i, v := range ids {
		if v == *id {
			return i
		}
	}
	return -1
}
