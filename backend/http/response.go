package http

import (
	"strings"

	"github.com/TFMV/chdriver/driver"
	"github.com/go-faster/errors"
	"github.com/tidwall/gjson"
)

// parseSelected decodes a JSONCompact response body into columns and rows.
// Shape: {"meta":[{"name":...,"type":...}],"data":[[...],...],"rows":N}
func parseSelected(body []byte) (*driver.Response, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("response body is not valid JSON")
	}

	meta := gjson.GetBytes(body, "meta")
	if !meta.Exists() {
		return nil, errors.New("response missing meta section")
	}

	var columns []string
	for _, col := range meta.Array() {
		columns = append(columns, col.Get("name").String())
	}

	var rows [][]interface{}
	for _, row := range gjson.GetBytes(body, "data").Array() {
		var values []interface{}
		for _, v := range row.Array() {
			values = append(values, v.Value())
		}
		rows = append(rows, values)
	}

	return &driver.Response{
		Command: driver.Selected,
		Columns: columns,
		Rows:    rows,
	}, nil
}

// parseUpdated builds the response for a write. The endpoint reports
// progress in a summary header; absent or unparseable summaries count as
// zero rather than failing the write.
func parseUpdated(summary string) *driver.Response {
	count := 0
	if summary != "" {
		if written := gjson.Get(summary, "written_rows"); written.Exists() {
			count = int(written.Int())
		}
	}

	return &driver.Response{Command: driver.Updated, Count: count}
}

// isEmptyBody reports whether the endpoint sent no result payload, which
// is how it acknowledges writes and DDL
func isEmptyBody(body []byte) bool {
	return len(strings.TrimSpace(string(body))) == 0
}
