package grid

import (
	"strconv"
	"strings"

	"gridbench/internal/data"
)

// Column identifiers understood by the grid, in display order.
const (
	ColumnImageURL = "imageUrl"
	ColumnID       = "id"
	ColumnMake     = "make"
	ColumnModel    = "model"
	ColumnPrice    = "price"
	ColumnValue    = "value"
)

// Columns lists every column in display order.
var Columns = []string{ColumnImageURL, ColumnID, ColumnMake, ColumnModel, ColumnPrice, ColumnValue}

// KnownColumn reports whether colID names a grid column.
func KnownColumn(colID string) bool {
	for _, column := range Columns {
		if column == colID {
			return true
		}
	}

	return false
}

// cellText renders a single cell the way the quick filter and group keys see it.
func cellText(row data.Row, colID string) string {
	switch colID {
	case ColumnImageURL:
		return row.ImageURL
	case ColumnID:
		return strconv.Itoa(row.ID)
	case ColumnMake:
		return row.Make
	case ColumnModel:
		return row.Model
	case ColumnPrice:
		return strconv.Itoa(row.Price)
	case ColumnValue:
		return strconv.FormatFloat(row.Value, 'f', 4, 64)
	default:
		return ""
	}
}

// compareCells orders two rows by a single column. Numeric columns compare numerically; the rest
// compare lexically.
func compareCells(a data.Row, b data.Row, colID string) int {
	switch colID {
	case ColumnID:
		return compareInts(a.ID, b.ID)
	case ColumnPrice:
		return compareInts(a.Price, b.Price)
	case ColumnValue:
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		default:
			return 0
		}
	default:
		return strings.Compare(cellText(a, colID), cellText(b, colID))
	}
}

func compareInts(a int, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
