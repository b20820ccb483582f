package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Dosada05/league-stats/models"
)

var ErrEmptyTable = errors.New("table has no header row")

const sheetChrome = "th.row-headers-background, th.column-headers-background, td.freezebar-cell, th.freezebar-cell"

// ParseCSV reads a CSV table, trimming every cell and dropping lines with no content.
// Row lengths are not checked here; ragged rows are reported by the scoring engine.
func ParseCSV(r io.Reader) (models.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Table{}, fmt.Errorf("read csv: %w", err)
		}
		records = append(records, rec)
	}
	return buildTable(records)
}

// ParseHTMLTable reads the first <table> of a published sheet page.
func ParseHTMLTable(r io.Reader) (models.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return models.Table{}, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return models.Table{}, ErrEmptyTable
	}

	// Published sheets add a row-number gutter and a column-letter row; neither carries data.
	table.Find(sheetChrome).Remove()

	var records [][]string
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var rec []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			rec = append(rec, cell.Text())
		})
		records = append(records, rec)
	})
	return buildTable(records)
}

func buildTable(records [][]string) (models.Table, error) {
	var rows [][]string
	for _, rec := range records {
		cells := make([]string, len(rec))
		empty := true
		for i, c := range rec {
			cells[i] = strings.TrimSpace(c)
			if cells[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return models.Table{}, ErrEmptyTable
	}
	return models.Table{Header: rows[0], Rows: rows[1:]}, nil
}
