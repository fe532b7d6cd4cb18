package markitdown

import (
	"errors"
	"fmt"
	"io"

	"github.com/extrame/xls"
)

// XlsConverter handles legacy XLS files. Each non-empty sheet is one page.
type XlsConverter struct{}

// NewXlsConverter creates a new XlsConverter.
func NewXlsConverter() *XlsConverter {
	return &XlsConverter{}
}

func (c *XlsConverter) Accepts(info StreamInfo) bool {
	return acceptsFormat(info, []string{".xls"}, []string{"application/vnd.ms-excel"})
}

func (c *XlsConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (result *DocumentConverterResult, err error) {
	// The BIFF reader panics on some malformed workbooks.
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("read XLS: panic: %v", r)
		}
	}()

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	wb, err := xls.OpenReader(reader, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open XLS: %w", err)
	}
	if wb == nil {
		return nil, errors.New("open XLS: no workbook stream")
	}

	var sheets []string
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}

		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for col := 0; col < row.LastCol(); col++ {
				cells = append(cells, row.Col(col))
			}
			rows = append(rows, cells)
		}

		if page := renderSheet(name, rows); page != "" {
			sheets = append(sheets, page)
		}
	}

	return pagedResult(sheets, "", opts), nil
}
