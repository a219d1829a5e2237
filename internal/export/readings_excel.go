package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rrsc/House-Monitor-IoT-System/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ReadingsBaseHeader 读数导出固定表头，data type 列在其后动态追加
var ReadingsBaseHeader = []string{
	"Border Router IP",
	"Border Router Name",
	"Sensor IP",
	"Sensor Name",
	"Timestamp",
}

// GenerateReadingsExport 把网络视图导出为 Excel 文件
// 每条读数一行；view 为 nil 时只生成表头
func GenerateReadingsExport(view *domain.NetworkView, dataTypes []string) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Sensor Readings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	// 删除默认的 Sheet1
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	headers := append(append([]string{}, ReadingsBaseHeader...), dataTypes...)
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	if view != nil {
		rowNum := 2
		for _, routerView := range view.BorderRouters {
			for _, sensorView := range routerView.Sensors {
				for _, reading := range sensorView.Readings {
					row := make([]any, 0, len(headers))
					row = append(row,
						routerView.BorderRouter.IP,
						routerView.BorderRouter.Name,
						sensorView.Sensor.IP,
						sensorView.Sensor.Name,
						reading.Timestamp.UTC().Format(time.RFC3339),
					)
					for _, dt := range dataTypes {
						row = append(row, reading.Values[dt])
					}

					cell, err := excelize.CoordinatesToCellName(1, rowNum)
					if err != nil {
						f.Close()
						return nil, fmt.Errorf("failed to build cell name: %w", err)
					}
					if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
						f.Close()
						return nil, fmt.Errorf("failed to set row: %w", err)
					}
					rowNum++
				}
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write excel file: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel file: %w", err)
	}

	return buf.Bytes(), nil
}
