package exporter

import (
	"fmt"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"

	"globlex/internal/report"
	"globlex/internal/util"
)

var (
	darkGray   = color.Color{Red: 55, Green: 65, Blue: 81}
	mediumGray = color.Color{Red: 107, Green: 114, Blue: 128}
	stripe     = color.Color{Red: 241, Green: 245, Blue: 249}
)

// gridSizes 12 栅格：首列为指标名，其余列均分
func gridSizes(columns int) []uint {
	if columns <= 1 {
		return []uint{12}
	}
	rest := columns - 1
	per := 6 / rest
	if per < 1 {
		per = 1
	}
	first := 12 - per*rest
	if first < 1 {
		first = 1
	}
	sizes := make([]uint, 0, columns)
	sizes = append(sizes, uint(first))
	for i := 0; i < rest; i++ {
		sizes = append(sizes, uint(per))
	}
	return sizes
}

func tableProps(columns int) props.TableList {
	grid := gridSizes(columns)
	return props.TableList{
		HeaderProp: props.TableListContent{
			Size:      9,
			Style:     consts.Bold,
			GridSizes: grid,
		},
		ContentProp: props.TableListContent{
			Size:      8,
			GridSizes: grid,
		},
		Align:                consts.Left,
		AlternatedBackground: &stripe,
		HeaderContentSpace:   1,
		Line:                 false,
	}
}

func heading(m pdf.Maroto, title, subtitle string) {
	m.Row(10, func() {
		m.Col(12, func() {
			m.Text(title, props.Text{
				Size:  16,
				Style: consts.Bold,
				Color: darkGray,
			})
		})
	})
	if subtitle != "" {
		m.Row(6, func() {
			m.Col(12, func() {
				m.Text(subtitle, props.Text{
					Size:  9,
					Color: mediumGray,
				})
			})
		})
	}
	m.Row(6, func() {})
}

func sectionTitle(m pdf.Maroto, title string) {
	m.Row(8, func() {
		m.Col(12, func() {
			m.Text(title, props.Text{
				Size:  11,
				Style: consts.Bold,
				Color: darkGray,
				Top:   2,
			})
		})
	})
}

// ReportPDF 单产品报表 PDF：每个分组一张表
func (e *Exporter) ReportPDF(rep *report.Report) ([]byte, error) {
	if rep == nil || len(rep.Sections) == 0 {
		return nil, ErrEmptyReport
	}

	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(15, 12, 15)

	subtitle := ""
	if rep.ProductName != "" {
		subtitle = "Product: " + rep.ProductName
	}
	heading(m, "Unit Economics Report", subtitle)

	for _, sec := range rep.Sections {
		sectionTitle(m, sec.Title)
		table := sec.Table()
		m.TableList(table[0], table[1:], tableProps(len(table[0])))
		m.Row(4, func() {})
	}

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("生成 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// BatchPDF 批量报表 PDF：汇总 + 基准货币下的产品明细
func (e *Exporter) BatchPDF(data BatchData) ([]byte, error) {
	if data.Table == nil {
		return nil, ErrNilBatch
	}

	cur := data.BaseCurrency
	s := data.Summary

	m := pdf.NewMaroto(consts.Landscape, consts.A4)
	m.SetPageMargins(12, 12, 12)

	heading(m, "Batch Unit Economics", fmt.Sprintf("%d products, %s", s.ProductCount, util.FormatUnits(int(s.TotalUnits))))

	sectionTitle(m, "Summary")
	summary := [][]string{
		{"Direct Revenue", util.FormatMoney(s.DirectRevenue, string(cur))},
		{"Revenue Share", util.FormatMoney(s.RevenueShareTotal, string(cur))},
		{"Total Revenue", util.FormatMoney(s.TotalRevenue, string(cur))},
		{"Total COGS", util.FormatMoney(s.TotalCOGS, string(cur))},
		{"Gross Profit (Direct Revenue only)", util.FormatMoney(s.GrossProfitDirect, string(cur))},
		{"Gross Profit (Direct + Revenue Share)", util.FormatMoney(s.GrossProfitTotal, string(cur))},
		{"Operating Expenses Charged", util.FormatMoney(s.OperatingExpenseCharged, string(cur))},
		{"Net Profit (Direct + Revenue Share)", util.FormatMoney(s.NetProfitTotal, string(cur))},
		{"Mean Selling Price", util.FormatMoney(s.MeanSellingPrice, string(cur))},
		{"Gross Margin (Direct Revenue only)", util.FormatPercent(s.GrossMargin)},
	}
	if data.DroppedRows > 0 {
		summary = append(summary, []string{"Dropped Rows", fmt.Sprintf("%d", data.DroppedRows)})
	}
	m.TableList([]string{"Metric", "Value"}, summary, tableProps(2))

	// 明细表只取基准货币的关键列，全部列见 Excel
	columns := []string{
		fmt.Sprintf("Selling Price per Unit (%s)", cur),
		fmt.Sprintf("Total Revenue (%s)", cur),
		fmt.Sprintf("Total COGS (%s)", cur),
		fmt.Sprintf("Gross Profit (Direct + Revenue Share, %s)", cur),
		fmt.Sprintf("Net Profit (Direct + Revenue Share, %s)", cur),
	}
	values := make([][]float64, len(columns))
	for i, c := range columns {
		col, ok := data.Table.Column(c)
		if !ok {
			return nil, fmt.Errorf("批量表缺少列 %s", c)
		}
		values[i] = col
	}

	contents := make([][]string, 0, len(data.Table.Names))
	for r, name := range data.Table.Names {
		line := []string{name}
		for i := range columns {
			line = append(line, util.FormatAmount(values[i][r]))
		}
		contents = append(contents, line)
	}

	sectionTitle(m, fmt.Sprintf("Products (%s)", cur))
	header := []string{"Product", "Selling Price", "Total Revenue", "Total COGS", "Gross Profit", "Net Profit"}
	m.TableList(header, contents, props.TableList{
		HeaderProp: props.TableListContent{
			Size:      9,
			Style:     consts.Bold,
			GridSizes: []uint{2, 2, 2, 2, 2, 2},
		},
		ContentProp: props.TableListContent{
			Size:      8,
			GridSizes: []uint{2, 2, 2, 2, 2, 2},
		},
		Align:                consts.Left,
		AlternatedBackground: &stripe,
		HeaderContentSpace:   1,
	})

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("生成 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}
