package dto

// SheetValues — ответ Sheets API v4 на запрос values/{range}.
type SheetValues struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

// Column возвращает непустые значения столбца idx во всех строках после заголовка.
func (v SheetValues) Column(idx int) []string {
	var out []string
	for i, row := range v.Values {
		if i == 0 || idx >= len(row) {
			continue
		}
		if row[idx] != "" {
			out = append(out, row[idx])
		}
	}
	return out
}
