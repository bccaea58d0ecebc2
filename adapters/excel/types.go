package excel

// ExcelData is a sheet read as strings: one header row naming the
// locations, then one row per observation.
type ExcelData struct {
	Headers []string   // location labels
	Rows    [][]string // observation rows
}
