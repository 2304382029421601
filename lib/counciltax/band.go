package counciltax

import "fmt"

// Band is one of the eight council tax tiers, its fraction is the multiplier
// relative to the Band D charge.
type Band struct {
	Code     string
	Fraction string
}

// Column is the csv column a band's charge is written to.
func (b Band) Column() string {
	return fmt.Sprintf("Band %s (%s)", b.Code, b.Fraction)
}

// Bands is the fixed A-H lookup, in column order.
var Bands = []Band{
	{Code: "A", Fraction: "6/9"},
	{Code: "B", Fraction: "7/9"},
	{Code: "C", Fraction: "8/9"},
	{Code: "D", Fraction: "9/9"},
	{Code: "E", Fraction: "11/9"},
	{Code: "F", Fraction: "13/9"},
	{Code: "G", Fraction: "15/9"},
	{Code: "H", Fraction: "18/9"},
}

func BandColumns() []string {
	columns := make([]string, len(Bands))
	for i, b := range Bands {
		columns[i] = b.Column()
	}
	return columns
}
