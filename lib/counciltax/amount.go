package counciltax

import "strings"

var amountReplacer = strings.NewReplacer("£", "", ",", "")

// CleanAmount turns a displayed charge like "£1,234.56" into "1234.56".
func CleanAmount(text string) string {
	text = strings.TrimSpace(text)
	text = amountReplacer.Replace(text)
	return strings.TrimSpace(text)
}
