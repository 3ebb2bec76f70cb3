package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/costlocker/reports/internal/domain/entity"
)

// formatValue renders a cell for document outputs.
func formatValue(column entity.Column, value any) string {
	if value == nil {
		return ""
	}
	f, isNumber := toFloat(value)
	if !isNumber {
		return fmt.Sprint(value)
	}
	switch column.Kind {
	case entity.ColumnMoney:
		return groupThousands(strconv.FormatFloat(f, 'f', 2, 64))
	case entity.ColumnHours:
		return strconv.FormatFloat(f, 'f', 2, 64)
	case entity.ColumnPercent:
		return strconv.FormatFloat(f*100, 'f', 1, 64) + " %"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// groupThousands inserts spaces between thousands, "1234567.50" becomes
// "1 234 567.50".
func groupThousands(number string) string {
	sign := ""
	if strings.HasPrefix(number, "-") {
		sign, number = "-", number[1:]
	}
	integer, fraction, _ := strings.Cut(number, ".")
	var b strings.Builder
	for i, digit := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(digit)
	}
	if fraction != "" {
		return sign + b.String() + "." + fraction
	}
	return sign + b.String()
}
