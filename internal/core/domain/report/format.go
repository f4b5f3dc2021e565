// internal/core/domain/report/format.go
package report

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// placeholder выводится вместо отсутствующего значения
const placeholder = "—"

var numberPrinter = message.NewPrinter(language.English)

// FormatUSD сокращает суммы на порогах K/M/B, ниже 1000 - с разделителями тысяч
func FormatUSD(v *float64) string {
	if v == nil {
		return placeholder
	}
	x := *v
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}
	switch {
	case x >= 1_000_000_000:
		return fmt.Sprintf("%s$%.2fB", sign, x/1_000_000_000)
	case x >= 1_000_000:
		return fmt.Sprintf("%s$%.2fM", sign, x/1_000_000)
	case x >= 1_000:
		return fmt.Sprintf("%s$%.2fK", sign, x/1_000)
	default:
		return sign + "$" + groupThousands(x)
	}
}

// FormatPrice цена с 4 знаками
func FormatPrice(v *float64) string {
	if v == nil {
		return placeholder
	}
	return fmt.Sprintf("$%.4f", *v)
}

// FormatPercent процент со знаком и 2 знаками
func FormatPercent(v *float64) string {
	if v == nil {
		return placeholder
	}
	return fmt.Sprintf("%+.2f%%", *v)
}

// FormatFunding переводит долю в проценты с 4 знаками: 0.0001 -> +0.0100%
func FormatFunding(v *float64) string {
	if v == nil {
		return placeholder
	}
	return fmt.Sprintf("%+.4f%%", *v*100)
}

// FormatNumber число с разделителями тысяч и 2 знаками
func FormatNumber(v *float64) string {
	if v == nil {
		return placeholder
	}
	if *v < 0 {
		return "-" + groupThousands(-*v)
	}
	return groupThousands(*v)
}

// FormatSignedNumber как FormatNumber, но всегда со знаком
func FormatSignedNumber(v *float64) string {
	if v == nil {
		return placeholder
	}
	if *v < 0 {
		return "-" + groupThousands(-*v)
	}
	return "+" + groupThousands(*v)
}

func groupThousands(x float64) string {
	return numberPrinter.Sprintf("%.2f", x)
}
