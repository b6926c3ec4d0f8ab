package ledger

import (
	"strings"
	"time"

	"example.com/aura-analytics/backend/internal/models"
)

const dateLayout = "2006-01-02"

// SelectSales возвращает продажи, чья календарная дата попадает в окно
// фильтра. Сравнение идет по строке даты (UTC), время суток игнорируется.
// "This Week", "This Month" и "Custom" пропускают все продажи:
// границы недели и месяца не сужают выборку.
func SelectSales(sales []models.Sale, filter models.DateFilter, now time.Time) []models.Sale {
	today := now.UTC().Format(dateLayout)
	yesterday := now.UTC().AddDate(0, 0, -1).Format(dateLayout)

	selected := make([]models.Sale, 0, len(sales))
	for _, sale := range sales {
		day := datePart(sale.SaleDate)
		switch filter {
		case models.FilterToday:
			if day == today {
				selected = append(selected, sale)
			}
		case models.FilterYesterday:
			if day == yesterday {
				selected = append(selected, sale)
			}
		default:
			selected = append(selected, sale)
		}
	}

	return selected
}

func datePart(isoTimestamp string) string {
	day, _, _ := strings.Cut(isoTimestamp, "T")
	return day
}
