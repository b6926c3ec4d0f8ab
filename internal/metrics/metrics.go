package metrics

import "example.com/aura-analytics/backend/internal/models"

// Result хранит агрегаты дашборда. JSON-теги повторяют ключи
// исходного фронтенда, который эти значения отображает.
type Result struct {
	GrossReturn    float64 `json:"retornoBruto"`
	AdSpend        float64 `json:"gastoAds"`
	FeesApplied    float64 `json:"taxasAplicadas"`
	CompletedSales int     `json:"vendasConcluidas"`
	NetProfit      float64 `json:"lucroLiquido"`
	ROI            float64 `json:"roi"`
}

// Compute сводит продажи и таксы в метрики дашборда. Чистая функция:
// результат не зависит от порядка продаж и такс.
func Compute(sales []models.Sale, fees []models.Fee) Result {
	var result Result

	// TODO: unique-таксы должны учитываться по выбранному периоду,
	// сейчас они начисляются один раз на вызов.
	var uniqueFees float64
	for _, fee := range fees {
		if fee.Type == models.FeeTypeUnique && fee.IsActive {
			uniqueFees += fee.Amount
		}
	}

	for _, sale := range sales {
		result.GrossReturn += sale.Amount
		result.AdSpend += sale.InvestedAmount
		result.CompletedSales++

		if !sale.ApplyFees {
			continue
		}

		for _, fee := range fees {
			if !fee.IsActive || fee.Type == models.FeeTypeUnique {
				continue
			}
			switch fee.Type {
			case models.FeeTypeFixed, models.FeeTypePerSale:
				result.FeesApplied += fee.Amount
			case models.FeeTypePercentage:
				result.FeesApplied += sale.Amount * (fee.Amount / 100)
			}
		}
	}

	result.FeesApplied += uniqueFees

	// Прибыль = возврат - (инвестиции + таксы); ROI как отношение, 1.0 = безубыток.
	divisor := result.AdSpend + result.FeesApplied
	result.NetProfit = result.GrossReturn - divisor
	if divisor > 0 {
		result.ROI = result.GrossReturn / divisor
	}

	return result
}
