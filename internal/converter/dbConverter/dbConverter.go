package dbConverter

import (
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/internal/model/dbModel"
)

func ConvertToSharedPortfolioItems(key string, items []model.PortfolioItem) []dbModel.SharedPortfolioItem {
	res := make([]dbModel.SharedPortfolioItem, 0, len(items))
	for i, item := range items {
		res = append(res, dbModel.SharedPortfolioItem{
			PortfolioID:         key,
			Ordinal:             i + 1,
			Ticker:              item.Ticker,
			PortfolioPercentage: item.PortfolioPercentage,
		})
	}
	return res
}

func ConvertSharedPortfolioItems(dbItems []dbModel.SharedPortfolioItem) []model.PortfolioItem {
	res := make([]model.PortfolioItem, 0, len(dbItems))
	for _, item := range dbItems {
		res = append(res, model.PortfolioItem{
			Ticker:              item.Ticker,
			PortfolioPercentage: item.PortfolioPercentage,
		})
	}
	return res
}
