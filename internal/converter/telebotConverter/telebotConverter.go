package telebotConverter

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/internal/model/tg/tgCallback"
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const defaultCurrency = "USD"

var periodTitles = []struct {
	window model.ChartWindow
	title  string
}{
	{model.ChartWindow{Period: model.PeriodWeek, Interval: model.IntervalDay}, "неделя"},
	{model.ChartWindow{Period: model.PeriodMonth, Interval: model.IntervalDay}, "месяц"},
	{model.ChartWindow{Period: model.PeriodYear, Interval: model.IntervalWeek}, "год"},
}

// FormatMoney renders amount in the currency's own notation.
func FormatMoney(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = defaultCurrency
	}
	return money.NewFromFloat(amount.InexactFloat64(), strings.ToUpper(currency)).Display()
}

func PortfolioSummaryResponse(summary model.PortfolioSummary) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString("📊 Портфель\n")
	sb.WriteString(fmt.Sprintf("💰 Сумма: %s\n", FormatMoney(summary.TotalValue, defaultCurrency)))
	sb.WriteString(fmt.Sprintf(" - Распределено %s%%\n", summary.TotalPercentage.StringFixed(1)))
	sb.WriteString(fmt.Sprintf(" - График: %s / %s\n\n", summary.ChartWindow.Period, summary.ChartWindow.Interval))

	if len(summary.Holdings) == 0 {
		sb.WriteString("Портфель пуст. Отправьте тикер, чтобы добавить акцию.\n")
	}

	rows := make([]tele.Row, 0, len(summary.Holdings)+2)
	for i, h := range summary.Holdings {
		sb.WriteString(fmt.Sprintf("%d. **%s**", i+1, h.Ticker))
		if h.Name != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", h.Name))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("   ▸ Цена: %s (%s%%)\n", FormatMoney(h.CurrentPrice, h.Currency), signed(h.DayChange())))
		sb.WriteString(fmt.Sprintf("   ▸ Вес: **%s%%**, доступно %s%%\n", h.PortfolioPercentage.StringFixed(1), h.AvailablePercentage.StringFixed(1)))
		sb.WriteString(fmt.Sprintf("   ▸ Кол-во: **%d шт.**\n\n", h.EstimatedShares))

		rows = append(rows, markup.Row(
			markup.Data("🔄 "+h.Ticker, tgCallback.RefreshPrefix+h.Ticker),
			markup.Data("❌ "+h.Ticker, tgCallback.DeletePrefix+h.Ticker),
		))
	}

	periodBtns := make([]tele.Btn, 0, len(periodTitles))
	for _, p := range periodTitles {
		title := p.title
		if p.window == summary.ChartWindow {
			title = "• " + title
		}
		periodBtns = append(periodBtns, markup.Data(title, tgCallback.PeriodPrefix+string(p.window.Period)+":"+string(p.window.Interval)))
	}
	rows = append(rows, markup.Row(periodBtns...))

	rows = append(rows, markup.Row(
		markup.Data("🔄 Обновить все", tgCallback.RefreshAll),
		markup.Data("🔗 Поделиться", tgCallback.Share),
	))

	markup.Inline(rows...)

	return sb.String(), markup
}

// ParsePeriodCallback parses the payload of a period button, "y:1wk" and alike.
func ParsePeriodCallback(data string) (model.ChartWindow, bool) {
	period, interval, ok := strings.Cut(strings.TrimPrefix(data, tgCallback.PeriodPrefix), ":")
	if !ok {
		return model.ChartWindow{}, false
	}
	window := model.ChartWindow{Period: model.Period(period), Interval: model.Interval(interval)}
	return window, window.Period.Valid() && window.Interval.Valid()
}

func signed(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.IsPositive() {
		return "+" + s
	}
	return s
}
