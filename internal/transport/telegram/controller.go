package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KotFed0t/portfolio_builder/internal/converter/telebotConverter"
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/internal/model/tg/tgCallback"
	"github.com/KotFed0t/portfolio_builder/internal/service"
	"github.com/KotFed0t/portfolio_builder/internal/service/portfolioService"
	"github.com/KotFed0t/portfolio_builder/utils"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg = "что-то пошло не так..."
	helpMsg        = "Отправьте тикер, чтобы добавить акцию.\n\n" +
		"/weight ТИКЕР ПРОЦЕНТ - задать вес\n" +
		"/value СУММА - сумма портфеля\n" +
		"/delete ТИКЕР - удалить акцию\n" +
		"/refresh [ТИКЕР] - обновить котировки\n" +
		"/period y|M|w 1d|1wk|1mo - окно графика\n" +
		"/portfolio - показать портфель\n" +
		"/share - ссылка на портфель\n" +
		"/export - выгрузить в excel"
)

type PortfolioService interface {
	Portfolio(ctx context.Context, owner string) *portfolioService.Portfolio
	LoadShared(ctx context.Context, owner string, key string) (*portfolioService.Portfolio, []model.PortfolioItem, error)
	ExportReport(ctx context.Context, owner string) (string, error)
}

type Controller struct {
	portfolioService PortfolioService
}

func NewController(portfolioService PortfolioService) *Controller {
	return &Controller{portfolioService: portfolioService}
}

func owner(c tele.Context) string {
	return strconv.FormatInt(c.Chat().ID, 10)
}

func (ctrl *Controller) portfolio(ctx context.Context, c tele.Context) *portfolioService.Portfolio {
	return ctrl.portfolioService.Portfolio(ctx, owner(c))
}

func (ctrl *Controller) sendSummary(c tele.Context, p *portfolioService.Portfolio) error {
	text, markup := telebotConverter.PortfolioSummaryResponse(p.Summary())
	return c.Send(text, markup, tele.ModeMarkdown)
}

// Start открывает портфель, с ключом снапшота подгружает чужой портфель
func (ctrl *Controller) Start(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	key := strings.TrimSpace(c.Message().Payload)
	if key == "" {
		p := ctrl.portfolio(ctx, c)
		_ = c.Send("Привет! Я помогу собрать портфель.\n\n" + helpMsg)
		return ctrl.sendSummary(c, p)
	}

	p, items, err := ctrl.portfolioService.LoadShared(ctx, owner(c), key)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Send("Портфель по ссылке не найден")
		}
		slog.Error("got error from portfolioService.LoadShared", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	p.Wait()
	_ = c.Send("Загружено акций: " + strconv.Itoa(len(items)))
	return ctrl.sendSummary(c, p)
}

func (ctrl *Controller) Help(c tele.Context) error {
	return c.Send(helpMsg)
}

func (ctrl *Controller) ShowPortfolio(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	return ctrl.sendSummary(c, ctrl.portfolio(ctx, c))
}

// ProcessTicker обрабатывает ввод тикера и сразу добавляет его в портфель
func (ctrl *Controller) ProcessTicker(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	p := ctrl.portfolio(ctx, c)

	p.SetTickerSearch(c.Text())

	return ctrl.addQuote(ctx, c, p, p.TickerSearch(), decimal.Zero)
}

func (ctrl *Controller) AddStock(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	args := c.Args()
	if len(args) == 0 {
		return c.Send("Укажите тикер: /add ТИКЕР [ПРОЦЕНТ]")
	}

	percentage := decimal.Zero
	if len(args) > 1 {
		var err error
		percentage, err = decimal.NewFromString(strings.TrimSuffix(args[1], "%"))
		if err != nil {
			return c.Send("Некорректный процент")
		}
	}

	return ctrl.addQuote(ctx, c, ctrl.portfolio(ctx, c), args[0], percentage)
}

func (ctrl *Controller) addQuote(ctx context.Context, c tele.Context, p *portfolioService.Portfolio, ticker string, percentage decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	err := p.AddQuote(ctx, ticker, percentage, false)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.Send("Не удалось найти указанный тикер")
		case errors.Is(err, service.ErrDuplicate):
			return c.Send("Акция уже в портфеле")
		case errors.Is(err, service.ErrInvalidArgument):
			return c.Send("Введите тикер")
		}
		slog.Error("got error from portfolio.AddQuote", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return ctrl.sendSummary(c, p)
}

func (ctrl *Controller) DeleteStock(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	if len(c.Args()) == 0 {
		return c.Send("Укажите тикер: /delete ТИКЕР")
	}
	return ctrl.deleteStock(ctx, c, c.Args()[0])
}

func (ctrl *Controller) deleteStock(ctx context.Context, c tele.Context, ticker string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	p := ctrl.portfolio(ctx, c)

	err := p.Delete(ctx, ticker)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Send("Такой акции нет в портфеле")
		}
		slog.Error("got error from portfolio.Delete", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return ctrl.sendSummary(c, p)
}

func (ctrl *Controller) SetWeight(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	args := c.Args()
	if len(args) != 2 {
		return c.Send("Формат: /weight ТИКЕР ПРОЦЕНТ")
	}

	percentage, err := decimal.NewFromString(strings.TrimSuffix(args[1], "%"))
	if err != nil {
		return c.Send("Некорректный процент")
	}

	p := ctrl.portfolio(ctx, c)
	err = p.SetPercentage(ctx, args[0], percentage)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Send("Такой акции нет в портфеле")
		}
		slog.Error("got error from portfolio.SetPercentage", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return ctrl.sendSummary(c, p)
}

func (ctrl *Controller) SetValue(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	if len(c.Args()) != 1 {
		return c.Send("Формат: /value СУММА")
	}

	value, err := decimal.NewFromString(strings.ReplaceAll(c.Args()[0], ",", "."))
	if err != nil {
		return c.Send("Некорректная сумма")
	}

	p := ctrl.portfolio(ctx, c)
	err = p.SetTotalValue(ctx, value)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			return c.Send("Сумма не может быть отрицательной")
		}
		slog.Error("got error from portfolio.SetTotalValue", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return ctrl.sendSummary(c, p)
}

func (ctrl *Controller) Refresh(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	if len(c.Args()) > 0 {
		return ctrl.refreshOne(ctx, c, c.Args()[0])
	}
	return ctrl.refreshAll(ctx, c)
}

func (ctrl *Controller) refreshOne(ctx context.Context, c tele.Context, ticker string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	p := ctrl.portfolio(ctx, c)

	err := p.UpdateQuote(ctx, ticker)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Send("Такой акции нет в портфеле")
		}
		slog.Error("got error from portfolio.UpdateQuote", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send("Не удалось обновить котировку")
	}

	return ctrl.sendSummary(c, p)
}

func (ctrl *Controller) refreshAll(ctx context.Context, c tele.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	p := ctrl.portfolio(ctx, c)

	if err := p.UpdateAllQuotes(ctx); err != nil {
		slog.Error("got error from portfolio.UpdateAllQuotes", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}
	p.Wait()

	return ctrl.sendSummary(c, p)
}

func (ctrl *Controller) SetPeriod(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	args := c.Args()
	if len(args) != 2 {
		return c.Send("Формат: /period y|M|w 1d|1wk|1mo")
	}
	return ctrl.setPeriod(ctx, c, model.ChartWindow{Period: model.Period(args[0]), Interval: model.Interval(args[1])})
}

func (ctrl *Controller) setPeriod(ctx context.Context, c tele.Context, window model.ChartWindow) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	p := ctrl.portfolio(ctx, c)

	err := p.SetChartWindow(ctx, window)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			return c.Send("Некорректный период")
		}
		slog.Error("got error from portfolio.SetChartWindow", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}
	p.Wait()

	return ctrl.sendSummary(c, p)
}

func (ctrl *Controller) Share(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	_, link, err := ctrl.portfolio(ctx, c).CreateSnapshot(ctx)
	if err != nil {
		slog.Error("got error from portfolio.CreateSnapshot", slog.String("rqID", rqID), slog.String("err", err.Error()))
		if errors.Is(err, service.ErrStoreUnavailable) {
			return c.Send("Не удалось сохранить портфель, попробуйте позже")
		}
		return c.Send(internalErrMsg)
	}

	return c.Send("🔗 Ссылка на портфель:\n" + link)
}

func (ctrl *Controller) Export(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	link, err := ctrl.portfolioService.ExportReport(ctx, owner(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Send("Портфель пуст")
		}
		slog.Error("got error from portfolioService.ExportReport", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send("📄 Отчет: " + link)
}

// Callback разбирает нажатия inline кнопок
func (ctrl *Controller) Callback(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	data := c.Callback().Unique
	if data == "" {
		data = strings.TrimPrefix(c.Callback().Data, "\f")
	}
	_ = c.Respond()

	switch {
	case data == tgCallback.RefreshAll:
		return ctrl.refreshAll(ctx, c)
	case data == tgCallback.Share:
		return ctrl.Share(c)
	case strings.HasPrefix(data, tgCallback.DeletePrefix):
		return ctrl.deleteStock(ctx, c, strings.TrimPrefix(data, tgCallback.DeletePrefix))
	case strings.HasPrefix(data, tgCallback.RefreshPrefix):
		return ctrl.refreshOne(ctx, c, strings.TrimPrefix(data, tgCallback.RefreshPrefix))
	case strings.HasPrefix(data, tgCallback.PeriodPrefix):
		window, ok := telebotConverter.ParsePeriodCallback(data)
		if !ok {
			return c.Send("Некорректный период")
		}
		return ctrl.setPeriod(ctx, c, window)
	default:
		slog.Warn("unexpected callback", slog.String("rqID", rqID), slog.String("data", data))
		return nil
	}
}
