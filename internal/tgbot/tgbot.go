package tgbot

import (
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_builder/config"
	"github.com/KotFed0t/portfolio_builder/internal/transport/telegram"
	customMW "github.com/KotFed0t/portfolio_builder/internal/transport/telegram/middleware"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot  *tele.Bot
	ctrl *telegram.Controller
}

func New(cfg *config.Config, ctrl *telegram.Controller) (*TGBot, error) {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("tele.NewBot: %w", err)
	}

	return &TGBot{bot: b, ctrl: ctrl}, nil
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	// любой текст без команды считаем тикером
	b.bot.Handle(tele.OnText, b.ctrl.ProcessTicker)
	b.bot.Handle(tele.OnCallback, b.ctrl.Callback)

	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/help", b.ctrl.Help)
	b.bot.Handle("/portfolio", b.ctrl.ShowPortfolio)
	b.bot.Handle("/add", b.ctrl.AddStock)
	b.bot.Handle("/delete", b.ctrl.DeleteStock)
	b.bot.Handle("/weight", b.ctrl.SetWeight)
	b.bot.Handle("/value", b.ctrl.SetValue)
	b.bot.Handle("/refresh", b.ctrl.Refresh)
	b.bot.Handle("/period", b.ctrl.SetPeriod)
	b.bot.Handle("/share", b.ctrl.Share)
	b.bot.Handle("/export", b.ctrl.Export)
}
