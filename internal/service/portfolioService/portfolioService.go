package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/KotFed0t/portfolio_builder/config"
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/internal/service"
	"github.com/KotFed0t/portfolio_builder/utils"
)

type QuoteService interface {
	GetQuote(ctx context.Context, ticker string) (model.Quote, error)
	RefreshQuote(ctx context.Context, ticker string) (model.Quote, error)
	GetHistorical(ctx context.Context, ticker string, startDate time.Time, interval model.Interval) ([]model.PricePoint, error)
}

type SnapshotStore interface {
	PutSnapshot(ctx context.Context, key string, items []model.PortfolioItem) error
	GetSnapshot(ctx context.Context, key string) ([]model.PortfolioItem, error)
}

type LocalStorage interface {
	GetHoldings(ctx context.Context, owner string) ([]byte, error)
	SetHoldings(ctx context.Context, owner string, data []byte) error
}

type ColorGenerator interface {
	Generate() string
}

type ReportGenerator interface {
	Generate(ctx context.Context, summary model.PortfolioSummary) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

// PortfolioService keeps one Portfolio per owner and hosts the jobs spanning all of them.
type PortfolioService struct {
	cfg       *config.Config
	quotes    QuoteService
	snapshots SnapshotStore
	storage   LocalStorage
	colors    ColorGenerator
	reports   ReportGenerator
	cloud     CloudStorage
	now       func() time.Time

	mu         sync.Mutex
	portfolios map[string]*Portfolio
}

func New(
	cfg *config.Config,
	quotes QuoteService,
	snapshots SnapshotStore,
	storage LocalStorage,
	colors ColorGenerator,
	reports ReportGenerator,
	cloud CloudStorage,
) *PortfolioService {
	return &PortfolioService{
		cfg:        cfg,
		quotes:     quotes,
		snapshots:  snapshots,
		storage:    storage,
		colors:     colors,
		reports:    reports,
		cloud:      cloud,
		now:        time.Now,
		portfolios: make(map[string]*Portfolio),
	}
}

// Portfolio returns the owner's portfolio. On first access it is restored from local
// storage and returned only after the restored holdings are applied.
func (s *PortfolioService) Portfolio(ctx context.Context, owner string) *Portfolio {
	p, created := s.getOrCreate(owner)
	if !created {
		<-p.ready
		return p
	}

	restored := p.Rehydrate(ctx)
	p.Wait()
	close(p.ready)

	slog.Info("portfolio opened", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("owner", owner), slog.Int("restored", restored))

	return p
}

// LoadShared opens the owner's portfolio the same way Portfolio does and merges the
// snapshot stored under key into it. Tickers present in both take the snapshot's weight.
func (s *PortfolioService) LoadShared(ctx context.Context, owner string, key string) (*Portfolio, []model.PortfolioItem, error) {
	p := s.Portfolio(ctx, owner)

	items, err := p.LoadSnapshot(ctx, key)
	if err != nil {
		return p, nil, err
	}

	return p, items, nil
}

func (s *PortfolioService) getOrCreate(owner string) (p *Portfolio, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.portfolios[owner]
	if ok {
		return p, false
	}

	p = newPortfolio(owner, s)
	s.portfolios[owner] = p
	return p, true
}

func (s *PortfolioService) openPortfolios() []*Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]*Portfolio, 0, len(s.portfolios))
	for _, p := range s.portfolios {
		res = append(res, p)
	}
	return res
}

// RefreshAllQuotes refreshes prices of every open portfolio and waits for the updates
// to be applied.
func (s *PortfolioService) RefreshAllQuotes(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshAllQuotes"

	portfolios := s.openPortfolios()
	slog.Debug("RefreshAllQuotes start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("portfolios", len(portfolios)))

	var errs []error
	for _, p := range portfolios {
		if err := p.UpdateAllQuotes(ctx); err != nil && !errors.Is(err, service.ErrClosed) {
			errs = append(errs, fmt.Errorf("owner %s: %w", p.Owner(), err))
		}
	}

	for _, p := range portfolios {
		p.Wait()
	}

	slog.Debug("RefreshAllQuotes finished", slog.String("rqID", rqID), slog.String("op", op))

	return errors.Join(errs...)
}

// ExportReport builds a spreadsheet of the owner's portfolio and uploads it,
// returning the download link.
func (s *PortfolioService) ExportReport(ctx context.Context, owner string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportReport"

	summary := s.Portfolio(ctx, owner).Summary()
	if len(summary.Holdings) == 0 {
		return "", fmt.Errorf("%w: portfolio is empty", service.ErrNotFound)
	}

	fileBytes, fileExt, err := s.reports.Generate(ctx, summary)
	if err != nil {
		slog.Error("got error from reports.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	filename := fmt.Sprintf("portfolio_%s_%s%s", owner, s.now().Format("2006-01-02_15-04-05"), fileExt)
	link, err := s.cloud.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloud.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", fmt.Errorf("%w: %v", service.ErrStoreUnavailable, err)
	}

	return link, nil
}

func (s *PortfolioService) DeleteOldReports(ctx context.Context) error {
	return s.cloud.DeleteOldFiles(ctx)
}

func (s *PortfolioService) shareLink(key string) string {
	if s.cfg.Share.LinkTemplate == "" {
		return key
	}
	return fmt.Sprintf(s.cfg.Share.LinkTemplate, key)
}

// Close waits for in-flight fetches and stops every portfolio loop.
func (s *PortfolioService) Close() {
	for _, p := range s.openPortfolios() {
		p.Wait()
		p.Close()
	}
}
