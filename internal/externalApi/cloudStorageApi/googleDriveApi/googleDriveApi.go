package googleDriveApi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/KotFed0t/portfolio_builder/config"
	"github.com/KotFed0t/portfolio_builder/utils"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const downloadLinkTemplate = "https://drive.google.com/file/d/%s/view"

// GoogleDriveApi stores exported portfolio reports and expires them after FileTTL.
type GoogleDriveApi struct {
	srv *drive.Service
	ttl time.Duration
	now func() time.Time
}

func New(ctx context.Context, cfg *config.Config) (*GoogleDriveApi, error) {
	srv, err := drive.NewService(ctx, option.WithCredentialsFile(cfg.GoogleDrive.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("drive.NewService: %w", err)
	}
	return &GoogleDriveApi{srv: srv, ttl: cfg.GoogleDrive.FileTTL, now: time.Now}, nil
}

func (a *GoogleDriveApi) UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.UploadFile"

	mimeType := mime.TypeByExtension(filepath.Ext(filename))
	slog.Debug("UploadFile start", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename), slog.String("mime", mimeType))

	uploadedFile, err := a.srv.Files.
		Create(&drive.File{Name: filename, MimeType: mimeType}).
		Media(reader). // чанки по 16МБ, ретраи сети внутри клиента
		Context(ctx).
		Do()
	if err != nil {
		slog.Error("failed on uploading report to google drive", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	_, err = a.srv.Permissions.
		Create(uploadedFile.Id, &drive.Permission{Type: "anyone", Role: "reader"}).
		Context(ctx).
		Do()
	if err != nil {
		slog.Error("failed on sharing uploaded report", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", uploadedFile.Id), slog.String("err", err.Error()))
		return "", err
	}

	slog.Info("report uploaded", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", uploadedFile.Id), slog.String("filename", filename))

	return fmt.Sprintf(downloadLinkTemplate, uploadedFile.Id), nil
}

// DeleteOldFiles removes reports older than the configured TTL.
func (a *GoogleDriveApi) DeleteOldFiles(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.DeleteOldFiles"

	slog.Debug("DeleteOldFiles start", slog.String("rqID", rqID), slog.String("op", op))

	deadline := a.now().Add(-a.ttl).UTC().Format(time.RFC3339)
	r, err := a.srv.Files.List().
		Q(fmt.Sprintf("createdTime < '%s' and trashed = false", deadline)).
		Fields("files(id, name, createdTime)").
		Context(ctx).
		Do()
	if err != nil {
		slog.Error("failed on listing reports", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	deleted := 0
	for _, f := range r.Files {
		err = a.srv.Files.Delete(f.Id).Context(ctx).Do()
		if err != nil {
			slog.Error("failed delete report", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", f.Id), slog.String("err", err.Error()))
			continue
		}
		deleted++
	}

	if err = a.srv.Files.EmptyTrash().Context(ctx).Do(); err != nil {
		slog.Error("failed empty trash", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	slog.Info("old reports deleted", slog.String("rqID", rqID), slog.String("op", op), slog.Int("deleted", deleted), slog.Int("expired", len(r.Files)))

	return nil
}
