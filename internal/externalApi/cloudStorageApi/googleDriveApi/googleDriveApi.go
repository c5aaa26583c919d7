package googleDriveApi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/mkuznec/portfolio_dashboard/config"
	"github.com/mkuznec/portfolio_dashboard/utils"
)

const shareLinkTemplate = "https://drive.google.com/file/d/%s/view"

type GoogleDriveApi struct {
	srv     *drive.Service
	fileTTL time.Duration
}

func New(ctx context.Context, cfg *config.Config) *GoogleDriveApi {
	srv, err := drive.NewService(ctx, option.WithCredentialsFile(cfg.GoogleDrive.CredentialsFile))
	if err != nil {
		slog.Error("failed on drive.NewService", slog.String("err", err.Error()))
		panic(err)
	}
	return &GoogleDriveApi{srv: srv, fileTTL: cfg.GoogleDrive.FileTTL}
}

// UploadFile uploads an exported report and makes it readable by link.
// Returns the share link.
func (a *GoogleDriveApi) UploadFile(ctx context.Context, reader io.Reader, filename string) (shareLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.UploadFile"

	slog.Debug("UploadFile start", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))

	fileMeta := &drive.File{
		Name:     filename,
		MimeType: mime.TypeByExtension(filepath.Ext(filename)),
	}

	uploaded, err := a.srv.Files.
		Create(fileMeta).
		Media(reader).
		Context(ctx).
		Do()
	if err != nil {
		slog.Error("failed on uploading file to google drive", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	perm := &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}

	if _, err = a.srv.Permissions.Create(uploaded.Id, perm).Context(ctx).Do(); err != nil {
		slog.Error("failed on creating permission for uploaded file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	slog.Debug("UploadFile finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", uploaded.Id))

	return fmt.Sprintf(shareLinkTemplate, uploaded.Id), nil
}

// DeleteOldFiles removes exported reports older than the configured TTL.
// Runs on the scheduler.
func (a *GoogleDriveApi) DeleteOldFiles(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.DeleteOldFiles"

	slog.Debug("DeleteOldFiles start", slog.String("rqID", rqID), slog.String("op", op))

	r, err := a.srv.Files.List().Fields("files(id, createdTime)").Context(ctx).Do()
	if err != nil {
		slog.Error("failed on listing files", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	deleted := 0
	cutoff := time.Now().Add(-a.fileTTL)
	for _, f := range r.Files {
		createdTime, err := time.Parse(time.RFC3339, f.CreatedTime)
		if err != nil {
			slog.Error("failed to parse file created time", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", f.Id), slog.String("createdTime", f.CreatedTime))
			continue
		}

		if createdTime.Before(cutoff) {
			if err := a.srv.Files.Delete(f.Id).Context(ctx).Do(); err != nil {
				slog.Error("failed to delete file", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", f.Id), slog.String("err", err.Error()))
				continue
			}
			deleted++
		}
	}

	if err := a.srv.Files.EmptyTrash().Context(ctx).Do(); err != nil {
		slog.Error("failed to empty trash", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	slog.Info("old report cleanup done", slog.Int("deleted", deleted), slog.Int("remaining", len(r.Files)-deleted))

	return nil
}
