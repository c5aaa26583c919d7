package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkuznec/portfolio_dashboard/internal/analytics"
	"github.com/mkuznec/portfolio_dashboard/internal/service"
	"github.com/mkuznec/portfolio_dashboard/utils"
)

const maxUploadBytes = 5 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "static/index.html")
}

func (s *Server) handleUploadPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := s.sessionID(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	page, err := s.service.UploadPortfolio(ctx, sessionID, header.Filename, file)
	if err != nil {
		s.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(page))
}

func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := s.sessionID(w, r)

	page, err := s.service.GetDashboard(ctx, sessionID)
	if err != nil {
		s.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(page))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := s.sessionID(w, r)

	var (
		fileBytes   []byte
		ext         string
		contentType string
		err         error
	)

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		fileBytes, ext, err = s.service.ExportCSV(ctx, sessionID)
		contentType = "text/csv"
	case "xlsx":
		fileBytes, ext, err = s.service.ExportXLSX(ctx, sessionID)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown export format %q", format))
		return
	}

	if err != nil {
		s.writeServiceError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=portfolio_report%s", ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(fileBytes)
}

func (s *Server) handleExportToDrive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := s.sessionID(w, r)

	link, err := s.service.ExportToDrive(ctx, sessionID)
	if err != nil {
		s.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"shareLink": link})
}

func (s *Server) handleTickerNews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	articles, err := s.service.TickerNews(ctx, chi.URLParam(r, "ticker"))
	if err != nil {
		s.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, toArticleDTOs(articles))
}

func (s *Server) handlePriceHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	points, err := s.service.PriceHistory(ctx, chi.URLParam(r, "ticker"))
	if err != nil {
		s.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPricePointDTOs(points))
}

func (s *Server) handlePriceChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	png, err := s.service.PriceChart(ctx, chi.URLParam(r, "ticker"))
	if err != nil {
		s.writeServiceError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var schemaErr *analytics.SchemaError

	switch {
	case errors.As(err, &schemaErr):
		writeError(w, http.StatusBadRequest, schemaErr.Error())
	case errors.Is(err, service.ErrNoPortfolio):
		writeError(w, http.StatusNotFound, service.ErrNoPortfolio.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "ticker not found")
	case errors.Is(err, service.ErrCloudStorageDisabled):
		writeError(w, http.StatusServiceUnavailable, service.ErrCloudStorageDisabled.Error())
	default:
		slog.Error("internal error", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("can't encode response", slog.String("err", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
