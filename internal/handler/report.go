package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

type reportRow struct {
	Time string `json:"time"`
	Name string `json:"name"`
}

type reportResponse struct {
	Title         string      `json:"title"`
	DisplayName   string      `json:"display_name"`
	DisplayBranch string      `json:"display_branch"`
	GeneratedAt   time.Time   `json:"generated_at"`
	Rows          []reportRow `json:"rows"`
}

type archiveResponse struct {
	Location string `json:"location"`
}

// GetReport handles GET /admin/reports.
// ?format=csv or ?format=pdf returns a file download; the default is JSON.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		rep, err := s.reports.Build(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toReportResponse(rep))
		return
	}

	out, err := s.reports.Render(r.Context(), format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}

// ArchiveReport handles POST /admin/reports/archive: the PDF report is
// uploaded to object storage. 501 when no archive is configured.
func (s *Server) ArchiveReport(w http.ResponseWriter, r *http.Request) {
	location, err := s.reports.Archive(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, archiveResponse{Location: location})
}

func toReportResponse(rep domain.Report) reportResponse {
	rows := make([]reportRow, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, reportRow{Time: r.Time, Name: r.Name})
	}
	return reportResponse{
		Title:         rep.Settings.Title(),
		DisplayName:   rep.Settings.DisplayName,
		DisplayBranch: rep.Settings.DisplayBranch,
		GeneratedAt:   rep.GeneratedAt,
		Rows:          rows,
	}
}
