package http

import (
	"errors"
	"net/http"

	"savings/internal/core"
	"savings/internal/export"
	applog "savings/internal/log"
	"savings/internal/services"
)

type recordView struct {
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Month    string  `json:"month"`
	Tags     string  `json:"tags"`
}

type goalView struct {
	Month        string  `json:"month"`
	TargetAmount float64 `json:"targetAmount"`
}

type summaryView struct {
	Month   string    `json:"month"`
	Income  float64   `json:"income"`
	Expense float64   `json:"expense"`
	Net     float64   `json:"net"`
	Goal    *goalView `json:"goal"`
	MetGoal *bool     `json:"metGoal"`
}

type categoryView struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

func toRecordView(r core.Record) recordView {
	return recordView{
		Type:     r.Type.String(),
		Amount:   r.Amount,
		Category: r.Category.String(),
		Month:    r.Month,
		Tags:     r.Tags,
	}
}

func toGoalView(g core.Goal) goalView {
	return goalView{Month: g.Month, TargetAmount: g.TargetAmount}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.api.Records(r.Context()); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Ledger not ready", applog.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	t, err := core.ParseRecordType(p.Get("type"))
	if err != nil {
		UnprocessableEntityError(codeInvalidRecord, "unknown record type").Write(w)
		return
	}
	c, err := core.ParseCategory(p.Get("category"))
	if err != nil {
		UnprocessableEntityError(codeInvalidRecord, "unknown category").Write(w)
		return
	}

	rec, err := s.api.AddRecord(r.Context(), t, p.Get("amount"), c, p.Get("month"), p.Get("tags"))
	switch {
	case err == nil:
		NewJSONResponse().Status(http.StatusCreated).JSON(toRecordView(rec)).Write(w)
	case errors.Is(err, core.ErrInvalidAmount):
		UnprocessableEntityError(codeInvalidAmount, "amount must be a non-negative number").Write(w)
	case errors.Is(err, core.ErrInvalidRecordType), errors.Is(err, core.ErrInvalidCategory):
		UnprocessableEntityError(codeInvalidRecord, err.Error()).Write(w)
	default:
		applog.FromContext(r.Context()).LogError(r.Context(), "Record append failed", err, applog.OpAddRecord, internalErr())
		InternalServerError("could not store record").Write(w)
	}
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.api.Records(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).LogError(r.Context(), "List records failed", err, applog.OpSummarize, internalErr())
		InternalServerError("could not read ledger").Write(w)
		return
	}
	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		views = append(views, toRecordView(rec))
	}
	NewJSONResponse().JSON(views).Write(w)
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	target := p.Get("target")
	if target == "" {
		target = p.Get("targetAmount")
	}
	g, err := s.api.SetGoal(r.Context(), p.Get("month"), target)
	switch {
	case err == nil:
		NewJSONResponse().JSON(toGoalView(g)).Write(w)
	case errors.Is(err, core.ErrInvalidGoal):
		UnprocessableEntityError(codeInvalidGoal, "month and a non-negative target are required").Write(w)
	default:
		applog.FromContext(r.Context()).LogError(r.Context(), "Goal upsert failed", err, applog.OpSetGoal, internalErr())
		InternalServerError("could not store goal").Write(w)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sums, err := s.api.Summary(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).LogError(r.Context(), "Summary failed", err, applog.OpSummarize, internalErr())
		InternalServerError("could not read ledger").Write(w)
		return
	}
	views := make([]summaryView, 0, len(sums))
	for _, m := range sums {
		v := summaryView{
			Month:   m.Month,
			Income:  m.Income,
			Expense: m.Expense,
			Net:     m.Net,
			MetGoal: m.MetGoal,
		}
		if m.Goal != nil {
			gv := toGoalView(*m.Goal)
			v.Goal = &gv
		}
		views = append(views, v)
	}
	NewJSONResponse().JSON(views).Write(w)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	month := r.PathValue("month")
	rows, err := s.api.Breakdown(r.Context(), month)
	if err != nil {
		applog.FromContext(r.Context()).LogError(r.Context(), "Breakdown failed", err, applog.OpSummarize, internalErr())
		InternalServerError("could not read ledger").Write(w)
		return
	}
	views := make([]categoryView, 0, len(rows))
	for _, row := range rows {
		views = append(views, categoryView{Category: row.Category.String(), Amount: row.Amount})
	}
	NewJSONResponse().JSON(views).Write(w)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	body, err := s.api.ExportCSV(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).LogError(r.Context(), "CSV export failed", err, applog.OpExport, internalErr())
		InternalServerError("could not export ledger").Write(w)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	rng, err := s.api.ExportSheets(r.Context())
	switch {
	case err == nil:
		NewJSONResponse().JSON(map[string]string{"range": rng}).Write(w)
	case errors.Is(err, services.ErrExportUnavailable):
		ErrorResponse(http.StatusServiceUnavailable, codeUnavailable, "spreadsheet export is not configured").Write(w)
	case errors.Is(err, services.ErrExportFailed):
		applog.FromContext(r.Context()).LogError(r.Context(), "Sheets export failed", err, applog.OpExport,
			applog.NewFields().WithErrorType(applog.ErrorTypeNetwork))
		ErrorResponse(http.StatusBadGateway, codeUpstreamFailed, "spreadsheet export failed").Write(w)
	default:
		applog.FromContext(r.Context()).LogError(r.Context(), "Sheets export failed", err, applog.OpExport, internalErr())
		InternalServerError("could not read ledger").Write(w)
	}
}

func handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := core.Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	NewJSONResponse().JSON(names).Write(w)
}

func internalErr() applog.LogFields {
	return applog.NewFields().WithErrorType(applog.ErrorTypeInternal)
}
