package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/importer"
	"github.com/unrolled/render"
)

// ImportRequest is the body of POST /api/import. Data is either the raw CSV
// text or an array of already parsed rows.
type ImportRequest struct {
	DataType       string          `json:"dataType" validate:"required"`
	Data           json.RawMessage `json:"data" validate:"required"`
	DryRun         bool            `json:"dryRun"`
	SkipDuplicates *bool           `json:"skipDuplicates"`
}

// ImportResponse mirrors importer.Result with the field names clients send.
type ImportResponse struct {
	Message string   `json:"message"`
	Records int      `json:"records"`
	Errors  []string `json:"errors"`
	Skipped int      `json:"skipped"`
	Batches int      `json:"batches"`
	DryRun  bool     `json:"dryRun"`
}

func toImportResponse(res *importer.Result) ImportResponse {
	errs := res.Errors
	if errs == nil {
		errs = []string{}
	}
	return ImportResponse{
		Message: res.Message,
		Records: res.Records,
		Errors:  errs,
		Skipped: res.Skipped,
		Batches: res.Batches,
		DryRun:  res.DryRun,
	}
}

// records turns the request data into importer records.
func (req ImportRequest) records() ([]importer.Record, error) {
	data := bytes.TrimSpace(req.Data)
	switch {
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return nil, err
		}
		return importer.ReadCSV(strings.NewReader(text))
	case len(data) > 0 && data[0] == '[':
		var rows []map[string]any
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, err
		}
		return importer.RecordsFromMaps(rows), nil
	}
	return nil, errors.New("data must be CSV text or an array of rows")
}

func ImportHandler(im *importer.Importer, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImportRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(rnd, w, r, err)
			return
		}
		records, err := req.records()
		if err != nil {
			verr := &club.ValidationError{}
			verr.Add("data", err.Error())
			writeError(rnd, w, r, verr)
			return
		}

		skip := true
		if req.SkipDuplicates != nil {
			skip = *req.SkipDuplicates
		}
		res, err := im.Import(r.Context(), importer.Request{
			DataType:       importer.DataType(req.DataType),
			Records:        records,
			DryRun:         req.DryRun || IsDryRunFromContext(r),
			SkipDuplicates: skip,
		})
		switch {
		case errors.Is(err, importer.ErrAllRecordsInvalid):
			requestLog(r).Warn("Import rejected, no valid records", "dataType", req.DataType, "errors", len(res.Errors))
			writeJSON(rnd, w, http.StatusBadRequest, toImportResponse(res))
		case errors.Is(err, importer.ErrUnknownDataType), errors.Is(err, importer.ErrNoRecords):
			writeJSON(rnd, w, http.StatusBadRequest, ImportResponse{Message: err.Error(), Errors: []string{err.Error()}})
		case err != nil:
			writeError(rnd, w, r, err)
		default:
			writeJSON(rnd, w, http.StatusOK, toImportResponse(res))
		}
	}
}
