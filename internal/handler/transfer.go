package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/habiti/internal/backup"
	"github.com/dukerupert/habiti/internal/tracker"
)

// PassphraseHeader carries the passphrase for sealed exports and imports.
const PassphraseHeader = "X-Habiti-Passphrase"

type TransferHandler struct {
	tracker *tracker.Tracker
	logger  *slog.Logger
}

func NewTransferHandler(t *tracker.Tracker, logger *slog.Logger) *TransferHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferHandler{tracker: t, logger: logger}
}

// Export downloads the full state. With a passphrase header the document is
// sealed and the filename gains an .enc suffix.
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc := h.tracker.Export()
	data, err := backup.Encode(doc)
	if err != nil {
		h.logger.Error("encode export", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to encode export")
		return
	}

	filename := backup.Filename(doc.ExportedAt)
	contentType := "application/json"
	if pass := r.Header.Get(PassphraseHeader); pass != "" {
		if data, err = backup.Encrypt(data, pass); err != nil {
			h.logger.Error("seal export", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to encrypt export")
			return
		}
		filename += ".enc"
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type importResponse struct {
	tracker.ImportSummary
	Errors []string `json:"errors"`
}

// Import replaces all state with the uploaded export.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	plain, err := backup.Open(data, r.Header.Get(PassphraseHeader))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := backup.Decode(plain)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, backup.ErrVersion) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}

	sum := h.tracker.Import(r.Context(), doc)
	resp := importResponse{ImportSummary: sum, Errors: []string{}}
	for _, e := range doc.Skipped {
		resp.Errors = append(resp.Errors, e.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

type csvResponse struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// ImportCSV adds habits from a spreadsheet export. Rows that cannot be used
// are reported but do not fail the request.
func (h *TransferHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		writeError(w, http.StatusBadRequest, "empty CSV")
		return
	}

	res := h.tracker.ImportCSV(r.Context(), bytes.NewReader(data))
	resp := csvResponse{Imported: res.Imported, Errors: res.Messages()}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}
