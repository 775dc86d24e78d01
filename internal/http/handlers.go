package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/services"
)

// maxImportSize caps the multipart memory footprint for CSV uploads.
const maxImportSize = 10 << 20

type transactionResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Value      string `json:"value"`
	ValueCents int64  `json:"value_cents"`
	Category   string `json:"category"`
}

type balanceResponse struct {
	Income  string `json:"income"`
	Outcome string `json:"outcome"`
	Total   string `json:"total"`
}

type listResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Balance      balanceResponse       `json:"balance"`
}

type createRequest struct {
	Title    string      `json:"title"`
	Value    json.Number `json:"value"`
	Type     string      `json:"type"`
	Category string      `json:"category"`
}

type importResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:         t.ID,
		Title:      t.Title,
		Type:       string(t.Type),
		Value:      t.Value.Decimal(),
		ValueCents: t.Value.Cents,
		Category:   t.Category.Title,
	}
}

func toBalanceResponse(b core.Balance) balanceResponse {
	return balanceResponse{
		Income:  b.Income.Decimal(),
		Outcome: b.Outcome.Decimal(),
		Total:   b.Total.Decimal(),
	}
}

// handleTransactions lists the ledger with its balance or creates one entry.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, bal, err := s.balance.Balance(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := listResponse{
		Transactions: make([]transactionResponse, 0, len(txs)),
		Balance:      toBalanceResponse(bal),
	}
	for _, t := range txs {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(t))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	typ, err := core.ParseTransactionType(sanitizeInput(req.Type))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	cents, err := core.ParseDecimalToCents(req.Value.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid value: "+err.Error())
		return
	}

	created, err := s.ledger.Create(r.Context(), services.CreateTransaction{
		Title:    sanitizeInput(req.Title),
		Value:    core.Money{Cents: cents},
		Type:     typ,
		Category: sanitizeInput(req.Category),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

// handleTransactionByID serves DELETE /transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/transactions/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.ledger.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleImport accepts a multipart CSV upload and runs the import pipeline.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	path, err := s.uploads.SaveUpload(file, header.Filename)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	saved, err := s.importer.ImportFile(r.Context(), path)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := importResponse{
		Transactions: make([]transactionResponse, 0, len(saved)),
		Count:        len(saved),
	}
	for _, t := range saved {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(t))
	}

	writeJSON(w, http.StatusCreated, resp)
}
