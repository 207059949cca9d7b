package importcsv

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/currency"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/httpx"
	txhttp "github.com/MrJamesThe3rd/cardcycle/internal/http/transaction"
	"github.com/MrJamesThe3rd/cardcycle/internal/importer"
	"github.com/MrJamesThe3rd/cardcycle/internal/importer/statement"
	"github.com/MrJamesThe3rd/cardcycle/internal/rule"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
	ruleSvc   *rule.Service
	cardSvc   *card.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service, ruleSvc *rule.Service, cardSvc *card.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
		ruleSvc:   ruleSvc,
		cardSvc:   cardSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type importSuccessResponse struct {
	Imported     int               `json:"imported"`
	Transactions []txhttp.Response `json:"transactions"`
}

type createParamsDTO struct {
	CardID         *uuid.UUID       `json:"card_id,omitempty"`
	CategoryID     *uuid.UUID       `json:"category_id,omitempty"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       string           `json:"currency" validate:"required,len=3,alpha"`
	Type           transaction.Type `json:"type" validate:"required,oneof=income expense"`
	Description    string           `json:"description" validate:"required"`
	RawDescription string           `json:"raw_description"`
	Date           time.Time        `json:"date" validate:"required"`
}

type conflictDTO struct {
	Incoming createParamsDTO `json:"incoming"`
	Existing txhttp.Response `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params" validate:"required,min=1,dive"`
}

// importCSV takes a multipart upload with fields file, format (optional),
// card_id (optional) and currency (default VND).
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	opts := statement.Options{UserID: userID, Currency: currency.VND}

	if s := r.FormValue("currency"); s != "" {
		code, err := currency.Normalize(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		opts.Currency = code
	}

	if s := r.FormValue("card_id"); s != "" {
		cardID, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "card_id must be a UUID", http.StatusBadRequest)
			return
		}

		if _, err := h.cardSvc.Get(r.Context(), userID, cardID); err != nil {
			if errors.Is(err, card.ErrNotFound) {
				http.Error(w, "card not found", http.StatusUnprocessableEntity)
				return
			}

			httpx.Internal(w, r, "failed to load card", err)

			return
		}

		opts.CardID = &cardID
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(importer.Format(r.FormValue("format")), file, opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.ruleSvc.Apply(r.Context(), userID, params); err != nil {
		// Categorisation is best effort; rows stay uncategorised.
		slog.WarnContext(r.Context(), "failed to apply category rules", "error", err)
	}

	result, err := h.txSvc.ImportBatch(r.Context(), userID, params)
	if err != nil {
		writeImportError(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: txhttp.ToResponse(c.Existing),
			})
		}

		httpx.JSON(w, http.StatusConflict, resp)

		return
	}

	httpx.JSON(w, http.StatusCreated, toSuccessResponse(result.Imported))
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	var req confirmRequest
	if err := httpx.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]transaction.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, transaction.CreateParams{
			UserID:         userID,
			CardID:         p.CardID,
			CategoryID:     p.CategoryID,
			Amount:         p.Amount,
			Currency:       p.Currency,
			Type:           p.Type,
			Description:    p.Description,
			RawDescription: p.RawDescription,
			Date:           p.Date,
		})
	}

	txs, err := h.txSvc.CreateBatch(r.Context(), userID, params)
	if err != nil {
		writeImportError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toSuccessResponse(txs))
}

func writeImportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrInvalidType),
		errors.Is(err, transaction.ErrInvalidDate),
		errors.Is(err, currency.ErrInvalidCode),
		errors.Is(err, currency.ErrUnsupportedCurrency):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		httpx.Internal(w, r, "import failed", err)
	}
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: txhttp.ToResponseList(txs),
	}
}

func toParamsDTO(p transaction.CreateParams) createParamsDTO {
	return createParamsDTO{
		CardID:         p.CardID,
		CategoryID:     p.CategoryID,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Type:           p.Type,
		Description:    p.Description,
		RawDescription: p.RawDescription,
		Date:           p.Date,
	}
}
