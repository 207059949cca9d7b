package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

type Response struct {
	ID             uuid.UUID        `json:"id"`
	CardID         *uuid.UUID       `json:"card_id,omitempty"`
	CategoryID     *uuid.UUID       `json:"category_id,omitempty"`
	Type           transaction.Type `json:"type"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       string           `json:"currency"`
	VNDAmount      int64            `json:"vnd_amount"`
	Description    string           `json:"description"`
	RawDescription string           `json:"raw_description,omitempty"`
	Date           time.Time        `json:"date"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      *time.Time       `json:"updated_at,omitempty"`
}

// ToResponse is shared with the import handler.
func ToResponse(tx *transaction.Transaction) Response {
	return Response{
		ID:             tx.ID,
		CardID:         tx.CardID,
		CategoryID:     tx.CategoryID,
		Type:           tx.Type,
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		VNDAmount:      tx.VNDAmount,
		Description:    tx.Description,
		RawDescription: tx.RawDescription,
		Date:           tx.Date,
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
	}
}

func ToResponseList(txs []*transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}
