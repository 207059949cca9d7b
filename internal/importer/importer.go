package importer

import (
	"io"

	"github.com/MrJamesThe3rd/cardcycle/internal/importer/statement"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

// Format selects a statement layout. FormatAuto lets the parser pick one.
type Format string

const (
	FormatAuto        Format = ""
	FormatStandard    Format = statement.ProfileStandard
	FormatEuropean    Format = statement.ProfileEuropean
	FormatDebitCredit Format = statement.ProfileDebitCredit
)

type Importer interface {
	Parse(r io.Reader, opts statement.Options) ([]transaction.CreateParams, error)
}
