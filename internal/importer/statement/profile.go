package statement

type amountMode int

const (
	// amountSigned is one column where negative values are charges.
	amountSigned amountMode = iota
	// amountSplit is separate debit and credit columns.
	amountSplit
)

// Profile describes one statement CSV layout. Header names are matched
// case-insensitively after trimming.
type Profile struct {
	Name         string
	Comma        rune
	DateCol      string
	DescCol      string
	AmountMode   amountMode
	AmountCol    string
	DebitCol     string
	CreditCol    string
	DateLayouts  []string
	DecimalComma bool
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	if p.AmountMode == amountSplit {
		return append(cols, p.DebitCol, p.CreditCol)
	}

	return append(cols, p.AmountCol)
}

const (
	ProfileStandard    = "standard"
	ProfileEuropean    = "european"
	ProfileDebitCredit = "debitcredit"
)

// profiles is tried in order during auto-detection; split layouts come first
// since their headers are a superset of nothing else.
var profiles = []Profile{
	{
		Name:        ProfileDebitCredit,
		Comma:       ',',
		DateCol:     "date",
		DescCol:     "description",
		AmountMode:  amountSplit,
		DebitCol:    "debit",
		CreditCol:   "credit",
		DateLayouts: []string{"2006-01-02", "02/01/2006"},
	},
	{
		Name:        ProfileStandard,
		Comma:       ',',
		DateCol:     "date",
		DescCol:     "description",
		AmountMode:  amountSigned,
		AmountCol:   "amount",
		DateLayouts: []string{"2006-01-02", "2006/01/02"},
	},
	{
		Name:         ProfileEuropean,
		Comma:        ';',
		DateCol:      "date",
		DescCol:      "description",
		AmountMode:   amountSigned,
		AmountCol:    "amount",
		DateLayouts:  []string{"02/01/2006", "02.01.2006", "02-01-2006"},
		DecimalComma: true,
	},
}

// Lookup returns the named profile.
func Lookup(name string) (Profile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}

	return Profile{}, false
}

// Names lists the supported profile names in detection order.
func Names() []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}

	return names
}
