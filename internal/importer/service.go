package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/MrJamesThe3rd/cardcycle/internal/importer/statement"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

type Service struct {
	importers map[Format]Importer
	loc       *time.Location
}

type Option func(*Service)

// WithLocation reads statement dates in loc unless the caller sets
// Options.Location.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func NewService(opts ...Option) *Service {
	importers := map[Format]Importer{
		FormatAuto: statement.NewParser(),
	}

	for _, name := range statement.Names() {
		p, err := statement.NewProfileParser(name)
		if err != nil {
			// Names only returns registered profiles.
			panic(err)
		}

		importers[Format(name)] = p
	}

	s := &Service{importers: importers}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Import(format Format, r io.Reader, opts statement.Options) ([]transaction.CreateParams, error) {
	importer, ok := s.importers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", statement.ErrUnknownFormat, format)
	}

	if opts.Location == nil {
		opts.Location = s.loc
	}

	return importer.Parse(r, opts)
}
