package importer

import (
	"context"
	"io"
	"log/slog"
)

//go:generate mockgen -source=service.go -destination=suggester_mock.go -package=importer
type Suggester interface {
	Suggest(ctx context.Context, rawName string) (string, error)
}

type Service struct {
	parser    *Parser
	suggester Suggester
}

// NewService builds an importer. suggester may be nil.
func NewService(suggester Suggester) *Service {
	return &Service{parser: NewParser(), suggester: suggester}
}

// Result is a preview of imported items. Nothing is stored until the
// caller creates or edits an order with them.
type Result struct {
	*Sheet
	Renamed int
}

// Import parses the upload and renames items the catalog knows about.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Result, error) {
	sheet, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}

	res := &Result{Sheet: sheet}

	if s.suggester == nil {
		return res, nil
	}

	for i, it := range sheet.Items {
		name, err := s.suggester.Suggest(ctx, it.Name)
		if err != nil {
			slog.Warn("item name suggestion failed", "name", it.Name, "error", err)
			continue
		}

		if name != "" && name != it.Name {
			sheet.Items[i].Name = name
			res.Renamed++
		}
	}

	return res, nil
}
