package pdf

import (
	"context"
	"io"
)

type Provider interface {
	GenerateQuote(ctx context.Context, data QuoteData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateQuote(ctx context.Context, data QuoteData) (io.Reader, error) {
	return nil, nil
}
