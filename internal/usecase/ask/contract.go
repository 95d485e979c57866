package ask

import (
	"context"

	"github.com/askledger/askledger/internal/domain"
	"github.com/askledger/askledger/internal/executor"
)

// PatternParser is the deterministic first-stage interpreter.
type PatternParser interface {
	Parse(question string) domain.Intent
}

// AssistedParser is the classifier-backed second-stage interpreter.
type AssistedParser interface {
	Parse(ctx context.Context, question string, knownVendors []string) domain.Intent
}

// Executor turns a resolved intent into a formatted answer.
type Executor interface {
	Execute(question string, intent domain.Intent) executor.Result
}

// VendorLister exposes the dataset's known vendors for disambiguation.
type VendorLister interface {
	KnownVendors() []string
}
