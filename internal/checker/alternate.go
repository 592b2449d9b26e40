package checker

import (
	"context"
	"fmt"
	"os"

	"github.com/CovenantEyes/winsparkle/internal/appcast"
	"github.com/CovenantEyes/winsparkle/internal/errs"
)

// Resolution is an alternate provider's answer.
type Resolution int

const (
	// Defer hands the check back to the configured feed URL.
	Defer Resolution = iota
	// ResolvedNoUpdate means the provider found nothing newer.
	ResolvedNoUpdate
	// ResolvedUpdate means the returned Appcast describes the release.
	ResolvedUpdate
)

// AlternateFeed gets first refusal on every check.
type AlternateFeed interface {
	Resolve(ctx context.Context, manual bool) (appcast.Appcast, Resolution, error)
}

// AlternateFunc adapts a function to AlternateFeed.
type AlternateFunc func(ctx context.Context, manual bool) (appcast.Appcast, Resolution, error)

func (f AlternateFunc) Resolve(ctx context.Context, manual bool) (appcast.Appcast, Resolution, error) {
	return f(ctx, manual)
}

// FileFeed reads the appcast from a local file instead of the network.
type FileFeed struct {
	Path  string
	Parse ParseFunc
}

func (f FileFeed) Resolve(ctx context.Context, _ bool) (appcast.Appcast, Resolution, error) {
	if err := ctx.Err(); err != nil {
		return appcast.Appcast{}, Defer, err
	}
	if f.Path == "" {
		return appcast.Appcast{}, Defer, nil
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return appcast.Appcast{}, Defer, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	parse := f.Parse
	if parse == nil {
		parse = appcast.Parse
	}
	a, err := parse(data)
	if err != nil {
		return appcast.Appcast{}, Defer, errs.New(errs.ParseError, "feed-file", err)
	}
	if !a.IsValid() {
		return a, ResolvedNoUpdate, nil
	}
	return a, ResolvedUpdate, nil
}
