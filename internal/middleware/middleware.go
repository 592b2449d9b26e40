package middleware

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	CtxKeySettings contextKey = "settings"
	CtxKeyPrefs    contextKey = "prefs"
)

type CommandFactory func() *cobra.Command

type MiddlewareFunc func(cmd *cobra.Command, args []string, next func(cmd *cobra.Command, args []string) error) error

type MiddlewareChain func(factory CommandFactory) CommandFactory

type contextKey string

// UseMiddlewareChain wraps a CommandFactory so that middlewares run, in
// order, as the command's PreRunE. A middleware that does not call next stops
// the chain.
func UseMiddlewareChain(middlewares ...MiddlewareFunc) MiddlewareChain {
	chain := append([]MiddlewareFunc(nil), middlewares...)

	return func(factory CommandFactory) CommandFactory {
		return func() *cobra.Command {
			cmd := factory()
			orig := cmd.PreRunE

			var step func(i int, c *cobra.Command, a []string) error
			step = func(i int, c *cobra.Command, a []string) error {
				if i == len(chain) {
					if orig != nil {
						return orig(c, a)
					}
					return nil
				}
				return chain[i](c, a, func(nc *cobra.Command, na []string) error {
					return step(i+1, nc, na)
				})
			}

			cmd.PreRunE = func(c *cobra.Command, a []string) error {
				return step(0, c, a)
			}
			return cmd
		}
	}
}

func Get[T any](cmd *cobra.Command, key contextKey) (T, error) {
	var zero T

	ctx := cmd.Context()
	if ctx == nil {
		return zero, fmt.Errorf("command context is nil")
	}

	val := ctx.Value(key)
	if val == nil {
		return zero, fmt.Errorf("context value %q is nil", key)
	}

	casted, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("context value %q has wrong type: %T", key, val)
	}

	return casted, nil
}
