package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"audiora/internal/domain"
	"audiora/internal/ports"
)

// resultFinalizer runs the side effects of a successful match.
type resultFinalizer struct {
	clipboard ports.Clipboard
	copy      bool
}

func newResultFinalizer(clipboard ports.Clipboard, copyResult bool) resultFinalizer {
	return resultFinalizer{clipboard: clipboard, copy: copyResult}
}

// Finalize copies the matched song to the clipboard. A clipboard failure is
// logged and never changes the session outcome.
func (f resultFinalizer) Finalize(ctx context.Context, logger zerolog.Logger, result domain.Result) bool {
	if !f.copy || f.clipboard == nil || !result.Matched() {
		return false
	}
	if err := f.clipboard.SetText(ctx, result.Song); err != nil {
		logger.Warn().Err(err).Str("code", string(domain.ErrorCodeClipboard)).Msg("song matched but clipboard write failed")
		return false
	}
	return true
}
