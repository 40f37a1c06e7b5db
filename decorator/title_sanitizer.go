package decorator

import (
	"context"
	"strings"

	"github.com/ejacobg/seqlinks/pipeline"
	"github.com/microcosm-cc/bluemonday"
)

// titleSanitizer strips any markup from hit titles so they can be embedded
// into rendered report output. Sequence deflines are free-form text and may
// contain angle brackets or stray markup fragments.
type titleSanitizer struct {
	policy *bluemonday.Policy
}

func newTitleSanitizer() *titleSanitizer {
	return &titleSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Process implements pipeline.Processor.
func (ts *titleSanitizer) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*hitPayload)
	payload.displayTitle = strings.TrimSpace(ts.policy.Sanitize(payload.title))
	return payload, nil
}
