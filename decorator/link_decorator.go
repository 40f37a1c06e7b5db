package decorator

import (
	"context"

	"github.com/ejacobg/seqlinks/linkgen"
	"github.com/ejacobg/seqlinks/pipeline"
)

// linkDecorator applies the configured link generators to each hit payload.
type linkDecorator struct {
	generators []linkgen.Generator
}

func newLinkDecorator(generators []linkgen.Generator) *linkDecorator {
	return &linkDecorator{
		generators: generators,
	}
}

// Process implements pipeline.Processor. The payload itself satisfies
// linkgen.Record, so it can be fed to the generators directly.
func (ld *linkDecorator) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*hitPayload)
	payload.links = linkgen.Apply(ld.generators, payload)
	return payload, nil
}
