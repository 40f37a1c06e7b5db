// Package service provides primitives for composing the long-running
// services that make up a seqlinks deployment.
package service

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Service is implemented by objects that can be managed as a group.
type Service interface {
	// Name returns the name of the service.
	Name() string

	// Run executes the service and blocks until the context gets
	// cancelled or the service exits with an error.
	Run(context.Context) error
}

// Group is a list of services that run together and are treated as a
// single unit: if any service exits with an error, the whole group
// shuts down.
type Group []Service

// Run executes all Service instances in the group using the provided
// context and blocks until all of them have completed, either because
// the context got cancelled or because a service returned an error.
func (g Group) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	// Spawn a goroutine for each service and collect their run results.
	errCh := make(chan error, len(g))
	for _, s := range g {
		go func(s Service) {
			if err := s.Run(runCtx); err != nil {
				errCh <- fmt.Errorf("%s: %w", s.Name(), err)
				cancelFn()
			} else {
				errCh <- nil
			}
		}(s)
	}

	var err error
	for i := 0; i < len(g); i++ {
		if srvErr := <-errCh; srvErr != nil {
			err = multierror.Append(err, srvErr)
		}
	}

	return err
}
