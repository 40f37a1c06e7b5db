package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type blockingService struct {
	name string
	err  error
}

func (s blockingService) Name() string { return s.name }

func (s blockingService) Run(ctx context.Context) error {
	<-ctx.Done()
	return s.err
}

func TestGroupShutsDownWhenContextIsCancelled(t *testing.T) {
	grp := Group{
		blockingService{name: "svc0"},
		blockingService{name: "svc1"},
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- grp.Run(ctx) }()

	cancelFn()
	select {
	case err := <-doneCh:
		if err != nil {
			t.Fatalf("got error %v; want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for group to shut down")
	}
}

type failingService struct {
	name string
}

func (s failingService) Name() string { return s.name }

func (s failingService) Run(context.Context) error {
	return errors.New("boom")
}

func TestGroupShutsDownWhenServiceFails(t *testing.T) {
	grp := Group{
		failingService{name: "svc0"},
		blockingService{name: "svc1"},
	}

	doneCh := make(chan error, 1)
	go func() { doneCh <- grp.Run(context.Background()) }()

	select {
	case err := <-doneCh:
		if err == nil || !strings.Contains(err.Error(), "svc0: boom") {
			t.Fatalf("got error %v; want one mentioning svc0", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for group to shut down")
	}
}
