// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"funcshell/internal/proto"
	"funcshell/internal/shell"
)

// Service dispatches protocol requests against a manager pool. Requests are
// read sequentially but executed concurrently, each on its own checked-out
// manager; responses are written as invocations finish.
type Service struct {
	pool   *Pool
	codec  *proto.Codec
	logger *log.Logger
}

// NewService creates a service over the given pool and transport codec.
func NewService(pool *Pool, codec *proto.Codec, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		pool:   pool,
		codec:  codec,
		logger: logger,
	}
}

// Serve reads requests until EOF or ctx cancellation, waits for in-flight
// invocations to finish, and returns. A malformed request line aborts the
// loop: the transport framing can no longer be trusted.
func (s *Service) Serve(ctx context.Context) error {
	// Filling the semaphore on the way out waits for in-flight invocations.
	inflight := make(chan struct{}, s.pool.Size())
	defer func() {
		for i := 0; i < cap(inflight); i++ {
			inflight <- struct{}{}
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		req, err := s.codec.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		inflight <- struct{}{}
		go func() {
			defer func() { <-inflight }()
			s.dispatch(ctx, req)
		}()
	}
}

// dispatch executes one request on a pooled manager and writes the response.
func (s *Service) dispatch(ctx context.Context, req *proto.Request) {
	resp := &proto.Response{ID: req.ID}

	m, err := s.pool.Acquire(ctx)
	if err != nil {
		resp.Error = err.Error()
		s.respond(resp)
		return
	}
	defer s.pool.Release(m)

	res, err := m.InvokeFunction(ctx, req.Function, shell.Request{
		Bindings: convertBindings(req.Bindings),
		Metadata: req.Metadata,
	})
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Outputs = res.Outputs
	}
	s.respond(resp)
}

func (s *Service) respond(resp *proto.Response) {
	if err := s.codec.Write(resp); err != nil {
		s.logger.Error("write response", "id", resp.ID, "err", err)
	}
}

func convertBindings(in []proto.Binding) []shell.ParameterBinding {
	if len(in) == 0 {
		return nil
	}
	out := make([]shell.ParameterBinding, len(in))
	for i, b := range in {
		out[i] = shell.ParameterBinding{Name: b.Name, Value: b.Value}
	}
	return out
}
