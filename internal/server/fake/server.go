// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"sync"
	"testing"

	"github.com/mia-platform/apiboot/internal/server"
)

var _ server.Server = &Server{}

// Server is a server.Server that never binds a port. Start blocks until Stop is called
// and returns StartErr, if set, right away.
type Server struct {
	tb       testing.TB
	StartErr error
	StopErr  error

	startedChan chan struct{}
	closedChan  chan struct{}
	stopOnce    sync.Once
}

func NewFakeServer(tb testing.TB) *Server {
	tb.Helper()

	return &Server{
		tb:          tb,
		startedChan: make(chan struct{}),
		closedChan:  make(chan struct{}),
	}
}

func (s *Server) Start() error {
	s.tb.Helper()
	close(s.startedChan)
	if s.StartErr != nil {
		return s.StartErr
	}

	<-s.closedChan
	return nil
}

func (s *Server) Stop() error {
	s.tb.Helper()
	s.stopOnce.Do(func() { close(s.closedChan) })
	return s.StopErr
}

// StartedServer is closed once Start has been called.
func (s *Server) StartedServer() <-chan struct{} {
	s.tb.Helper()
	return s.startedChan
}

// Stopped is closed once Stop has been called.
func (s *Server) Stopped() <-chan struct{} {
	s.tb.Helper()
	return s.closedChan
}
