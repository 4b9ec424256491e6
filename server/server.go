// Package server exposes a read-only HTTP view of in-flight CRM
// experiments: which runs are registered, how many episodes they have
// completed, their latest trace's reward/termination, and cumulative
// state coverage. Grounded on the teacher's cbft.InterceptNetwork
// (cbft/network.go), which wraps gin the same way: gin.ReleaseMode,
// a plain *http.Server, and a context-driven Start/Shutdown pair.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zeu5/crm-rl/rl"
)

// RunStatus is one registered run's current snapshot.
type RunStatus struct {
	Name           string  `json:"name"`
	Episodes       int     `json:"episodes"`
	LastReward     float64 `json:"last_reward"`
	LastTerminated bool    `json:"last_terminated"`
	UniqueStates   int     `json:"unique_states"`
}

type run struct {
	traces []*rl.Trace
}

// Server serves the current status of every registered run over HTTP.
// It is safe for concurrent use: runs are updated by an experiment
// goroutine while handlers read them concurrently.
type Server struct {
	Port int

	ctx    context.Context
	server *http.Server

	lock *sync.Mutex
	runs map[string]*run
}

// New builds a Server listening on port once Start is called. ctx
// controls shutdown: when it is cancelled the HTTP server is stopped.
func New(ctx context.Context, port int) *Server {
	s := &Server{
		Port: port,
		ctx:  ctx,
		lock: new(sync.Mutex),
		runs: make(map[string]*run),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/status", s.handleStatus)
	r.GET("/runs/:name", s.handleRun)
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}
	return s
}

// Handler returns the underlying HTTP handler, mainly so tests can
// exercise routes with httptest without binding a real port.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving in the background and stops when ctx is done.
func (s *Server) Start() {
	go func() {
		s.server.ListenAndServe()
	}()
	go func() {
		<-s.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()
}

// RecordEpisode appends trace to the named run's history, creating the
// run on first use. The server reflects only what is recorded here;
// rl.Experiment does not call it, so whoever drives the episodes must.
func (s *Server) RecordEpisode(name string, trace *rl.Trace) {
	s.lock.Lock()
	defer s.lock.Unlock()
	r, ok := s.runs[name]
	if !ok {
		r = &run{traces: make([]*rl.Trace, 0)}
		s.runs[name] = r
	}
	r.traces = append(r.traces, trace)
}

func (s *Server) statusOf(name string, r *run) RunStatus {
	status := RunStatus{Name: name, Episodes: len(r.traces)}
	if len(r.traces) == 0 {
		return status
	}
	last := r.traces[len(r.traces)-1]
	status.LastReward = last.TotalReward()
	status.LastTerminated = last.Terminated()

	seen := make(map[string]bool)
	for _, trace := range r.traces {
		for i := 0; i < trace.Len(); i++ {
			st, _, _, _, _, _, _ := trace.Get(i)
			seen[st.Hash()] = true
		}
	}
	status.UniqueStates = len(seen)
	return status
}
