package rest

import (
	"sync"

	"github.com/relief-ops/supply-allocator/pkg/core"
	"github.com/relief-ops/supply-allocator/pkg/distribution"
	"github.com/relief-ops/supply-allocator/pkg/solver"
)

// A statefull REST server exposing the published allocation and the flows behind it
type StateFullServer struct {
	BaseServer
	store *distribution.Store

	mu     sync.RWMutex
	system *core.System
	result *solver.Result
}

// create a statefull REST server reading from the given store
func NewStateFullServer(store *distribution.Store) *StateFullServer {
	server := &StateFullServer{
		BaseServer: *NewBaseServer(),
		store:      store,
	}

	server.router.GET("/getAllocation", server.getAllocation)
	server.router.GET("/getAllocation/:sink", server.getSinkAllocation)
	server.router.GET("/getSolution", server.getSolution)
	server.router.GET("/getFlows", server.getFlows)

	server.router.POST("/optimizeOne", optimizeOne)

	return server
}

// SetResult records the system and the result whose allocation was published
func (server *StateFullServer) SetResult(system *core.System, result *solver.Result) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.system = system
	server.result = result
}

func (server *StateFullServer) state() (*core.System, *solver.Result) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	return server.system, server.result
}
