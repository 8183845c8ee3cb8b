package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relief-ops/supply-allocator/internal/utils"
	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/core"
	"github.com/relief-ops/supply-allocator/pkg/distribution"
	"github.com/relief-ops/supply-allocator/pkg/manager"
	"github.com/relief-ops/supply-allocator/pkg/solver"
)

// Handlers for REST API calls

// plan an allocation for the posted system without publishing it
func optimizeOne(c *gin.Context) {
	var systemData config.SystemData
	if err := c.BindJSON(&systemData); err != nil {
		return
	}
	system, optimizerSpec, err := core.NewSystemFromSpec(&systemData.Spec)
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"message": "invalid system: " + err.Error()})
		return
	}
	optimizer := solver.NewOptimizerFromSpec(optimizerSpec)
	result, err := manager.NewManager(system, optimizer, nil).Optimize()
	if err != nil {
		c.IndentedJSON(statusOf(err), gin.H{"message": "optimization error: " + err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, result.Solution())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidEdge), errors.Is(err, core.ErrInvalidDemand):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInfeasibleNetwork):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (server *StateFullServer) getAllocation(c *gin.Context) {
	allocation := server.store.Snapshot()
	if allocation == nil {
		c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"message": distribution.ErrNotPublished.Error()})
		return
	}
	spec := make(map[string]float64, allocation.Len())
	for _, sink := range allocation.Sinks() {
		spec[string(sink)], _ = allocation.Quantity(sink)
	}
	c.IndentedJSON(http.StatusOK, spec)
}

func (server *StateFullServer) getSinkAllocation(c *gin.Context) {
	name := c.Param("sink")
	q, err := server.store.Lookup(name)
	switch {
	case errors.Is(err, core.ErrUnknownSink):
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": config.UnknownSinkMessage + ": " + name})
		return
	case err != nil:
		c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"message": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, config.DemandSpec{Sink: name, Quantity: q})
}

func (server *StateFullServer) getSolution(c *gin.Context) {
	_, result := server.state()
	if result == nil {
		c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"message": distribution.ErrNotPublished.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, result.Solution())
}

func (server *StateFullServer) getFlows(c *gin.Context) {
	system, result := server.state()
	if result == nil {
		c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"message": distribution.ErrNotPublished.Error()})
		return
	}
	edges := system.Network().Edges()
	flows := make([]config.EdgeFlowSpec, len(edges))
	for i, e := range edges {
		flow := result.Flows.Flow(e.ID)
		flows[i] = config.EdgeFlowSpec{
			EdgeSpec: config.EdgeSpec{
				From:     string(e.From),
				To:       string(e.To),
				Capacity: e.Capacity,
				Cost:     e.Cost,
			},
			Flow:  flow,
			Usage: utils.Usage(e, flow),
		}
	}
	c.IndentedJSON(http.StatusOK, flows)
}
