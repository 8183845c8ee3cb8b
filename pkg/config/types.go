package config

// All data needed to build and serve an allocation
type SystemData struct {
	Spec SystemSpec `json:"spec" yaml:"spec"`
}

// Specifications of the system: network, demands, optimizer, and distribution server
type SystemSpec struct {
	Network   NetworkData       `json:"network" yaml:"network"`     // capacitated network
	Demands   []DemandSpec      `json:"demands" yaml:"demands"`     // per-sink demands
	Optimizer OptimizerSpec     `json:"optimizer" yaml:"optimizer"` // allocation strategy
	Server    DistributionSpec  `json:"server" yaml:"server"`       // distribution server
	Labels    map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Data related to the network
type NetworkData struct {
	Source string     `json:"source" yaml:"source"` // single supply node
	Nodes  []string   `json:"nodes" yaml:"nodes"`   // optional, nodes named by edges are added implicitly
	Edges  []EdgeSpec `json:"edges" yaml:"edges"`   // directed edges
}

// Specifications of a directed edge
type EdgeSpec struct {
	From     string  `json:"from" yaml:"from"`         // tail node
	To       string  `json:"to" yaml:"to"`             // head node
	Capacity float64 `json:"capacity" yaml:"capacity"` // maximum total flow over all commodities
	Cost     float64 `json:"cost" yaml:"cost"`         // per unit of flow
}

// Flow over an edge and the share of its capacity in use
type EdgeFlowSpec struct {
	EdgeSpec `yaml:",inline"`
	Flow     float64 `json:"flow" yaml:"flow"`
	Usage    float64 `json:"usage" yaml:"usage"` // flow / capacity, 0 for edges without capacity
}

// Specifications of a sink demand
type DemandSpec struct {
	Sink     string  `json:"sink" yaml:"sink"`         // sink node name
	Quantity float64 `json:"quantity" yaml:"quantity"` // requested quantity
}

// Specifications for the optimizer
type OptimizerSpec struct {
	Strategy  string  `json:"strategy" yaml:"strategy"`                       // heuristic or exact
	Epsilon   float64 `json:"epsilon,omitempty" yaml:"epsilon,omitempty"`     // flows below are reported as zero
	Tolerance float64 `json:"tolerance,omitempty" yaml:"tolerance,omitempty"` // LP solver tolerance
}

// Specifications for the distribution server
type DistributionSpec struct {
	Host           string `json:"host" yaml:"host"`                     // bind host
	Port           string `json:"port" yaml:"port"`                     // bind port
	MaxConnections int    `json:"maxConnections" yaml:"maxConnections"` // serve N connections then exit (0 = forever)
	PoolSize       int    `json:"poolSize" yaml:"poolSize"`             // connection workers (0 = unbounded)
	ReadTimeout    string `json:"readTimeout" yaml:"readTimeout"`       // per connection, e.g. 5s
}

// Solution sent to clients and printed by tools
type AllocationSolution struct {
	Strategy    string             `json:"strategy" yaml:"strategy"` // strategy that produced the solution
	Spec        map[string]float64 `json:"spec" yaml:"spec"`         // sink name -> allocated quantity
	Unsatisfied []DemandSpec       `json:"unsatisfied,omitempty" yaml:"unsatisfied,omitempty"`
	Cost        float64            `json:"cost" yaml:"cost"` // total flow cost
}
