// Package filtergraph describes filter graphs in the libav text syntax
// ("scale=w=1280:h=720,hwupload;anull") without depending on libav, so
// that the graph can be inspected and patched before it is instantiated.
package filtergraph

import (
	"fmt"
	"strings"

	"github.com/xaionaro-go/avhwaccel/hwdevice"
	"github.com/xaionaro-go/avhwaccel/types"
)

// Graph is a set of linear filter chains and the media types of the
// inputs feeding the graph sinks.
type Graph struct {
	Chains     []Chain
	SinkMedias []types.MediaType

	frozen bool
}

var _ hwdevice.FilterGraph = (*Graph)(nil)

type Chain []*Node

func New(sinkMedias []types.MediaType, chains ...Chain) *Graph {
	return &Graph{
		Chains:     chains,
		SinkMedias: sinkMedias,
	}
}

// SinkInputs implements hwdevice.FilterGraph.
func (g *Graph) SinkInputs() []types.MediaType {
	return g.SinkMedias
}

// Filters implements hwdevice.FilterGraph; nodes are returned chain by
// chain in the textual order.
func (g *Graph) Filters() []hwdevice.FilterNode {
	var result []hwdevice.FilterNode
	for _, chain := range g.Chains {
		for _, node := range chain {
			result = append(result, node)
		}
	}
	return result
}

// Nodes returns the nodes with the given filter name.
func (g *Graph) Nodes(name string) []*Node {
	var result []*Node
	for _, chain := range g.Chains {
		for _, node := range chain {
			if node.Name == name {
				result = append(result, node)
			}
		}
	}
	return result
}

// Freeze makes every node reject option changes; it is called once the
// graph is instantiated.
func (g *Graph) Freeze() {
	for _, chain := range g.Chains {
		for _, node := range chain {
			node.setFrozen(true)
		}
	}
	g.frozen = true
}

func (g *Graph) IsFrozen() bool {
	return g.frozen
}

func (g *Graph) String() string {
	var chains []string
	for _, chain := range g.Chains {
		chains = append(chains, chain.String())
	}
	return strings.Join(chains, ";")
}

func (c Chain) String() string {
	var nodes []string
	for _, node := range c {
		nodes = append(nodes, node.String())
	}
	return strings.Join(nodes, ",")
}

type ErrFrozen struct {
	Filter string
}

func (e ErrFrozen) Error() string {
	return fmt.Sprintf("the filter '%s' is already instantiated", e.Filter)
}

type ErrParse struct {
	Text   string
	Offset int
	Reason string
}

func (e ErrParse) Error() string {
	return fmt.Sprintf("unable to parse filter graph '%s' at offset %d: %s", e.Text, e.Offset, e.Reason)
}
