package filtergraph

import (
	"context"
	"strings"

	"github.com/xaionaro-go/avhwaccel/hwdevice"
	"github.com/xaionaro-go/xsync"
)

// Arg is a filter argument; Key is empty for positional arguments
// ("scale=1280:720").
type Arg struct {
	Key   string
	Value string
}

func (a Arg) String() string {
	if a.Key == "" {
		return escape(a.Value)
	}
	return escape(a.Key) + "=" + escape(a.Value)
}

type Node struct {
	Name string
	Args []Arg

	locker xsync.Mutex
	frozen bool
}

var _ hwdevice.FilterNode = (*Node)(nil)

func NewNode(name string, args ...Arg) *Node {
	return &Node{
		Name: name,
		Args: args,
	}
}

// FilterName implements hwdevice.FilterNode.
func (n *Node) FilterName() string {
	return n.Name
}

// Option returns the value of a keyed argument.
func (n *Node) Option(key string) (string, bool) {
	return xsync.DoR2(xsync.WithNoLogging(context.TODO(), true), &n.locker, func() (string, bool) {
		for _, arg := range n.Args {
			if arg.Key == key {
				return arg.Value, true
			}
		}
		return "", false
	})
}

// SetOption implements hwdevice.FilterNode: it replaces the value of the
// keyed argument or appends a new one.
func (n *Node) SetOption(key, value string) error {
	return xsync.DoR1(xsync.WithNoLogging(context.TODO(), true), &n.locker, func() error {
		if n.frozen {
			return ErrFrozen{Filter: n.Name}
		}
		for idx := range n.Args {
			if n.Args[idx].Key == key {
				n.Args[idx].Value = value
				return nil
			}
		}
		n.Args = append(n.Args, Arg{Key: key, Value: value})
		return nil
	})
}

func (n *Node) setFrozen(v bool) {
	n.locker.Do(xsync.WithNoLogging(context.TODO(), true), func() {
		n.frozen = v
	})
}

func (n *Node) String() string {
	return xsync.DoR1(xsync.WithNoLogging(context.TODO(), true), &n.locker, func() string {
		if len(n.Args) == 0 {
			return n.Name
		}
		args := make([]string, 0, len(n.Args))
		for _, arg := range n.Args {
			args = append(args, arg.String())
		}
		return n.Name + "=" + strings.Join(args, ":")
	})
}
