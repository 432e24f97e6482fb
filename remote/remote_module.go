// remote_module.go
//
// A remote runtime's module materialized as a local Forthic module. Each
// proxied word ships the whole operand stack to the peer, runs the word
// there, and replaces the local stack with the result. Values cross the
// boundary through the wire codec only, so anything in-process stops at
// the edge with a clear error.
package remote

import (
	"context"
	"time"

	"github.com/forthic-lang/forthic"
)

// DefaultCallTimeout bounds one proxied word call.
const DefaultCallTimeout = 30 * time.Second

// RemoteModule proxies one peer module.
type RemoteModule struct {
	client  *Client
	name    string
	timeout time.Duration
}

// LoadRemoteModule fetches the peer module's word list and builds a local
// module whose exported words proxy to the peer. A zero timeout uses
// DefaultCallTimeout.
func LoadRemoteModule(ctx context.Context, client *Client, name string, timeout time.Duration) (*forthic.Module, error) {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	info, err := client.GetModuleInfo(ctx, name)
	if err != nil {
		return nil, err
	}

	rm := &RemoteModule{client: client, name: name, timeout: timeout}
	m := forthic.NewModule(name)
	m.Description = info.Module.Description
	for _, wi := range info.Words {
		wi := wi
		m.AddExportedDirect(wi.Name, wi.Description, func(ip *forthic.Interpreter) error {
			return rm.call(ip, wi.Name)
		})
	}
	return m, nil
}

func (rm *RemoteModule) call(ip *forthic.Interpreter, word string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rm.timeout)
	defer cancel()

	out, err := rm.client.ExecuteWord(ctx, word, ip.Stack())
	if err != nil {
		return err
	}
	ip.SetStack(out)
	return nil
}
