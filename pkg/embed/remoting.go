package embed

import (
	"context"
	"net"

	"github.com/skizo-lang/skizo/internal/domain"
	"github.com/skizo-lang/skizo/internal/pool"
	"github.com/skizo-lang/skizo/internal/remoting"
)

// Arg is one cross-domain call argument or return value (§4.9).
type Arg = remoting.Arg

const (
	ArgInt       = remoting.KindInt
	ArgFloat     = remoting.KindFloat
	ArgBool      = remoting.KindBool
	ArgString    = remoting.KindString
	ArgObjectRef = remoting.KindObjectRef
	ArgInterface = remoting.KindInterface
)

// Server is a bound remoting listener, returned by Domain.StartRemoting.
type Server = remoting.Server

// Client dials another domain's remoting listener; see Dial.
type Client = remoting.Client

// Export registers obj (an instance of the named class) so another
// domain's Client can address it by the returned exported name (§6
// "export object", §4.9).
func (d *Domain) Export(className string, obj pool.Ptr) (string, error) {
	return d.inner.Export(className, obj)
}

// Revoke removes a previously exported name.
func (d *Domain) Revoke(name string) { d.inner.Revoke(name) }

// StartRemoting opens this domain's remoting listener on lis (§4.9,
// §6 "start listening for remote calls"). The caller owns lis's
// lifetime; ctx cancellation stops the listen loop, and CloseDomain
// stops the returned server if the caller hasn't already.
func (d *Domain) StartRemoting(ctx context.Context, lis net.Listener) (*Server, error) {
	return d.inner.StartRemoting(ctx, lis)
}

// Dial connects to another domain's remoting listener (§6 "connect to a
// remote domain"), returning a Client for synchronous cross-domain calls.
func Dial(addr string) (*Client, error) { return domain.DialRemote(addr) }

// CallContext bounds a remoting call by the default RemoteCallTimeout
// (§5).
func CallContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return remoting.CallContext(ctx)
}
