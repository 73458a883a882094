// Package remote implements store.Backend against a remote execution API
// (REAPI) ContentAddressableStorage/ByteStream service, for deployments
// that want a Store to proxy into a shared cache instead of a local disk.
// The dialing and streaming logic is adapted from the teacher's
// service/internal/protohelper.Client and service/cas/remote.go.
package remote

import (
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Dial connects to a REAPI endpoint addressed by a grpc:// or grpcs://
// URI, mirroring the teacher's scheme-based dial logic. Unlike the
// teacher, this drops the pluggable credential.Helper abstraction: no
// auth/credential source was available to adapt from, and Kelvin's remote
// backend is an embedding detail rather than a multi-tenant CLI surface
// that needs to plug in arbitrary credential schemes (see DESIGN.md).
func Dial(uri string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	schemeAndRest := strings.SplitN(uri, "://", 2)
	if len(schemeAndRest) != 2 {
		return nil, fmt.Errorf("store/remote: invalid uri %q, want scheme://host", uri)
	}

	dialOpts := append([]grpc.DialOption{}, opts...)
	switch schemeAndRest[0] {
	case "grpc":
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	case "grpcs":
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(nil)))
	default:
		return nil, fmt.Errorf("store/remote: unsupported scheme %q", schemeAndRest[0])
	}

	target := fmt.Sprintf("dns:%s", schemeAndRest[1])
	return grpc.NewClient(target, dialOpts...)
}
