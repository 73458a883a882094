package remote

import (
	"context"
	"fmt"
	"io"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	bytestream "google.golang.org/genproto/googleapis/bytestream"
	"google.golang.org/grpc"

	"github.com/dusk-network/kelvin/digest"
)

// digestFunction maps this package's digest.Algorithm onto REAPI's
// DigestFunction_Value enum, following protohelper.ProtoDigestFunction.
func digestFunction(algo digest.Algorithm) remoteexecution.DigestFunction_Value {
	switch algo {
	case digest.SHA256:
		return remoteexecution.DigestFunction_SHA256
	case digest.Blake3:
		return remoteexecution.DigestFunction_BLAKE3
	}
	return remoteexecution.DigestFunction_UNKNOWN
}

// Backend implements store.Backend against a remote CAS, reached over one
// shared gRPC connection. It satisfies store.Backend so it can be passed
// to store.Open via store.WithBackend.
type Backend struct {
	conn   *grpc.ClientConn
	cas    remoteexecution.ContentAddressableStorageClient
	stream bytestream.ByteStreamClient
	algo   digest.Algorithm
}

// New wraps an existing connection (typically produced by Dial).
func New(conn *grpc.ClientConn, algo digest.Algorithm) *Backend {
	return &Backend{
		conn:   conn,
		cas:    remoteexecution.NewContentAddressableStorageClient(conn),
		stream: bytestream.NewByteStreamClient(conn),
		algo:   algo,
	}
}

func resourceName(d digest.Digest, size int64) string {
	return fmt.Sprintf("blobs/%s/%d", d.Hex(), size)
}

// Has reports presence via FindMissingBlobs: d exists remotely iff it is
// absent from the response's missing list (spec.md §4.2, "Has must not
// require fetching bytes").
func (b *Backend) Has(d digest.Digest) (bool, error) {
	ctx := context.Background()
	resp, err := b.cas.FindMissingBlobs(ctx, &remoteexecution.FindMissingBlobsRequest{
		BlobDigests:    []*remoteexecution.Digest{{Hash: d.Hex()}},
		DigestFunction: digestFunction(b.algo),
	})
	if err != nil {
		return false, fmt.Errorf("store/remote: FindMissingBlobs: %w", err)
	}
	return len(resp.MissingBlobDigests) == 0, nil
}

// Get streams d's bytes over ByteStream.Read, adapted from the teacher's
// byteStreamReadCloser (service/cas/remote.go) collapsed into a single
// io.ReadAll since Store callers want the whole blob in memory anyway.
func (b *Backend) Get(d digest.Digest) ([]byte, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := b.stream.Read(ctx, &bytestream.ReadRequest{
		ResourceName: resourceName(d, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("store/remote: Read: %w", err)
	}

	var out []byte
	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store/remote: Read: %w", err)
		}
		out = append(out, resp.Data...)
	}
	return out, nil
}

// Put streams data over ByteStream.Write. The remote CAS is expected to
// deduplicate by digest on its own, matching diskBackend's no-op-if-
// present behavior locally.
func (b *Backend) Put(d digest.Digest, data []byte) error {
	ctx := context.Background()
	stream, err := b.stream.Write(ctx)
	if err != nil {
		return fmt.Errorf("store/remote: Write: %w", err)
	}

	name := resourceName(d, int64(len(data)))
	const chunkSize = 1 << 20
	for offset := 0; offset < len(data) || offset == 0; {
		end := offset + chunkSize
		if end > len(data) {
			end = len(data)
		}
		err := stream.Send(&bytestream.WriteRequest{
			ResourceName: name,
			WriteOffset:  int64(offset),
			Data:         data[offset:end],
			FinishWrite:  end == len(data),
		})
		if err != nil {
			return fmt.Errorf("store/remote: Write: %w", err)
		}
		offset = end
		if len(data) == 0 {
			break
		}
	}
	_, err = stream.CloseAndRecv()
	if err != nil {
		return fmt.Errorf("store/remote: Write: %w", err)
	}
	return nil
}
