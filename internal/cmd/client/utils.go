package client

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// grpcAddrFromEnv returns the gRPC server address from PARTYSEARCH_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("PARTYSEARCH_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:9090"
}

// dialGRPC opens a client connection with insecure transport for local/dev.
func dialGRPC() (*grpc.ClientConn, error) {
	return grpc.NewClient(grpcAddrFromEnv(), grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func withConn(ctx context.Context, fn func(context.Context, *grpc.ClientConn) error) error {
	conn, err := dialGRPC()
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(ctx, conn)
}

// readBody returns --data when set, else the contents of --file ("-" is stdin).
func readBody(in io.Reader, data, file string) (json.RawMessage, error) {
	if data != "" {
		return json.RawMessage(data), nil
	}
	if file == "" || file == "-" {
		b, err := io.ReadAll(in)
		return json.RawMessage(b), err
	}
	b, err := os.ReadFile(file)
	return json.RawMessage(b), err
}
