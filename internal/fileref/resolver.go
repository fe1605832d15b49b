// Package fileref resolves stored file references (local paths, URLs, S3
// keys) into readable byte streams for the pipeline.
package fileref

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Resolver turns a storage reference into a readable stream plus its size.
// Size is -1 when the backend cannot report it cheaply.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (io.ReadCloser, int64, error)
}

// Router dispatches references to a backend by scheme: http(s):// to the
// HTTP resolver, s3:// to the S3 resolver, everything else to local disk.
type Router struct {
	Local Resolver
	HTTP  Resolver
	S3    Resolver
}

// Resolve picks the backend for ref and delegates.
func (r *Router) Resolve(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if r.HTTP == nil {
			return nil, 0, fmt.Errorf("http references not configured")
		}
		return r.HTTP.Resolve(ctx, ref)
	case strings.HasPrefix(ref, "s3://"):
		if r.S3 == nil {
			return nil, 0, fmt.Errorf("s3 references not configured")
		}
		return r.S3.Resolve(ctx, ref)
	default:
		if r.Local == nil {
			return nil, 0, fmt.Errorf("local references not configured")
		}
		return r.Local.Resolve(ctx, ref)
	}
}
