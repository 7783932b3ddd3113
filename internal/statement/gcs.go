package statement

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// FetchGCS downloads a statement file from a "gs://bucket/object" URI.
func FetchGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := splitGCSURI(gcsURI)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchGCS: create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchGCS: open %s: %w", gcsURI, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("FetchGCS: read %s: %w", gcsURI, err)
	}
	return data, nil
}

func splitGCSURI(uri string) (bucket, object string, err error) {
	trimmed, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("FetchGCS: %q is not a gs:// URI", uri)
	}
	bucket, object, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("FetchGCS: %q is missing a bucket or object path", uri)
	}
	return bucket, object, nil
}
