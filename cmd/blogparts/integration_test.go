//go:build integration

package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	_ "gocloud.dev/blob/s3blob"

	"github.com/tonpukusan/blog-parts-json-manager/internal/store"
	"github.com/tonpukusan/blog-parts-json-manager/internal/testutils"
)

func TestCLIIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	items := testutils.GenerateItems(t, 45)

	t.Log("Starting HTTP test server...")
	server := testutils.StartTestHTTPServer(t, items, "item-007.json")

	t.Log("Starting Minio container...")
	minio := testutils.StartMinioContainer(t, ctx, "cli-test-bucket")
	defer func() {
		if err := minio.Close(ctx); err != nil {
			t.Logf("failed to terminate minio container: %v", err)
		}
	}()

	t.Run("mirror", func(t *testing.T) {
		exitCode := runMirror([]string{
			"-manifest", server.ManifestURL(),
			"-to", minio.BucketURL,
			"-normalize",
			"-concurrency", "4",
		})
		if exitCode != ExitSuccess {
			t.Fatalf("mirror failed with exit code %d", exitCode)
		}
		if got := server.Requests.Load(); got != 45 {
			t.Errorf("expected 45 item requests, got %d", got)
		}

		bkt, err := minio.OpenBucket(ctx)
		if err != nil {
			t.Fatalf("open bucket: %v", err)
		}
		defer bkt.Close()

		m, err := store.ReadManifest(ctx, bkt, "manifest.json")
		if err != nil {
			t.Fatalf("read manifest: %v", err)
		}
		if len(m.Files) != 44 {
			t.Errorf("expected 44 mirrored files, got %d", len(m.Files))
		}
	})

	t.Run("check_from_bucket", func(t *testing.T) {
		var out bytes.Buffer
		exitCode := check([]string{
			"-from-bucket", minio.BucketURL,
			"-manifest", "manifest.json",
			"-bucket", minio.BucketURL,
		}, &out)
		if exitCode != ExitSuccess {
			t.Fatalf("check failed with exit code %d:\n%s", exitCode, out.String())
		}
	})

	t.Run("check_source_reports_missing", func(t *testing.T) {
		var out bytes.Buffer
		exitCode := check([]string{"-manifest", server.ManifestURL()}, &out)
		if exitCode != ExitValidationFailed {
			t.Fatalf("expected exit %d, got %d", ExitValidationFailed, exitCode)
		}
	})
}
