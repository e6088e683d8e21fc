//go:build integration

// Package testutils provides shared test infrastructure for integration tests.
package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gocloud.dev/blob"
)

// TestItem is an item document served by the test HTTP server.
type TestItem struct {
	Name string
	Data []byte
}

// GenerateItems returns n valid item documents named item-000.json onwards.
// Titles alternate between two brands.
func GenerateItems(t *testing.T, n int) []TestItem {
	t.Helper()

	brands := []string{"Acme", "Zeta"}
	items := make([]TestItem, n)
	for i := range items {
		doc := map[string]any{
			"title":    fmt.Sprintf("%s item %d", brands[i%len(brands)], i),
			"imgUrl":   fmt.Sprintf("https://img.example.com/%d.jpg", i),
			"aUrl":     fmt.Sprintf("https://www.amazon.co.jp/gp/product/B%09d?ref=x", i),
			"btnStyle": "__three",
		}
		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("marshal item %d: %v", i, err)
		}
		items[i] = TestItem{Name: fmt.Sprintf("item-%03d.json", i), Data: data}
	}
	return items
}

// ItemServer is an HTTP server publishing a manifest and its items.
type ItemServer struct {
	*httptest.Server

	// Requests counts item requests, manifest requests excluded.
	Requests atomic.Int64
}

// ManifestURL is the URL of the served manifest.
func (s *ItemServer) ManifestURL() string {
	return s.URL + "/manifest.json"
}

// StartTestHTTPServer serves /manifest.json listing every item under
// /items/. Items named in missing are listed but answer 404.
func StartTestHTTPServer(t *testing.T, items []TestItem, missing ...string) *ItemServer {
	t.Helper()

	itemMap := make(map[string][]byte)
	files := make([]string, 0, len(items))
	for _, it := range items {
		itemMap["/items/"+it.Name] = it.Data
		files = append(files, it.Name)
	}
	for _, name := range missing {
		delete(itemMap, "/items/"+name)
	}

	s := &ItemServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path == "/manifest.json" {
			json.NewEncoder(w).Encode(map[string]any{
				"baseUrl": "http://" + r.Host + "/items/",
				"files":   files,
			})
			return
		}

		if !strings.HasPrefix(r.URL.Path, "/items/") {
			http.NotFound(w, r)
			return
		}
		s.Requests.Add(1)

		data, ok := itemMap[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(s.Close)

	return s
}

// MinioEnv contains connection information for a Minio test environment.
type MinioEnv struct {
	Container testcontainers.Container
	BucketURL string
	Endpoint  string
}

// Close terminates the Minio container.
func (e *MinioEnv) Close(ctx context.Context) error {
	if e.Container != nil {
		return e.Container.Terminate(ctx)
	}
	return nil
}

// OpenBucket opens a gocloud bucket connection to the Minio environment.
func (e *MinioEnv) OpenBucket(ctx context.Context) (*blob.Bucket, error) {
	return blob.OpenBucket(ctx, e.BucketURL)
}

// StartMinioContainer starts a Minio container with a pre-created bucket.
func StartMinioContainer(t *testing.T, ctx context.Context, bucketName string) *MinioEnv {
	t.Helper()

	const (
		accessKey = "minioadmin"
		secretKey = "minioadmin"
	)

	networkName := fmt.Sprintf("blogparts-test-net-%d", time.Now().UnixNano())
	network, err := testcontainers.GenericNetwork(ctx, testcontainers.GenericNetworkRequest{
		NetworkRequest: testcontainers.NetworkRequest{
			Name: networkName,
		},
	})
	if err != nil {
		t.Fatalf("create network: %v", err)
	}
	t.Cleanup(func() { network.Remove(ctx) })

	minioContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Networks:     []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {"minio"},
			},
			Env: map[string]string{
				"MINIO_ROOT_USER":     accessKey,
				"MINIO_ROOT_PASSWORD": secretKey,
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/ready").WithPort("9000"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start minio container: %v", err)
	}

	createBucket(t, ctx, networkName, accessKey, secretKey, bucketName)

	host, err := minioContainer.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}
	port, err := minioContainer.MappedPort(ctx, "9000")
	if err != nil {
		t.Fatalf("get container port: %v", err)
	}
	endpoint := fmt.Sprintf("%s:%s", host, port.Port())

	// gocloud reads the AWS credentials from the environment.
	t.Setenv("AWS_ACCESS_KEY_ID", accessKey)
	t.Setenv("AWS_SECRET_ACCESS_KEY", secretKey)

	return &MinioEnv{
		Container: minioContainer,
		BucketURL: fmt.Sprintf("s3://%s?endpoint=http://%s&use_path_style=true&disable_https=true&region=us-east-1",
			bucketName, endpoint),
		Endpoint: endpoint,
	}
}

// createBucket runs a short-lived minio/mc container that creates the bucket.
func createBucket(t *testing.T, ctx context.Context, networkName, accessKey, secretKey, bucketName string) {
	t.Helper()

	mc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:      "minio/mc:latest",
			Networks:   []string{networkName},
			Entrypoint: []string{"/bin/sh", "-c"},
			Cmd: []string{
				fmt.Sprintf("/usr/bin/mc alias set local http://minio:9000 %s %s && /usr/bin/mc mb local/%s; exit 0",
					accessKey, secretKey, bucketName),
			},
			WaitingFor: wait.ForExit(),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start mc container: %v", err)
	}
	defer mc.Terminate(ctx)
}
