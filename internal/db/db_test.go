// Package db provides integration tests for SurrealDB operations.
package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/docchat-labs/docchat/internal/metrics"
)

// testDim keeps test vectors small; production uses the embedder's real
// dimension.
const testDim = 384

var testDB *Client
var testStats *metrics.Collector
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testStats = metrics.NewCollector()
	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, testStats, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx, testDim); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

// dummyEmbedding returns a deterministic test vector. seed shifts the
// values so different chunks rank differently against a query.
func dummyEmbedding(seed float32) []float32 {
	embedding := make([]float32, testDim)
	for i := range embedding {
		embedding[i] = (float32(i) + seed) / float32(testDim)
	}
	return embedding
}

func TestQueryTimingsRecorded(t *testing.T) {
	before := int64(0)
	if stage := testStats.Snapshot().Stages[metrics.StageDBQuery]; stage != nil {
		before = stage.Count
	}

	if _, err := testDB.Query(context.Background(), "RETURN 1", nil); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	stage := testStats.Snapshot().Stages[metrics.StageDBQuery]
	if stage == nil {
		t.Fatal("expected db_query stage in snapshot")
	}
	if stage.Count <= before {
		t.Errorf("db_query count = %d, want > %d", stage.Count, before)
	}
}
