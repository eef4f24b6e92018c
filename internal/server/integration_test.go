package server

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func discardLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// TestInsertThenSelectRoundTrips checks the insert half of spec §8
// invariant 4 against a real PostgreSQL instance: an insert returns the
// inserted row, with its generated key, through the mutation's own
// RETURNING clause. It issues no separate select. Skipped unless
// NDC_POSTGRES_INTEGRATION=1, since it needs Docker. Grounded on
// xataio-pgroll's pkg/testutils/util.go SharedTestMain (same
// postgres.RunContainer/wait.ForLog/ConnectionString sequence), scoped to
// one test rather than a package-wide TestMain since this is the only test
// in the package that needs a live database.
func TestInsertThenSelectRoundTrips(t *testing.T) {
	if os.Getenv("NDC_POSTGRES_INTEGRATION") != "1" {
		t.Skip("set NDC_POSTGRES_INTEGRATION=1 to run against a real PostgreSQL container")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	waitForLogs := wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(30 * time.Second)
	ctr, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15.3"),
		postgres.WithDatabase("ndc_postgres_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(waitForLogs),
	)
	require.NoError(t, err)
	defer ctr.Terminate(ctx) //nolint:errcheck

	connString, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := Connect(ctx, connString, 5, 30*time.Second, discardLogger())
	require.NoError(t, err)
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, `CREATE TABLE artist ("ArtistId" serial primary key, "Name" text not null)`)
	conn.Release()
	require.NoError(t, err)

	m := &metadata.Metadata{Tables: map[string]metadata.TableInfo{"artist": artistRoundTripTable()}}

	insertRequest := ndc.MutationRequest{Operations: []ndc.MutationOperation{{
		Name: "experimental_insert_artist",
		Arguments: map[string]json.RawMessage{
			"_objects": json.RawMessage(`[{"Name": "Radiohead"}]`),
		},
	}}}

	result, err := ExecuteMutation(ctx, pool, m, insertRequest, "")
	require.NoError(t, err)

	var mutationResponse struct {
		OperationResults []struct {
			Returning []map[string]interface{} `json:"returning"`
		} `json:"operation_results"`
	}
	require.NoError(t, json.Unmarshal(result, &mutationResponse))
	require.Len(t, mutationResponse.OperationResults, 1)
	require.Len(t, mutationResponse.OperationResults[0].Returning, 1)

	insertedID := mutationResponse.OperationResults[0].Returning[0]["ArtistId"]
	require.NotNil(t, insertedID)
}

func artistRoundTripTable() metadata.TableInfo {
	return metadata.TableInfo{
		SchemaName: "public",
		TableName:  "artist",
		Columns: map[string]metadata.ColumnInfo{
			"ArtistId": {Name: "ArtistId", Type: metadata.ScalarTypeOf("int4"), Nullable: metadata.NullableNo, HasDefault: metadata.HasDefaultYes, IsIdentity: metadata.IdentityNotIdentity, IsGenerated: metadata.GeneratedNotGenerated},
			"Name":     {Name: "Name", Type: metadata.ScalarTypeOf("text"), Nullable: metadata.NullableNo, HasDefault: metadata.HasDefaultNo, IsIdentity: metadata.IdentityNotIdentity, IsGenerated: metadata.GeneratedNotGenerated},
		},
		Uniqueness: []metadata.UniquenessConstraint{{Name: "artist_pkey", UniqueColumns: []string{"ArtistId"}}},
	}
}
