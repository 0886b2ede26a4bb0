package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoURI returns TEST_MONGO_URI, skipping the test when it is not set.
func MongoURI(t *testing.T) string {
	t.Helper()
	return requireEnv(t, "TEST_MONGO_URI")
}

// RedisAddr returns TEST_REDIS_ADDR, skipping the test when it is not set.
func RedisAddr(t *testing.T) string {
	t.Helper()
	return requireEnv(t, "TEST_REDIS_ADDR")
}

// FirestoreEmulator returns FIRESTORE_EMULATOR_HOST, skipping the test when it
// is not set. The Firestore client picks the variable up on its own, so tests
// only need the skip.
func FirestoreEmulator(t *testing.T) string {
	t.Helper()
	return requireEnv(t, "FIRESTORE_EMULATOR_HOST")
}

// DropMongoDatabase removes a throwaway database created by a test. Errors are
// reported but never fail the test; the database name is random anyway.
func DropMongoDatabase(t *testing.T, uri, name string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Logf("testutil.DropMongoDatabase: connect: %v", err)
		return
	}
	defer func() { _ = client.Disconnect(ctx) }()

	if err := client.Database(name).Drop(ctx); err != nil {
		t.Logf("testutil.DropMongoDatabase: drop %s: %v", name, err)
	}
}

func requireEnv(t *testing.T, key string) string {
	t.Helper()
	v := os.Getenv(key)
	if v == "" {
		t.Skipf("%s not set; skipping integration test", key)
	}
	return v
}
