package pebble

import (
	"context"
	"errors"
	"testing"

	"github.com/LeJamon/goDEXd/internal/storage/keyValueDb"
)

func TestPebbleDB(t *testing.T) {
	manager := NewManager(t.TempDir())
	defer manager.Close()

	ctx := context.Background()

	t.Run("Database Lifecycle", func(t *testing.T) {
		db, err := manager.OpenDB("test")
		if err != nil {
			t.Fatalf("Failed to open database: %v", err)
		}

		key := []byte("lifecycle-test")
		value := []byte("test-value")

		if err := db.Write(ctx, key, value); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		got, err := db.Read(ctx, key)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if string(got) != string(value) {
			t.Errorf("Wrong value read: got %s, want %s", got, value)
		}

		if _, err := db.Read(ctx, []byte("missing")); !errors.Is(err, keyValueDb.ErrKeyNotFound) {
			t.Errorf("err = %v, want ErrKeyNotFound", err)
		}

		if err := manager.CloseDB("test"); err != nil {
			t.Fatalf("Failed to close database: %v", err)
		}
	})

	t.Run("Batch Operations", func(t *testing.T) {
		db, err := manager.OpenDB("batch-test")
		if err != nil {
			t.Fatalf("Failed to open database: %v", err)
		}

		ops := []keyValueDb.BatchOperation{
			{Type: keyValueDb.BatchPut, Key: []byte("batch1"), Value: []byte("value1")},
			{Type: keyValueDb.BatchPut, Key: []byte("batch2"), Value: []byte("value2")},
			{Type: keyValueDb.BatchDelete, Key: []byte("batch1")},
		}
		if err := db.Batch(ctx, ops); err != nil {
			t.Fatalf("Batch operation failed: %v", err)
		}

		if _, err := db.Read(ctx, []byte("batch1")); err == nil {
			t.Error("Expected batch1 to be deleted")
		}
		value, err := db.Read(ctx, []byte("batch2"))
		if err != nil {
			t.Fatalf("Failed to read batch2: %v", err)
		}
		if string(value) != "value2" {
			t.Errorf("Wrong value for batch2: got %s, want value2", value)
		}
	})

	t.Run("Iterator", func(t *testing.T) {
		db, err := manager.OpenDB("iterator-test")
		if err != nil {
			t.Fatalf("Failed to open database: %v", err)
		}

		testData := map[string]string{
			"iter1": "value1",
			"iter2": "value2",
			"iter3": "value3",
		}
		for k, v := range testData {
			if err := db.Write(ctx, []byte(k), []byte(v)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}

		// [iter1, iter3) excludes iter3.
		iter, err := db.Iterator(ctx, []byte("iter1"), []byte("iter3"))
		if err != nil {
			t.Fatalf("Failed to create iterator: %v", err)
		}
		defer iter.Close()

		count := 0
		for iter.Next() {
			key := string(iter.Key())
			value := string(iter.Value())
			if want := testData[key]; value != want {
				t.Errorf("Wrong value for key %s: got %s, want %s", key, value, want)
			}
			count++
		}
		if err := iter.Error(); err != nil {
			t.Errorf("Iterator error: %v", err)
		}
		if count != 2 {
			t.Errorf("Iterator returned wrong number of items: got %d, want 2", count)
		}
	})
}
