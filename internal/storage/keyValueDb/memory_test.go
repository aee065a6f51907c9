package keyValueDb

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestMemoryDB(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	t.Run("Write and Read", func(t *testing.T) {
		key := []byte("test-key")
		value := []byte("test-value")

		if err := db.Write(ctx, key, value); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		got, err := db.Read(ctx, key)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if !bytes.Equal(got, value) {
			t.Errorf("Read returned wrong value: got %s, want %s", got, value)
		}

		// Mutating the returned slice must not leak into the store.
		got[0] = 'X'
		again, _ := db.Read(ctx, key)
		if !bytes.Equal(again, value) {
			t.Error("Read must return a copy")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		key := []byte("test-key")
		if err := db.Delete(ctx, key); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := db.Read(ctx, key); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Batch Operations", func(t *testing.T) {
		ops := []BatchOperation{
			{Type: BatchPut, Key: []byte("key1"), Value: []byte("value1")},
			{Type: BatchPut, Key: []byte("key2"), Value: []byte("value2")},
			{Type: BatchDelete, Key: []byte("key1")},
		}
		if err := db.Batch(ctx, ops); err != nil {
			t.Fatalf("Batch failed: %v", err)
		}

		if _, err := db.Read(ctx, []byte("key1")); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Expected key1 to be deleted")
		}
		value, err := db.Read(ctx, []byte("key2"))
		if err != nil {
			t.Fatalf("Read key2 failed: %v", err)
		}
		if string(value) != "value2" {
			t.Errorf("Wrong value for key2: got %s, want value2", value)
		}
	})

	t.Run("Iterator", func(t *testing.T) {
		db := NewMemory()
		for _, k := range []string{"a", "b", "c", "d"} {
			if err := db.Write(ctx, []byte(k), []byte("value-"+k)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}

		// End bound is exclusive.
		iter, err := db.Iterator(ctx, []byte("a"), []byte("c"))
		if err != nil {
			t.Fatalf("Iterator creation failed: %v", err)
		}
		defer iter.Close()

		var keys []string
		for iter.Next() {
			keys = append(keys, string(iter.Key()))
		}
		if err := iter.Error(); err != nil {
			t.Errorf("Iterator error: %v", err)
		}
		if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
			t.Errorf("Iterator keys = %v, want [a b]", keys)
		}
	})

	t.Run("Closed", func(t *testing.T) {
		db := NewMemory()
		if err := db.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if err := db.Write(ctx, []byte("k"), []byte("v")); !errors.Is(err, ErrDBClosed) {
			t.Errorf("Expected ErrDBClosed, got %v", err)
		}
	})
}

func TestPrefixEnd(t *testing.T) {
	cases := []struct {
		prefix []byte
		want   []byte
	}{
		{[]byte("b/"), []byte("b0")},
		{[]byte{0x01, 0xff}, []byte{0x02}},
		{[]byte{0xff, 0xff}, nil},
	}
	for _, tc := range cases {
		got := PrefixEnd(tc.prefix)
		if !bytes.Equal(got, tc.want) {
			t.Errorf("PrefixEnd(%v) = %v, want %v", tc.prefix, got, tc.want)
		}
	}
}
