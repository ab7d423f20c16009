package file

import (
	"bytes"
	"testing"
)

// ========== 内容哈希测试 ==========

func TestHashBytes(t *testing.T) {
	// echo -n "hello world" | sha256sum
	const want = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

	got := HashBytes([]byte("hello world"))
	if got != want {
		t.Errorf("HashBytes() = %s, want %s", got, want)
	}
}

func TestHashBytesEmpty(t *testing.T) {
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	got := HashBytes(nil)
	if got != want {
		t.Errorf("HashBytes(nil) = %s, want %s", got, want)
	}
}

func TestHashReaderMatchesHashBytes(t *testing.T) {
	data := []byte("the same content through either path")

	fromReader, err := HashReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("HashReader() error: %v", err)
	}
	if fromBytes := HashBytes(data); fromReader != fromBytes {
		t.Errorf("HashReader() = %s, HashBytes() = %s", fromReader, fromBytes)
	}
}

func TestHashBytesDiffersOnContent(t *testing.T) {
	if HashBytes([]byte("a")) == HashBytes([]byte("b")) {
		t.Error("different content produced the same hash")
	}
}
