package fileref

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestLocalSaveAndResolve(t *testing.T) {
	local := NewLocal(t.TempDir())

	ref, size, _, err := local.Save(context.Background(), "user-1", "intro.wav", strings.NewReader("audio-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len("audio-bytes")) {
		t.Fatalf("size = %d", size)
	}

	body, resolvedSize, err := local.Resolve(context.Background(), ref)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Fatalf("data = %q", data)
	}
	if resolvedSize != size {
		t.Fatalf("resolved size = %d, want %d", resolvedSize, size)
	}
}

func TestLocalResolveRejectsTraversal(t *testing.T) {
	local := NewLocal(t.TempDir())
	if _, _, err := local.Resolve(context.Background(), "../etc/passwd"); err == nil {
		t.Fatal("expected traversal ref to be rejected")
	}
	if _, _, err := local.Resolve(context.Background(), "/etc/passwd"); err == nil {
		t.Fatal("expected absolute ref to be rejected")
	}
}

func TestSplitS3Ref(t *testing.T) {
	bucket, key, err := splitS3Ref("s3://resumes/user/abc.mp3")
	if err != nil {
		t.Fatalf("splitS3Ref: %v", err)
	}
	if bucket != "resumes" || key != "user/abc.mp3" {
		t.Fatalf("bucket=%q key=%q", bucket, key)
	}
	if _, _, err := splitS3Ref("s3://only-bucket"); err == nil {
		t.Fatal("expected error for missing key")
	}
}
