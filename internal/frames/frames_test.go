package frames

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"0001.png", "1"},
		{"frame_12.jpg", "12"},
		{"rgb_3_front_7.png", "3"},
		{"000.png", ""},
		{"cover.png", ""},
		{"", ""},
		{"99999999999999999999999.png", "99999999999999999999999"},
	}
	for _, tt := range tests {
		if got := Number(tt.name); got != tt.want {
			t.Errorf("Number(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestListOrdersNumbersBeyondIntRange(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"99999999999999999999999.png",
		"100000000000000000000000.png",
		"5.png",
		"cover.png",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var order []string
	for _, p := range got {
		order = append(order, filepath.Base(p))
	}
	want := []string{"cover.png", "5.png", "99999999999999999999999.png", "100000000000000000000000.png"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("List() = %v, want %v", order, want)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"10.png", "2.jpg", "1.JPEG", "cover.png", "notes.txt", "a3.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "5.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, p := range got {
		if filepath.Dir(p) != dir {
			t.Errorf("frame %q not under %q", p, dir)
		}
		names = append(names, filepath.Base(p))
	}
	want := []string{"cover.png", "1.JPEG", "2.jpg", "a3.png", "10.png"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("List() = %v, want %v", names, want)
	}
}

func TestListEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := List(dir); !errors.Is(err, ErrNoFrames) {
		t.Fatalf("List() error = %v, want ErrNoFrames", err)
	}
	if _, err := List(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("List() on missing dir should fail")
	}
}

func TestConcatList(t *testing.T) {
	got := ConcatList([]string{"/v/1.png", "/v/it's.png"}, 4)
	want := "ffconcat version 1.0\n" +
		"file '/v/1.png'\nduration 0.25\n" +
		"file '/v/it'\\''s.png'\nduration 0.25\n" +
		"file '/v/it'\\''s.png'\n"
	if got != want {
		t.Errorf("ConcatList() =\n%s\nwant\n%s", got, want)
	}

	if def := ConcatList([]string{"a.png"}, 0); !strings.Contains(def, "duration 0.2\n") {
		t.Errorf("ConcatList() with fps 0 should use default fps, got %q", def)
	}
}

func TestWriteConcatList(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	path, err := WriteConcatList([]string{"/v/1.png"}, DefaultFPS)
	if err != nil {
		t.Fatalf("WriteConcatList() error = %v", err)
	}
	defer os.Remove(path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ConcatList([]string{"/v/1.png"}, DefaultFPS) {
		t.Errorf("written list = %q", data)
	}
}

func TestFFmpegArgs(t *testing.T) {
	args := FFmpegArgs("/tmp/list.txt", "/v/output_video.mp4", 0)
	if args[len(args)-1] != "/v/output_video.mp4" {
		t.Errorf("last arg = %q", args[len(args)-1])
	}
	joined := strings.Join(args, " ")
	for _, part := range []string{"-f concat", "-safe 0", "-i /tmp/list.txt", "-r 5"} {
		if !strings.Contains(joined, part) {
			t.Errorf("args %q missing %q", joined, part)
		}
	}
}
