package models

import (
	"reflect"
	"testing"
)

func TestDecodeRemotePayload(t *testing.T) {
	data := []byte(`{"items":[{"name":"a.txt","dir":false},{"name":"src","dir":true}]}`)

	entries, err := DecodeRemotePayload(data)
	if err != nil {
		t.Fatalf("DecodeRemotePayload() error = %v", err)
	}
	want := []RemoteEntry{
		{ID: "a.txt", Name: "a.txt", Kind: KindFile, RelativePath: "a.txt"},
		{ID: "src", Name: "src", Kind: KindDirectory, RelativePath: "src"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("DecodeRemotePayload() = %v, want %v", entries, want)
	}
}

func TestDecodeRemotePayloadMalformed(t *testing.T) {
	if _, err := DecodeRemotePayload([]byte("{broken")); err == nil {
		t.Error("DecodeRemotePayload() error = nil, want parse failure")
	}
}

func TestDecodeLocalPayload(t *testing.T) {
	data := []byte(`{"paths":["file:///tmp/with%20space.txt","/plain/path.txt"]}`)

	paths, err := DecodeLocalPayload(data)
	if err != nil {
		t.Fatalf("DecodeLocalPayload() error = %v", err)
	}
	want := []string{"/tmp/with space.txt", "/plain/path.txt"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("DecodeLocalPayload() = %v, want %v", paths, want)
	}
}

func TestDecodeLocalPayloadBadURL(t *testing.T) {
	if _, err := DecodeLocalPayload([]byte(`{"paths":["file://%zz"]}`)); err == nil {
		t.Error("DecodeLocalPayload() error = nil, want URL parse failure")
	}
}

func TestRemoteEntryIsDirectory(t *testing.T) {
	tests := []struct {
		kind EntryKind
		want bool
	}{
		{KindDirectory, true},
		{KindFile, false},
		{KindSymlink, false},
		{KindOther, false},
	}
	for _, tt := range tests {
		e := RemoteEntry{Kind: tt.kind}
		if got := e.IsDirectory(); got != tt.want {
			t.Errorf("IsDirectory() for %v = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestSessionResultSucceeded(t *testing.T) {
	if !(SessionResult{ExitCode: 0}).Succeeded() {
		t.Error("Succeeded() = false for exit 0")
	}
	if (SessionResult{ExitCode: 1}).Succeeded() {
		t.Error("Succeeded() = true for exit 1")
	}
}
