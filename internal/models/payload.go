package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// RemotePayload is the drag source description for remote items:
// {"items":[{"name":"a.txt","dir":false}]}.
type RemotePayload struct {
	Items []RemotePayloadItem `json:"items"`
}

// RemotePayloadItem is one named, typed entry in a remote drag payload.
type RemotePayloadItem struct {
	Name string `json:"name"`
	Dir  bool   `json:"dir"`
}

// LocalPayload is the drag source description for local items:
// {"paths":["file:///tmp/a.txt"]} or plain absolute paths.
type LocalPayload struct {
	Paths []string `json:"paths"`
}

// DecodeRemotePayload parses a remote drag payload into RemoteEntry values.
func DecodeRemotePayload(data []byte) ([]RemoteEntry, error) {
	var p RemotePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode remote payload: %w", err)
	}
	entries := make([]RemoteEntry, 0, len(p.Items))
	for _, it := range p.Items {
		kind := KindFile
		if it.Dir {
			kind = KindDirectory
		}
		entries = append(entries, RemoteEntry{
			ID:           it.Name,
			Name:         it.Name,
			Kind:         kind,
			RelativePath: it.Name,
		})
	}
	return entries, nil
}

// DecodeLocalPayload parses a local drag payload into absolute paths.
// Entries may be file:// URLs or plain paths.
func DecodeLocalPayload(data []byte) ([]string, error) {
	var p LocalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode local payload: %w", err)
	}
	paths := make([]string, 0, len(p.Paths))
	for _, raw := range p.Paths {
		if strings.HasPrefix(raw, "file://") {
			u, err := url.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid file URL %q: %w", raw, err)
			}
			paths = append(paths, u.Path)
			continue
		}
		paths = append(paths, raw)
	}
	return paths, nil
}
