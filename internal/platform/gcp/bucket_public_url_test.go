package gcp

import "testing"

func TestResolvePublicBaseURL(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		cfg        ObjectStorageConfig
		wantURL    string
		wantSource string
		wantErr    bool
	}{
		{"gcs default", "", ObjectStorageConfig{Mode: ObjectStorageModeGCS}, "", "gcs_default", false},
		{"emulator fallback", "", ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443"}, "http://fake-gcs:4443", "storage_emulator_host", false},
		{"explicit override", "http://localhost:4443/", ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443"}, "http://localhost:4443", "object_storage_public_base_url", false},
		{"invalid override", "localhost:4443", ObjectStorageConfig{Mode: ObjectStorageModeGCS}, "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, source, err := resolvePublicBaseURL(tc.raw, tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolvePublicBaseURL: %v", err)
			}
			if got != tc.wantURL || source != tc.wantSource {
				t.Fatalf("want=(%q,%q) got=(%q,%q)", tc.wantURL, tc.wantSource, got, source)
			}
		})
	}
}

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name string
		urls objectURLs
		want string
	}{
		{"gcs default", objectURLs{bucket: "oy-audio"}, "https://storage.googleapis.com/oy-audio/narration/run.mp3"},
		{"cdn", objectURLs{bucket: "oy-audio", cdn: "cdn.oyster.ai", base: "https://files.example.com"}, "https://cdn.oyster.ai/narration/run.mp3"},
		{"public base", objectURLs{bucket: "oy-audio", base: "https://files.example.com"}, "https://files.example.com/oy-audio/narration/run.mp3"},
		{"emulator", objectURLs{bucket: "oy-audio", base: "http://fake-gcs:4443", emulator: true}, "http://fake-gcs:4443/storage/v1/b/oy-audio/o/narration%2Frun.mp3?alt=media"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &audioBucket{urls: tc.urls}
			if got := b.PublicURL(" /narration/run.mp3"); got != tc.want {
				t.Fatalf("PublicURL: want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestContentTypeForKey(t *testing.T) {
	if got := contentTypeForKey("a/b.MP3"); got != "audio/mpeg" {
		t.Fatalf("mp3: got=%q", got)
	}
	if got := contentTypeForKey("a/b.opus?v=2"); got != "audio/ogg" {
		t.Fatalf("opus: got=%q", got)
	}
	if got := contentTypeForKey("a/b.bin"); got != "application/octet-stream" {
		t.Fatalf("bin: got=%q", got)
	}
}

func TestCredentialsConfigured(t *testing.T) {
	if (Credentials{}).Configured() {
		t.Fatalf("empty credentials should not be configured")
	}
	if !(Credentials{File: "/secrets/sa.json"}).Configured() {
		t.Fatalf("file path should count as configured")
	}
	if got := len((Credentials{JSON: `{"type":"service_account"}`}).ClientOptions()); got != 1 {
		t.Fatalf("options: want=1 got=%d", got)
	}
	if (Credentials{}).ClientOptions() != nil {
		t.Fatalf("empty credentials should yield no options")
	}
}
