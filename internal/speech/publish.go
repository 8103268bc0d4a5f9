package speech

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	storage "github.com/supabase-community/storage-go"
)

// Publisher uploads compiled audio to Supabase Storage
type Publisher struct {
	client  *storage.Client
	baseURL string
	bucket  string
}

// NewPublisher creates a publisher for the given project URL, API key and bucket
func NewPublisher(supabaseURL, supabaseKey, bucket string) (*Publisher, error) {
	if supabaseURL == "" || supabaseKey == "" {
		return nil, errors.New("SUPABASE_URL and SUPABASE_KEY must be set to publish audio")
	}
	if bucket == "" {
		bucket = "uploads"
	}
	supabaseURL = strings.TrimRight(supabaseURL, "/")
	return &Publisher{
		client:  storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil),
		baseURL: supabaseURL,
		bucket:  bucket,
	}, nil
}

// ObjectName returns the storage path for a notebook's audio compiled at t
func ObjectName(notebook string, t time.Time) string {
	name := slug.Make(notebook)
	if name == "" {
		name = "notebook"
	}
	return fmt.Sprintf("audio/%s-%s.mp3", name, t.Format("20060102-150405"))
}

// Publish uploads audio under objectPath and returns its public URL
func (p *Publisher) Publish(objectPath string, audio []byte) (string, error) {
	contentType := "audio/mpeg"
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}

	if _, err := p.client.UploadFile(p.bucket, objectPath, bytes.NewReader(audio), options); err != nil {
		return "", fmt.Errorf("failed to upload audio: %v", err)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", p.baseURL, p.bucket, objectPath), nil
}
