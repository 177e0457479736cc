package assets

import (
	"context"
	"time"
)

// Kind enumerates the media kinds the adapters produce and consume.
type Kind string

const (
	KindImage   Kind = "image"
	KindVideo   Kind = "video"
	KindModel3D Kind = "model3d"
	KindMask    Kind = "mask"
)

// Asset is a media artifact stored in the host's asset system.
type Asset struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type,omitempty"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	Bytes       int64     `json:"bytes,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Ref references an input asset. Exactly one of HostID, URL or Data is
// expected to be set; resolution order follows that precedence.
type Ref struct {
	HostID string `json:"host_id,omitempty"`
	URL    string `json:"url,omitempty"`
	Data   []byte `json:"-"`
}

// Empty reports whether the reference carries nothing resolvable.
func (r Ref) Empty() bool {
	return r.HostID == "" && r.URL == "" && len(r.Data) == 0
}

// Resolver resolves input asset references to binary buffers.
// The workflow host implements this against its own asset storage.
type Resolver interface {
	// Resolve returns the referenced bytes and their content type.
	Resolve(ctx context.Context, ref Ref) (data []byte, contentType string, err error)
}

// Store persists generated media into the host's asset system.
type Store interface {
	// Save stores the buffer and returns the hosted asset record.
	Save(ctx context.Context, kind Kind, data []byte, contentType string) (Asset, error)
}
