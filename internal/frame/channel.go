package frame

import "github.com/lootlens/platform/internal/syncx"

// Channel is the producer/consumer bridge: two capacity-one latest-wins
// cells, one for frame bytes and one for format metadata. Publishing never
// blocks the capture producer; a full slot drops its stale value. Readers
// may miss overwritten frames, which is intentional: only the freshest
// frame matters.
type Channel struct {
	data *syncx.Latest[[]byte]
	meta *syncx.Latest[Meta]
}

// NewChannel creates an empty channel pair.
func NewChannel() *Channel {
	return &Channel{
		data: syncx.NewLatest[[]byte](),
		meta: syncx.NewLatest[Meta](),
	}
}

// PublishData publishes a frame buffer, replacing any unread one.
func (c *Channel) PublishData(b []byte) { c.data.Publish(b) }

// PublishMeta publishes format metadata, replacing any unread update.
func (c *Channel) PublishMeta(m Meta) { c.meta.Publish(m) }

// Publish updates both cells back to back for producers that have the
// buffer and its metadata at the same time. The cells remain independent;
// this just bounds the skew between them to a single poll.
func (c *Channel) Publish(f Frame) {
	c.meta.Publish(f.Meta)
	c.data.Publish(f.Data)
}

// TryTakeData returns the most recent unread frame buffer, if any.
func (c *Channel) TryTakeData() ([]byte, bool) { return c.data.TryTake() }

// TryTakeMeta returns the most recent unread metadata, if any.
func (c *Channel) TryTakeMeta() (Meta, bool) { return c.meta.TryTake() }
