package server

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Device describes one connected remote.
type Device struct {
	ID           string    `json:"id"`
	IP           string    `json:"ip"`
	UserAgent    string    `json:"userAgent"`
	Name         string    `json:"name,omitempty"`
	ConnectedAt  time.Time `json:"connectedAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}

func newDevice(ip, userAgent, name string) Device {
	now := time.Now()
	return Device{
		ID:           uuid.NewString(),
		IP:           ip,
		UserAgent:    userAgent,
		Name:         name,
		ConnectedAt:  now,
		LastActiveAt: now,
	}
}

func (d Device) String() string {
	label := d.Name
	if label == "" {
		label = d.UserAgent
	}
	return fmt.Sprintf("%s (%s, connected %s)", label, d.IP, humanize.Time(d.ConnectedAt))
}

// registry tracks connected clients by device id.
type registry struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func newRegistry() *registry {
	return &registry{clients: make(map[string]*client)}
}

func (r *registry) add(c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.device.ID] = c
}

// remove deletes the client and reports whether it was registered.
func (r *registry) remove(id string) (*client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if ok {
		delete(r.clients, id)
	}
	return c, ok
}

func (r *registry) touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[id]; ok {
		c.device.LastActiveAt = time.Now()
	}
}

func (r *registry) all() []*client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// devices returns a snapshot of connected devices, oldest connection first.
func (r *registry) devices() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Device, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c.device)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ConnectedAt.Before(out[j].ConnectedAt)
	})
	return out
}
