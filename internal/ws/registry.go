package ws

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/go-demo/gamehub/internal/pkg/roomcode"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Sender is one live relay connection as the registry sees it. Send must not
// block; a failed send means the connection is dead or hopelessly behind and
// gets evicted.
type Sender interface {
	Send(data []byte) error
}

// Registry maps room codes to their live relay connections and fans events
// out to them. It is process-local; with Redis configured it also relays
// events to the same rooms on other instances, behind the same contract, so
// it can later be swapped for a fully distributed pub/sub without touching
// callers.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[Sender]bool

	// Redis pub/sub for multi-instance fan-out (nil = single instance)
	redis      *redis.Client
	instanceID string

	logger *zap.Logger
}

// NewRegistry creates a new connection registry. redisClient may be nil.
func NewRegistry(redisClient *redis.Client, logger *zap.Logger) *Registry {
	return &Registry{
		rooms:      make(map[string]map[Sender]bool),
		redis:      redisClient,
		instanceID: uuid.New().String(),
		logger:     logger,
	}
}

// Register adds a connection under the canonicalized room code. Registering
// the same connection twice is a no-op.
func (r *Registry) Register(code string, conn Sender) {
	key := roomcode.Canonicalize(code)

	r.mu.Lock()
	if r.rooms[key] == nil {
		r.rooms[key] = make(map[Sender]bool)
	}
	r.rooms[key][conn] = true
	total := len(r.rooms[key])
	r.mu.Unlock()

	r.logger.Debug("Connection registered",
		zap.String("code", key),
		zap.Int("total", total),
	)
}

// Unregister removes a connection. The room's entry is dropped entirely when
// its last connection goes, so abandoned rooms do not leak memory.
func (r *Registry) Unregister(code string, conn Sender) {
	key := roomcode.Canonicalize(code)

	r.mu.Lock()
	if conns, ok := r.rooms[key]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(r.rooms, key)
		}
	}
	r.mu.Unlock()

	r.logger.Debug("Connection unregistered", zap.String("code", key))
}

// Broadcast delivers event to every connection registered under code.
// Connections whose send fails are evicted without aborting delivery to the
// rest.
func (r *Registry) Broadcast(code string, event *Event) {
	r.deliver(code, event, nil)
	r.publish(code, event)
}

// BroadcastExcept is Broadcast minus one connection, used so a sender does
// not receive its own message back.
func (r *Registry) BroadcastExcept(code string, event *Event, exclude Sender) {
	r.deliver(code, event, exclude)
	r.publish(code, event)
}

func (r *Registry) deliver(code string, event *Event, exclude Sender) {
	key := roomcode.Canonicalize(code)

	data, err := event.Encode()
	if err != nil {
		r.logger.Error("Failed to encode event", zap.Error(err))
		return
	}

	// Snapshot under the read lock; sends and evictions happen outside it
	// so a slow connection cannot stall registration.
	r.mu.RLock()
	conns := make([]Sender, 0, len(r.rooms[key]))
	for conn := range r.rooms[key] {
		if conn == exclude {
			continue
		}
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(data); err != nil {
			r.logger.Warn("Send failed, evicting connection",
				zap.String("code", key),
				zap.Error(err),
			)
			r.Unregister(key, conn)
		}
	}
}

// Count returns the number of live connections for a room code
func (r *Registry) Count(code string) int {
	key := roomcode.Canonicalize(code)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[key])
}

// ActiveCodes returns the room codes that currently have live connections
func (r *Registry) ActiveCodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.rooms))
	for code := range r.rooms {
		codes = append(codes, code)
	}
	return codes
}

// Stats returns registry statistics for diagnostics
func (r *Registry) Stats() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, conns := range r.rooms {
		total += len(conns)
	}

	return map[string]int{
		"active_rooms":      len(r.rooms),
		"total_connections": total,
	}
}

// envelope carries an event across instances with its origin, so an
// instance can skip events it published itself.
type envelope struct {
	Instance string `json:"instance"`
	Event    *Event `json:"event"`
}

const roomChannelPrefix = "room:"

func (r *Registry) publish(code string, event *Event) {
	if r.redis == nil {
		return
	}

	data, err := json.Marshal(&envelope{Instance: r.instanceID, Event: event})
	if err != nil {
		return
	}

	key := roomcode.Canonicalize(code)
	if err := r.redis.Publish(context.Background(), roomChannelPrefix+key, data).Err(); err != nil {
		r.logger.Warn("Failed to publish event to Redis", zap.String("code", key), zap.Error(err))
	}
}

// Run subscribes to room events from other instances and delivers them to
// local connections. It blocks until ctx is cancelled; call it in its own
// goroutine. A no-op without Redis.
func (r *Registry) Run(ctx context.Context) {
	if r.redis == nil {
		return
	}

	pubsub := r.redis.PSubscribe(ctx, roomChannelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil || env.Event == nil {
				continue
			}
			if env.Instance == r.instanceID {
				continue
			}

			code := strings.TrimPrefix(msg.Channel, roomChannelPrefix)
			r.deliver(code, env.Event, nil)
		}
	}
}
