package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/watchlist-backend/internal/models"
)

// NotificationChannelPrefix prefixes the per-recipient Redis channel.
const NotificationChannelPrefix = "notifications:"

// subscriberBuffer is how many undelivered events a slow live client may
// queue before new ones are dropped for it.
const subscriberBuffer = 16

// Notifier fans new notifications out to the recipient's live connections.
type Notifier interface {
	Publish(ctx context.Context, n *models.NotificationView) error
	// Subscribe streams JSON-encoded notifications addressed to userID until
	// the returned cancel func is called or ctx ends.
	Subscribe(ctx context.Context, userID primitive.ObjectID) (<-chan []byte, func(), error)
}

// --- in-process hub ---

type localSub struct {
	ch chan []byte
}

// LocalNotifier delivers within this process only. Used when Redis is not
// configured and in tests.
type LocalNotifier struct {
	mu   sync.RWMutex
	subs map[primitive.ObjectID]map[*localSub]struct{}
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{subs: make(map[primitive.ObjectID]map[*localSub]struct{})}
}

func (h *LocalNotifier) Publish(_ context.Context, n *models.NotificationView) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	h.deliver(n.To, data)
	return nil
}

func (h *LocalNotifier) deliver(to primitive.ObjectID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[to] {
		select {
		case s.ch <- data:
		default:
		}
	}
}

func (h *LocalNotifier) Subscribe(ctx context.Context, userID primitive.ObjectID) (<-chan []byte, func(), error) {
	s := &localSub{ch: make(chan []byte, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*localSub]struct{})
	}
	h.subs[userID][s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], s)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(s.ch)
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return s.ch, cancel, nil
}

// Subscribers reports the live subscriber count for userID.
func (h *LocalNotifier) Subscribers(userID primitive.ObjectID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// --- Redis pub/sub ---

// RedisNotifier publishes to notifications:<userId> so every API instance
// holding a socket for that user can deliver it.
type RedisNotifier struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisNotifier(client *redis.Client, log *slog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, log: log}
}

func (r *RedisNotifier) Publish(ctx context.Context, n *models.NotificationView) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, NotificationChannelPrefix+n.To.Hex(), data).Err()
}

func (r *RedisNotifier) Subscribe(ctx context.Context, userID primitive.ObjectID) (<-chan []byte, func(), error) {
	ctx, stop := context.WithCancel(ctx)
	pubsub := r.client.Subscribe(ctx, NotificationChannelPrefix+userID.Hex())

	// Wait for the subscription confirmation so publishes that race the
	// websocket upgrade are not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		stop()
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan []byte, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					r.log.Warn("dropping live notification for slow client", "user_id", userID.Hex())
				}
			}
		}
	}()
	return out, stop, nil
}
