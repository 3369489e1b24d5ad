package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/mq/nats"
)

// Type 审计事件类型
type Type string

const (
	TypeBalanceSet   Type = "balance.set"
	TypeBalanceAdded Type = "balance.added"
	TypeDailyClaimed Type = "daily.claimed"
	TypeSlotSpun     Type = "slot.spun"
	TypePurchased    Type = "shop.purchased"
	TypeItemChanged  Type = "shop.item_changed"
	TypeGachaDrawn   Type = "gacha.drawn"
	TypeRewardChange Type = "gacha.reward_changed"
)

// Event 账本变更审计事件，提交成功后发布
type Event struct {
	ID      string         `json:"id"`
	Type    Type           `json:"type"`
	UserID  uint64         `json:"user_id,string,omitempty"`
	ActorID uint64         `json:"actor_id,string,omitempty"`
	Amount  int64          `json:"amount,omitempty"`
	Balance int64          `json:"balance"`
	Data    map[string]any `json:"data,omitempty"`
	At      time.Time      `json:"at"`
}

// New 创建带 ID 与时间戳的事件
func New(t Type, userID uint64) *Event {
	return &Event{
		ID:     uuid.NewString(),
		Type:   t,
		UserID: userID,
		At:     time.Now().UTC(),
	}
}

// Publisher 审计事件发布
type Publisher interface {
	Publish(ctx context.Context, ev *Event) error
}

// natsPublisher 发布到 <prefix>.audit.<type>
type natsPublisher struct {
	client *nats.Client
}

// NewNATSPublisher 创建 NATS 事件发布器
func NewNATSPublisher(client *nats.Client) Publisher {
	return &natsPublisher{client: client}
}

func (p *natsPublisher) Publish(ctx context.Context, ev *Event) error {
	return p.client.PublishJSON(ctx, "audit."+string(ev.Type), ev, map[string]string{"event_type": string(ev.Type)})
}

// logPublisher 未配置消息总线时写入日志
type logPublisher struct {
	logger logger.Logger
}

// NewLogPublisher 以 debug 日志代替发布
func NewLogPublisher(l logger.Logger) Publisher {
	return &logPublisher{logger: l.Named("event")}
}

func (p *logPublisher) Publish(ctx context.Context, ev *Event) error {
	p.logger.DebugContext(ctx, "audit event", "type", ev.Type, "user_id", ev.UserID, "amount", ev.Amount, "balance", ev.Balance)
	return nil
}

// Recorder 保存事件，测试使用
type Recorder struct {
	mu     sync.Mutex
	events []*Event
}

func (r *Recorder) Publish(_ context.Context, ev *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events 已记录事件的副本
func (r *Recorder) Events() []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Event(nil), r.events...)
}

// Types 已记录事件的类型序列
func (r *Recorder) Types() []Type {
	events := r.Events()
	out := make([]Type, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}
