package grant

import (
	"context"
	"fmt"

	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/mq/nats"
)

// reply 网关应答
type reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NATSAuthority 通过请求-应答把授予交给聊天网关执行
type NATSAuthority struct {
	client  *nats.Client
	subject string
	logger  logger.Logger
}

// NewNATSAuthority 创建 NATS 授予通道
func NewNATSAuthority(client *nats.Client, subject string, l logger.Logger) *NATSAuthority {
	return &NATSAuthority{
		client:  client,
		subject: subject,
		logger:  l.Named("grant.nats"),
	}
}

func (a *NATSAuthority) Grant(ctx context.Context, req Request) error {
	var resp reply
	if err := a.client.RequestJSON(ctx, a.subject, req, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("gateway rejected grant of %s: %s", req.RoleRef, resp.Error)
	}
	a.logger.DebugContext(ctx, "role granted", "role_ref", req.RoleRef)
	return nil
}
