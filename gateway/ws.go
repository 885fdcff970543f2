package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"market-quoter-go/eventloop"
)

const readDeadline = 30 * time.Second

// WSClient 订阅 depth 流并把解析结果投递回事件循环。
type WSClient struct {
	log      *zap.Logger
	Endpoint string
	Dialer   *websocket.Dialer

	depthStreams []string
}

func NewWSClient(log *zap.Logger, endpoint string) *WSClient {
	return &WSClient{
		log:      log,
		Endpoint: endpoint,
		Dialer:   websocket.DefaultDialer,
	}
}

// SubscribeDepth 订阅某交易对的深度流。
func (c *WSClient) SubscribeDepth(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol required")
	}
	c.depthStreams = append(c.depthStreams, strings.ToLower(symbol)+"@depth20@100ms")
	return nil
}

// Run 连接并持续读取，直到出错或 ctx 结束。行情经 loop.Post 写入
// broker，连接状态变化同样在循环线程上生效。
func (c *WSClient) Run(ctx context.Context, loop *eventloop.Loop, details *Details, broker *MarketDataBroker) error {
	if len(c.depthStreams) == 0 {
		return fmt.Errorf("no streams subscribed")
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("streams", strings.Join(c.depthStreams, "/"))
	u.RawQuery = q.Encode()

	conn, _, err := c.Dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	loop.Post(func() { details.SetStatus(Connected) })
	defer loop.Post(func() { details.SetStatus(Disconnected) })

	for {
		if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
			return err
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		_, mkt, err := ParseCombinedDepth(message, time.Now())
		if err != nil {
			c.log.Warn("unparseable ws message", zap.Error(err))
			continue
		}
		loop.Post(func() { broker.SetBook(mkt) })
	}
}
