package grpc

import (
	"context"
	"log"
	"time"

	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client 封装报告服务的 gRPC 客户端连接
type Client struct {
	conn          *grpc.ClientConn
	serverAddress string
	timeout       time.Duration
}

// NewClient 创建新的 gRPC 客户端
func NewClient(serverAddress string, timeout time.Duration) (*Client, error) {
	conn, err := grpc.NewClient(serverAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, serverAddress: serverAddress, timeout: timeout}, nil
}

// Close 关闭 gRPC 连接
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// GetServerAddress 获取服务器地址
func (c *Client) GetServerAddress() string {
	return c.serverAddress
}

// invoke 发送一次 Struct 请求并把响应解码到 reply。
func (c *Client) invoke(ctx context.Context, method string, req, reply any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		log.Printf("Error calling %s on %s: %v", method, c.serverAddress, err)
		return err
	}
	return fromStruct(out, reply)
}

// Pivot 查询用户或频道透视表
func (c *Client) Pivot(ctx context.Context, req *PivotRequest) (*PivotReply, error) {
	reply := &PivotReply{}
	if err := c.invoke(ctx, "Pivot", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Ranks 查询排行表
func (c *Client) Ranks(ctx context.Context, req *RanksRequest) (*RanksReply, error) {
	reply := &RanksReply{}
	if err := c.invoke(ctx, "Ranks", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Series 查询单个指标的图表序列
func (c *Client) Series(ctx context.Context, req *SeriesRequest) (*SeriesReply, error) {
	reply := &SeriesReply{}
	if err := c.invoke(ctx, "Series", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// EmojiTable 查询表情排行
func (c *Client) EmojiTable(ctx context.Context, req *EmojiRequest) (*EmojiReply, error) {
	reply := &EmojiReply{}
	if err := c.invoke(ctx, "EmojiTable", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}
