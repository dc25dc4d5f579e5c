package grpc

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"taskboard/internal/types"
)

const DefaultCallTimeout = 10 * time.Second

// ScheduleClient - клиент сервиса taskboard.Schedule
type ScheduleClient struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// NewScheduleClient создает клиент; дополнительные опции нужны, например, для bufconn в тестах
func NewScheduleClient(serverAddr string, opts ...grpc.DialOption) (*ScheduleClient, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.CallContentSubtype(CodecName),
			grpc.MaxCallRecvMsgSize(maxMsgSize),
			grpc.MaxCallSendMsgSize(maxMsgSize),
		),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(serverAddr, dialOpts...)
	if err != nil {
		return nil, err
	}

	return &ScheduleClient{conn: conn, timeout: DefaultCallTimeout}, nil
}

// SetTimeout задает таймаут одного вызова
func (c *ScheduleClient) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.timeout = timeout
	}
}

func (c *ScheduleClient) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// Enrich отправляет задачи на сервер и возвращает их с рассчитанными метриками
func (c *ScheduleClient) Enrich(ctx context.Context, tasks []types.Task) (*EnrichResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if tasks == nil {
		tasks = []types.Task{}
	}

	out := new(EnrichResponse)
	if err := c.conn.Invoke(ctx, EnrichMethod, &EnrichRequest{Tasks: tasks}, out); err != nil {
		log.Printf("Ошибка вызова Enrich: %v", err)
		return nil, err
	}

	if out.Tasks == nil {
		out.Tasks = []types.EnrichedTask{}
	}
	return out, nil
}
