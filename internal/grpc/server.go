package grpc

import (
	"context"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"

	"taskboard/internal/calculator"
	"taskboard/internal/parser"
)

const maxMsgSize = 16 * 1024 * 1024 // 16MB

// ScheduleServer реализует gRPC сервис расчета метрик
type ScheduleServer struct {
	observer calculator.Observer
	now      func() time.Time
}

func NewScheduleServer(observer calculator.Observer) *ScheduleServer {
	return &ScheduleServer{observer: observer, now: time.Now}
}

// Enrich рассчитывает приоритет, время ожидания и время оборота задач
func (s *ScheduleServer) Enrich(ctx context.Context, req *EnrichRequest) (*EnrichResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "пустой запрос")
	}
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	start := s.now()
	tasks := calculator.EnrichAt(req.Tasks, start)
	if s.observer != nil {
		s.observer.Enriched(len(tasks), time.Since(start).Seconds())
	}

	log.Printf("Enrich gRPC: рассчитаны метрики для %d задач", len(tasks))

	return &EnrichResponse{
		Tasks:        tasks,
		CalculatedAt: parser.FormatDueDate(start),
	}, nil
}

// NewServer создает gRPC сервер с настройками keepalive и размеров сообщений
func NewServer(svc ScheduleService) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(maxMsgSize),
		grpc.MaxSendMsgSize(maxMsgSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     time.Minute,
			MaxConnectionAge:      5 * time.Minute,
			MaxConnectionAgeGrace: 20 * time.Second,
			Time:                  20 * time.Second,
			Timeout:               10 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	s := grpc.NewServer(opts...)
	s.RegisterService(&ScheduleServiceDesc, svc)
	return s
}

// StartServer слушает address и обслуживает запросы до остановки сервера
func StartServer(address string, s *grpc.Server) error {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	log.Printf("gRPC сервер запущен на %s", address)
	return s.Serve(lis)
}
