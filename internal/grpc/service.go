package grpc

import (
	"context"

	"google.golang.org/grpc"

	"taskboard/internal/types"
)

const (
	ServiceName  = "taskboard.Schedule"
	EnrichMethod = "/" + ServiceName + "/Enrich"
)

type EnrichRequest struct {
	Tasks []types.Task `json:"tasks"`
}

type EnrichResponse struct {
	Tasks        []types.EnrichedTask `json:"tasks"`
	CalculatedAt string               `json:"calculatedAt"`
}

// ScheduleService рассчитывает метрики планирования для переданных задач
type ScheduleService interface {
	Enrich(ctx context.Context, req *EnrichRequest) (*EnrichResponse, error)
}

func enrichHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(EnrichRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScheduleService).Enrich(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EnrichMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ScheduleService).Enrich(ctx, req.(*EnrichRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ScheduleServiceDesc описывает сервис без сгенерированного protobuf-кода
var ScheduleServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScheduleService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Enrich", Handler: enrichHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskboard/schedule",
}
