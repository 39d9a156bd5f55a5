package grpc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"discord-analyzer/metrics"
	"discord-analyzer/models"
	"discord-analyzer/query"
)

const ServiceName = "analyzer.v1.ReportService"

// Analyses gives the server the current analysis of a guild.
type Analyses interface {
	Analysis(guildID string) (*models.Analysis, bool)
}

// Server 实现 ReportService，所有方法都只读当前的分析结果。
type Server struct {
	analyses     Analyses
	defaultGuild string
}

// NewServer 创建报告服务。请求未指定 guild_id 时使用 defaultGuild。
func NewServer(analyses Analyses, defaultGuild string) *Server {
	return &Server{analyses: analyses, defaultGuild: defaultGuild}
}

// Register 把服务注册到 gs。
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&serviceDesc, s)
}

// Serve 在 addr 上监听直到 ctx 结束。
func Serve(ctx context.Context, addr string, s *Server) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	gs := grpc.NewServer()
	s.Register(gs)

	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()
	log.Printf("[gRPC] 报告服务监听于 %s", lis.Addr())
	if err := gs.Serve(lis); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server) engine(guildID string) (*query.Engine, error) {
	if guildID == "" {
		guildID = s.defaultGuild
	}
	a, ok := s.analyses.Analysis(guildID)
	if !ok {
		return nil, status.Errorf(codes.FailedPrecondition, "no analysis for guild %q", guildID)
	}
	return query.New(a), nil
}

// toStatus maps query errors to gRPC codes.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case status.Code(err) != codes.Unknown:
		return err
	case errors.Is(err, query.ErrUnknownMetric), errors.Is(err, query.ErrNotChartable):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, query.ErrUnknownSubject):
		return status.Error(codes.NotFound, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func (s *Server) Pivot(_ context.Context, req *PivotRequest) (*PivotReply, error) {
	e, err := s.engine(req.GuildID)
	if err != nil {
		return nil, err
	}
	subject, err := query.ParseSubject(req.Subject)
	if err != nil {
		return nil, toStatus(err)
	}
	ms, err := query.ResolveMetrics(subject, req.Metrics, req.Preset)
	if err != nil {
		return nil, toStatus(err)
	}
	t, err := e.Pivot(subject, req.Roles, ms)
	if err != nil {
		return nil, toStatus(err)
	}
	return pivotReply(t), nil
}

func (s *Server) Ranks(_ context.Context, req *RanksRequest) (*RanksReply, error) {
	e, err := s.engine(req.GuildID)
	if err != nil {
		return nil, err
	}
	scope, err := query.ParseScope(req.Scope)
	if err != nil {
		return nil, toStatus(err)
	}
	ranks, err := query.ResolveRanks(scope, req.Ranks, req.Preset)
	if err != nil {
		return nil, toStatus(err)
	}
	t, err := e.Ranks(scope, req.Name, ranks)
	if err != nil {
		return nil, toStatus(err)
	}
	return ranksReply(t), nil
}

func (s *Server) Series(_ context.Context, req *SeriesRequest) (*SeriesReply, error) {
	e, err := s.engine(req.GuildID)
	if err != nil {
		return nil, err
	}
	subject, err := query.ParseSubject(req.Subject)
	if err != nil {
		return nil, toStatus(err)
	}
	ms, err := query.ResolveMetrics(subject, []string{req.Metric}, "")
	if err != nil {
		return nil, toStatus(err)
	}
	points, err := e.Series(subject, req.Roles, ms[0])
	if err != nil {
		return nil, toStatus(err)
	}
	if req.Sort {
		points = query.SortDescending(points)
	}
	return seriesReply(points), nil
}

func (s *Server) EmojiTable(_ context.Context, req *EmojiRequest) (*EmojiReply, error) {
	e, err := s.engine(req.GuildID)
	if err != nil {
		return nil, err
	}
	rows := req.Rows
	if rows <= 0 {
		rows = query.DefaultEmojiRows
	}
	return emojiReply(e.EmojiTable(rows)), nil
}

// unary adapts a typed method to the Struct-in, Struct-out wire shape.
func unary[Req, Reply any](method string, call func(*Server, context.Context, *Req) (*Reply, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := &structpb.Struct{}
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, raw any) (any, error) {
				metrics.IncReport(method)
				var req Req
				if err := fromStruct(raw.(*structpb.Struct), &req); err != nil {
					return nil, status.Error(codes.InvalidArgument, err.Error())
				}
				reply, err := call(srv.(*Server), ctx, &req)
				if err != nil {
					return nil, err
				}
				return toStruct(reply)
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary("Pivot", (*Server).Pivot),
		unary("Ranks", (*Server).Ranks),
		unary("Series", (*Server).Series),
		unary("EmojiTable", (*Server).EmojiTable),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "analyzer/v1/report.proto",
}
