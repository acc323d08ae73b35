package stt

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully qualified transcriber service name.
	ServiceName = "mockview.stt.v1.Transcriber"
	// RecognizeMethod is the full gRPC method path for one-shot recognition.
	RecognizeMethod = "/" + ServiceName + "/Recognize"

	languageCodeKey = "x-language-code"
	sampleRateKey   = "x-sample-rate"
)

// TranscriberServer is the server API for the transcriber service.
type TranscriberServer interface {
	// Recognize turns 16-bit little-endian mono PCM into a transcript.
	Recognize(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
}

// RegisterTranscriberServer registers srv on s.
func RegisterTranscriberServer(s grpc.ServiceRegistrar, srv TranscriberServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func recognizeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TranscriberServer).Recognize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RecognizeMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TranscriberServer).Recognize(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for the transcriber service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TranscriberServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Recognize",
			Handler:    recognizeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mockview/stt/v1/transcriber.proto",
}
