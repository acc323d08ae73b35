package stt

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/rbright/mockview/internal/session"
)

func TestRecognizeEndToEnd(t *testing.T) {
	server := &testTranscriber{transcript: "  i think   we should shard. then cache "}
	endpoint, _ := startTestTranscriber(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := Dial(ctx, Config{Endpoint: endpoint, LanguageCode: "en-GB", DialTimeout: time.Second, CapitalizeSentences: true})
	require.NoError(t, err)
	defer func() { require.NoError(t, client.Close()) }()

	text, err := client.Recognize(ctx, session.Sample{PCM: []byte{1, 2, 3, 4}, SampleRate: 16000})
	require.NoError(t, err)
	require.Equal(t, "I think we should shard. Then cache", text)

	got := server.snapshot()
	require.Equal(t, []byte{1, 2, 3, 4}, got.audio)
	require.Equal(t, "en-GB", got.language)
	require.Equal(t, "16000", got.sampleRate)
}

func TestRecognizeDefaultsLanguageAndRate(t *testing.T) {
	server := &testTranscriber{transcript: "ok"}
	endpoint, _ := startTestTranscriber(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := Dial(ctx, Config{Endpoint: endpoint})
	require.NoError(t, err)
	defer client.Close()

	text, err := client.Recognize(ctx, session.Sample{PCM: []byte{0, 0}})
	require.NoError(t, err)
	require.Equal(t, "ok", text)

	got := server.snapshot()
	require.Equal(t, "en-US", got.language)
	require.Equal(t, "16000", got.sampleRate)
}

func TestRecognizeRejectsEmptyAudio(t *testing.T) {
	server := &testTranscriber{}
	endpoint, _ := startTestTranscriber(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := Dial(ctx, Config{Endpoint: endpoint, DialTimeout: time.Second})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Recognize(ctx, session.Sample{})
	require.ErrorIs(t, err, ErrEmptyAudio)
	require.Zero(t, server.snapshot().calls)
}

func TestRecognizeReturnsServerError(t *testing.T) {
	server := &testTranscriber{err: status.Error(codes.Unavailable, "model loading")}
	endpoint, _ := startTestTranscriber(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := Dial(ctx, Config{Endpoint: endpoint, DialTimeout: time.Second})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Recognize(ctx, session.Sample{PCM: []byte{1}})
	require.Error(t, err)
	require.Equal(t, codes.Unavailable, status.Code(err))
	require.Contains(t, err.Error(), "model loading")
}

func TestClientImplementsRecognizer(t *testing.T) {
	var _ session.Recognizer = (*Client)(nil)
	var _ session.Recognizer = (*Lazy)(nil)
}

func TestHealth(t *testing.T) {
	server := &testTranscriber{}
	endpoint, healthServer := startTestTranscriber(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := Dial(ctx, Config{Endpoint: endpoint, DialTimeout: time.Second})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Health(ctx))

	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	err = client.Health(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "NOT_SERVING")
}

func TestDialEmptyEndpoint(t *testing.T) {
	_, err := Dial(context.Background(), Config{Endpoint: "   "})
	require.Error(t, err)
	require.Contains(t, err.Error(), "endpoint is empty")
}

func TestDialReadinessTimeout(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	endpoint := lis.Addr().String()
	require.NoError(t, lis.Close())

	_, err = Dial(context.Background(), Config{Endpoint: endpoint, DialTimeout: 100 * time.Millisecond})
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLazyDialsOnFirstUseAndRedialsAfterFailure(t *testing.T) {
	server := &testTranscriber{transcript: "hello"}
	endpoint, _ := startTestTranscriber(t, server)

	lazy := NewLazy(Config{Endpoint: endpoint, DialTimeout: time.Second})
	defer func() { require.NoError(t, lazy.Close()) }()
	require.Nil(t, lazy.client)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	text, err := lazy.Recognize(ctx, session.Sample{PCM: []byte{1}})
	require.NoError(t, err)
	require.Equal(t, "hello", text)
	first := lazy.client
	require.NotNil(t, first)

	server.setErr(status.Error(codes.Internal, "boom"))
	_, err = lazy.Recognize(ctx, session.Sample{PCM: []byte{1}})
	require.Error(t, err)
	require.Nil(t, lazy.client)

	server.setErr(nil)
	_, err = lazy.Recognize(ctx, session.Sample{PCM: []byte{1}})
	require.NoError(t, err)
	require.NotSame(t, first, lazy.client)

	require.NoError(t, lazy.Health(ctx))
}

func TestLazyDialFailure(t *testing.T) {
	lazy := NewLazy(Config{Endpoint: ""})
	_, err := lazy.Recognize(context.Background(), session.Sample{PCM: []byte{1}})
	require.Error(t, err)
	require.NoError(t, lazy.Close())
}

type received struct {
	calls      int
	audio      []byte
	language   string
	sampleRate string
}

type testTranscriber struct {
	mu         sync.Mutex
	transcript string
	err        error
	got        received
}

func (s *testTranscriber) Recognize(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.got.calls++
	s.got.audio = append([]byte(nil), in.GetValue()...)
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(languageCodeKey); len(v) > 0 {
			s.got.language = v[0]
		}
		if v := md.Get(sampleRateKey); len(v) > 0 {
			s.got.sampleRate = v[0]
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return wrapperspb.String(s.transcript), nil
}

func (s *testTranscriber) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *testTranscriber) snapshot() received {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.got
}

func startTestTranscriber(t *testing.T, srv TranscriberServer) (string, *health.Server) {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	grpcServer := grpc.NewServer()
	RegisterTranscriberServer(grpcServer, srv)
	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(func() {
		grpcServer.Stop()
		_ = lis.Close()
	})

	return lis.Addr().String(), healthServer
}
