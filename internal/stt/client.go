// Package stt is the gRPC speech-to-text client used for voice answers.
package stt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/rbright/mockview/internal/session"
	"github.com/rbright/mockview/internal/transcript"
)

const (
	defaultDialTimeout  = 3 * time.Second
	defaultLanguageCode = "en-US"
	defaultSampleRate   = 16000
)

// ErrEmptyAudio reports a sample without PCM data.
var ErrEmptyAudio = errors.New("audio sample is empty")

// Config controls dialing and transcript formatting.
type Config struct {
	Endpoint            string
	LanguageCode        string
	DialTimeout         time.Duration
	CapitalizeSentences bool
	DialOptions         []grpc.DialOption
}

func (cfg Config) withDefaults() Config {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if strings.TrimSpace(cfg.LanguageCode) == "" {
		cfg.LanguageCode = defaultLanguageCode
	}
	return cfg
}

// Client is a connected transcriber client. It implements session.Recognizer.
type Client struct {
	conn *grpc.ClientConn
	cfg  Config
}

// Dial connects to the transcriber and waits for the channel to become ready.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if cfg.Endpoint == "" {
		return nil, errors.New("stt endpoint is empty")
	}

	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, cfg.DialOptions...)
	conn, err := grpc.NewClient(cfg.Endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial stt grpc %q: %w", cfg.Endpoint, err)
	}

	readyCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	conn.Connect()
	if err := waitForReady(readyCtx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("wait for stt grpc readiness: %w", err)
	}

	return &Client{conn: conn, cfg: cfg}, nil
}

// Recognize sends one PCM sample and returns the normalized transcript.
func (c *Client) Recognize(ctx context.Context, sample session.Sample) (string, error) {
	if len(sample.PCM) == 0 {
		return "", ErrEmptyAudio
	}
	rate := sample.SampleRate
	if rate <= 0 {
		rate = defaultSampleRate
	}

	ctx = metadata.AppendToOutgoingContext(ctx,
		languageCodeKey, c.cfg.LanguageCode,
		sampleRateKey, strconv.Itoa(rate),
	)

	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(ctx, RecognizeMethod, wrapperspb.Bytes(sample.PCM), out); err != nil {
		return "", fmt.Errorf("recognize speech: %w", err)
	}

	return transcript.Assemble([]string{out.GetValue()}, transcript.Options{
		CapitalizeSentences: c.cfg.CapitalizeSentences,
	}), nil
}

// Health checks the standard gRPC health service for the transcriber.
func (c *Client) Health(ctx context.Context) error {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return fmt.Errorf("stt health check: %w", err)
	}
	if status := resp.GetStatus(); status != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("stt health status %s", status)
	}
	return nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
