package hookrpc

import (
	"bytes"
	"context"
	"log"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/hooks"
)

// #region helpers

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func personaConfig() []experiment.RawExperiment {
	return []experiment.RawExperiment{{
		ID: "persona",
		Variants: []experiment.RawVariant{
			{ID: "control"},
			{ID: "variant-a", PrependContext: "You are Alex."},
		},
	}}
}

// startServer serves raw through a bus over bufconn and returns a connected client.
func startServer(t *testing.T, raw []experiment.RawExperiment) (*Client, *syncBuffer, bool) {
	t.Helper()
	out := &syncBuffer{}
	logger := log.New(out, "", 0)

	bus := hooks.NewBus()
	hooks.NewPlugin(raw, logger, nil).Register(bus)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(RecoveryInterceptor(logger)))
	registered := Register(srv, bus)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewClientWithConn(conn), out, registered
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// #endregion

// #region rpc-tests

func TestRPC_PromptBuildAndSessionEnd(t *testing.T) {
	client, out, registered := startServer(t, personaConfig())
	if !registered {
		t.Fatal("expected service to register")
	}
	ctx := testCtx(t)

	ov, err := client.PromptBuild(ctx, hooks.PromptBuild{SessionKey: "s1"})
	if err != nil {
		t.Fatalf("PromptBuild: %v", err)
	}
	if ov != nil {
		t.Fatalf("control session got overlay %+v", ov)
	}

	ov, err = client.PromptBuild(ctx, hooks.PromptBuild{SessionKey: "s2", AgentID: "main"})
	if err != nil {
		t.Fatalf("PromptBuild: %v", err)
	}
	if ov == nil || ov.PrependContext != "You are Alex." || ov.SystemPrompt != "" {
		t.Fatalf("overlay = %+v", ov)
	}

	if err := client.SessionEnd(ctx, hooks.SessionEnd{SessionKey: "s2"}); err != nil {
		t.Fatalf("SessionEnd: %v", err)
	}
	if !strings.Contains(out.String(), "assignments session=s2 [persona=variant-a]") {
		t.Fatalf("missing session summary in %q", out.String())
	}

	if err := client.Startup(ctx); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if !strings.Contains(out.String(), "experiment persona (no description): control(w=1), variant-a(w=1)") {
		t.Fatalf("missing startup summary in %q", out.String())
	}
}

func TestRPC_IdleIsUnimplemented(t *testing.T) {
	client, out, registered := startServer(t, nil)
	if registered {
		t.Fatal("idle plugin should not register the service")
	}
	if !strings.Contains(out.String(), "idle") {
		t.Fatalf("expected idle notice, got %q", out.String())
	}
	_, err := client.PromptBuild(testCtx(t), hooks.PromptBuild{SessionKey: "s1"})
	if status.Code(err) != codes.Unimplemented {
		t.Fatalf("expected Unimplemented, got %v", err)
	}
}

func TestRPC_RejectsNonStringField(t *testing.T) {
	client, _, _ := startServer(t, personaConfig())
	in, err := structpb.NewStruct(map[string]any{"sessionKey": 42})
	if err != nil {
		t.Fatal(err)
	}
	err = client.cc.Invoke(testCtx(t), methodPromptBuild, in, new(structpb.Struct))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

// #endregion

// #region codec-tests

func TestEncodeOverlay(t *testing.T) {
	if got := decodeOverlay(encodeOverlay(nil)); got != nil {
		t.Fatalf("nil overlay decoded as %+v", got)
	}
	s := encodeOverlay(&experiment.Overlay{SystemPrompt: "sys"})
	if _, ok := s.GetFields()[fieldPrependContext]; ok {
		t.Fatal("absent prependContext should be omitted")
	}
	got := decodeOverlay(s)
	if got == nil || got.SystemPrompt != "sys" || got.PrependContext != "" {
		t.Fatalf("decoded %+v", got)
	}
}

func TestStringField_Null(t *testing.T) {
	s, _ := structpb.NewStruct(map[string]any{"sessionKey": nil})
	v, err := stringField(s, fieldSessionKey)
	if err != nil || v != "" {
		t.Fatalf("stringField(null) = (%q, %v)", v, err)
	}
}

// #endregion
