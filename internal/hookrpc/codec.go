package hookrpc

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
)

// Field names on the wire, matching the host's camelCase context keys.
const (
	fieldSessionKey     = "sessionKey"
	fieldSessionID      = "sessionId"
	fieldAgentID        = "agentId"
	fieldApplied        = "applied"
	fieldSystemPrompt   = "systemPrompt"
	fieldPrependContext = "prependContext"
)

// stringField reads an optional string. Absent and null are "", any other
// non-string kind is rejected.
func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue, nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", name)
	}
}

// encodeOverlay writes applied=false for "no modification" and only the
// fields the overlay actually carries otherwise.
func encodeOverlay(ov *experiment.Overlay) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldApplied: structpb.NewBoolValue(ov != nil),
	}
	if ov != nil {
		if ov.SystemPrompt != "" {
			fields[fieldSystemPrompt] = structpb.NewStringValue(ov.SystemPrompt)
		}
		if ov.PrependContext != "" {
			fields[fieldPrependContext] = structpb.NewStringValue(ov.PrependContext)
		}
	}
	return &structpb.Struct{Fields: fields}
}

func decodeOverlay(s *structpb.Struct) *experiment.Overlay {
	if !s.GetFields()[fieldApplied].GetBoolValue() {
		return nil
	}
	return &experiment.Overlay{
		SystemPrompt:   s.GetFields()[fieldSystemPrompt].GetStringValue(),
		PrependContext: s.GetFields()[fieldPrependContext].GetStringValue(),
	}
}

func encodeContext(sessionKey, sessionID, agentID string) *structpb.Struct {
	fields := make(map[string]*structpb.Value, 3)
	if sessionKey != "" {
		fields[fieldSessionKey] = structpb.NewStringValue(sessionKey)
	}
	if sessionID != "" {
		fields[fieldSessionID] = structpb.NewStringValue(sessionID)
	}
	if agentID != "" {
		fields[fieldAgentID] = structpb.NewStringValue(agentID)
	}
	return &structpb.Struct{Fields: fields}
}
