// Package services implements the feedback analysis pipeline: per-session
// analysis, cross-conversation signal aggregation, survey-level synthesis and
// narrative report generation. Each service is stateless and triggered on
// demand; none of them chains into another.
package services

import (
	"context"
	"fmt"

	"github.com/openpulse/openpulse-backend/internal/sse"
)

// AIClient is the slice of the oracle client the pipeline needs. The concrete
// implementation lives in internal/clients/openai; tests substitute stubs.
type AIClient interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
}

// EventPublisher receives pipeline run lifecycle events. The SSE hub and the
// redis event bus both satisfy it; services tolerate a nil publisher.
type EventPublisher interface {
	Publish(ctx context.Context, msg sse.Message) error
}

func publishEvent(ctx context.Context, pub EventPublisher, msg sse.Message) {
	if pub == nil {
		return
	}
	_ = pub.Publish(ctx, msg)
}

func publishRunFailure(ctx context.Context, pub EventPublisher, channel, stage string, err error) {
	publishEvent(ctx, pub, sse.Message{
		Channel: channel,
		Event:   sse.EventPipelineRunFailed,
		Data:    map[string]any{"stage": stage, "error": err.Error()},
	})
}

// ---- oracle payload coercion ----
//
// GenerateJSON hands back map[string]any; these helpers pull typed values out
// and report structural problems so callers can reject the payload as an
// upstream failure.

func payloadString(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("missing key %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("key %q is not a string", key)
	}
	return s, nil
}

func payloadInt(obj map[string]any, key string) (int, error) {
	v, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("missing key %q", key)
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	}
	return 0, fmt.Errorf("key %q is not a number", key)
}

func payloadStringSlice(obj map[string]any, key string) ([]string, error) {
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("missing key %q", key)
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("key %q is not an array", key)
	}
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("key %q[%d] is not a string", key, i)
		}
		out = append(out, s)
	}
	return out, nil
}

func payloadObjectSlice(obj map[string]any, key string) ([]map[string]any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("missing key %q", key)
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("key %q is not an array", key)
	}
	out := make([]map[string]any, 0, len(arr))
	for i, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("key %q[%d] is not an object", key, i)
		}
		out = append(out, m)
	}
	return out, nil
}

func payloadIntSlice(obj map[string]any, key string) ([]int, error) {
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("missing key %q", key)
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("key %q is not an array", key)
	}
	out := make([]int, 0, len(arr))
	for i, item := range arr {
		n, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("key %q[%d] is not a number", key, i)
		}
		out = append(out, int(n))
	}
	return out, nil
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
