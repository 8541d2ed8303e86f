package webhooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-messaging/core"
	"github.com/google/uuid"
)

type DeliveryIDExtractor func(req core.InboundRequest) (string, error)

func QueryDeliveryIDExtractor(keys ...string) DeliveryIDExtractor {
	names := append([]string(nil), keys...)
	return func(req core.InboundRequest) (string, error) {
		for _, key := range names {
			if value := strings.TrimSpace(req.Query[key]); value != "" {
				return value, nil
			}
		}
		return "", fmt.Errorf("webhooks: delivery id query parameter is missing")
	}
}

// JSONFieldDeliveryIDExtractor reads the value at path from a JSON body.
// Numeric segments index into arrays.
func JSONFieldDeliveryIDExtractor(path ...string) DeliveryIDExtractor {
	segments := append([]string(nil), path...)
	return func(req core.InboundRequest) (string, error) {
		if len(bytes.TrimSpace(req.Body)) == 0 {
			return "", fmt.Errorf("webhooks: delivery id body is empty")
		}
		decoder := json.NewDecoder(bytes.NewReader(req.Body))
		decoder.UseNumber()
		var current any
		if err := decoder.Decode(&current); err != nil {
			return "", fmt.Errorf("webhooks: decode delivery id body: %w", err)
		}
		for _, segment := range segments {
			switch node := current.(type) {
			case map[string]any:
				current = node[segment]
			case []any:
				index, err := strconv.Atoi(segment)
				if err != nil || index < 0 || index >= len(node) {
					return "", fmt.Errorf("webhooks: delivery id path %q not found", strings.Join(segments, "."))
				}
				current = node[index]
			default:
				return "", fmt.Errorf("webhooks: delivery id path %q not found", strings.Join(segments, "."))
			}
		}
		switch value := current.(type) {
		case string:
			if strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value), nil
			}
		case json.Number:
			return value.String(), nil
		}
		return "", fmt.Errorf("webhooks: delivery id path %q not found", strings.Join(segments, "."))
	}
}

// RandomDeliveryIDExtractor always succeeds with a fresh uuid. It closes
// extractor chains for providers without a stable delivery id.
func RandomDeliveryIDExtractor(core.InboundRequest) (string, error) {
	return uuid.NewString(), nil
}

func ChainDeliveryIDExtractors(extractors ...DeliveryIDExtractor) DeliveryIDExtractor {
	list := append([]DeliveryIDExtractor(nil), extractors...)
	return func(req core.InboundRequest) (string, error) {
		var lastErr error
		for _, extractor := range list {
			if extractor == nil {
				continue
			}
			deliveryID, err := extractor(req)
			if err == nil && strings.TrimSpace(deliveryID) != "" {
				return strings.TrimSpace(deliveryID), nil
			}
			if err != nil {
				lastErr = err
			}
		}
		if lastErr != nil {
			return "", lastErr
		}
		return "", fmt.Errorf("webhooks: delivery id is required")
	}
}
