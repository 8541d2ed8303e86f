package devkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-messaging/core"
	"github.com/goliatone/go-messaging/webhooks"
)

func ValidateTransportAdapterConformance(
	ctx context.Context,
	adapter core.TransportAdapter,
	request core.TransportRequest,
) error {
	if adapter == nil {
		return fmt.Errorf("devkit: transport adapter is required")
	}
	if strings.TrimSpace(adapter.Kind()) == "" {
		return fmt.Errorf("devkit: transport adapter kind is required")
	}
	_, err := adapter.Do(ctx, request)
	return err
}

// ValidateWebhookTemplateConformance checks that template accepts signed,
// rejects tampered and resolves a delivery id for signed.
func ValidateWebhookTemplateConformance(
	ctx context.Context,
	template webhooks.ProviderWebhookTemplate,
	signed core.InboundRequest,
	tampered core.InboundRequest,
) error {
	if strings.TrimSpace(template.ProviderID) == "" {
		return fmt.Errorf("devkit: webhook template provider id is required")
	}
	if template.Verifier == nil {
		return fmt.Errorf("devkit: webhook template %q has no verifier", template.ProviderID)
	}
	if err := template.Verifier.Verify(ctx, signed); err != nil {
		return fmt.Errorf("devkit: webhook template %q rejected a signed request: %w", template.ProviderID, err)
	}
	if err := template.Verifier.Verify(ctx, tampered); err == nil {
		return fmt.Errorf("devkit: webhook template %q accepted a tampered request", template.ProviderID)
	}
	if template.Extractor == nil {
		return nil
	}
	deliveryID, err := template.Extractor(signed)
	if err != nil {
		return fmt.Errorf("devkit: webhook template %q delivery id: %w", template.ProviderID, err)
	}
	if strings.TrimSpace(deliveryID) == "" {
		return fmt.Errorf("devkit: webhook template %q returned an empty delivery id", template.ProviderID)
	}
	return nil
}
