package stripe

import (
	"strings"

	"github.com/smallbiznis/paylink/internal/payment/domain"
)

// metadataOrderNumber is the metadata key carrying the merchant order number
// on every session created by this adapter. It is the fallback path when the
// client reference is lost in transit.
const metadataOrderNumber = "orderNumber"

// orderNumber recovers the merchant-assigned order reference from the decoded
// payload. Per-category precedence: checkout sessions prefer the explicit
// client reference and fall back to metadata; payment intents and charges
// only carry metadata. A miss at every step returns "".
func orderNumber(category domain.EventCategory, raw *rawEvent) string {
	switch category {
	case domain.CategoryCheckoutCompleted:
		if raw.checkout == nil {
			return ""
		}
		if ref := strings.TrimSpace(raw.checkout.ClientReferenceID); ref != "" {
			return ref
		}
		return metadataValue(raw.checkout.Metadata, metadataOrderNumber)
	case domain.CategoryPaymentSucceeded, domain.CategoryPaymentFailed:
		if raw.intent == nil {
			return ""
		}
		return metadataValue(raw.intent.Metadata, metadataOrderNumber)
	case domain.CategoryChargeRefunded, domain.CategoryRefundUpdated:
		if raw.charge == nil {
			return ""
		}
		return metadataValue(raw.charge.Metadata, metadataOrderNumber)
	default:
		return ""
	}
}

func metadataValue(metadata map[string]string, key string) string {
	if metadata == nil {
		return ""
	}
	return strings.TrimSpace(metadata[key])
}
