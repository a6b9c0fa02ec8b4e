package tracing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsCustomerData(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/sales"),
		attribute.String("search", "neha"),
		attribute.String("phone_number", "98765"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorKeepsOutermostMessage(t *testing.T) {
	err := fmt.Errorf("data_source_unavailable: %w", errors.New("SELECT * FROM sales failed"))
	assert.EqualError(t, SafeError(err), "data_source_unavailable")
	assert.Nil(t, SafeError(nil))
}
