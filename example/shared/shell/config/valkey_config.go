package config

import (
	"github.com/valkey-io/valkey-go"
	"github.com/valkey-io/valkey-go/valkeyotel"
)

// ValkeyClientConfig creates a Valkey client for the given address with
// OpenTelemetry instrumentation so client-side command spans and metrics
// land in the same observability stack as the data layer's own telemetry.
func ValkeyClientConfig(address string) (valkey.Client, error) {
	client, err := valkeyotel.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
		ClientName:  "catalog-demo",
	})
	if err != nil {
		return nil, err
	}

	return client, nil
}

// ValkeyTestAddress returns the address for the test Valkey instance.
func ValkeyTestAddress() string {
	return "localhost:6379"
}
