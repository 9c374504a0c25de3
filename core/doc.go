// Package core contains the canonical message schema, channel contracts, and
// configuration for the messaging gateway. Channel adapters and transports
// must depend on this package; core must not depend on channel-specific or
// broker-specific packages.
package core
