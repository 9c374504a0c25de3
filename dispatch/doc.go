// Package dispatch implements request/reply RPC over a message broker.
//
// Requests are published to a per-channel backend queue with a unique
// correlation id and a reply-to address. A single shared reply queue feeds
// a resolver loop that matches replies back to in-flight calls; replies
// with unknown or already-resolved correlation ids are ignored. Broker
// access sits behind the Transport interface so the client logic can be
// exercised without a live broker.
package dispatch
