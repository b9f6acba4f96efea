// Package messaging provides a broker-agnostic publish/consume API.
//
// NATS, NSQ and Kafka are the network drivers; Memory is an in-process broker
// for single-node deployments and tests. Headers travel with every message so
// a consumer can continue the producer's correlation ID.
package messaging
