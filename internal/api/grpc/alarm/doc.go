// Package alarm implements the gRPC control transport for the alarm daemon.
//
// The AlarmControl service is declared by hand over protobuf well-known types
// (StringValue, Empty, Struct), so no generated code is needed. The package
// holds the service descriptor, the server adapter over a business-service
// interface, and a thin client stub.
package alarm
