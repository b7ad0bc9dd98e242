package alarm

import (
	"context"

	"google.golang.org/grpc/metadata"

	domain "github.com/oshokin/ironrise/internal/domain/alarm"
)

// Metadata keys carrying the calling actor.
const (
	HostnameMetadataKey = "x-ironrise-hostname"
	UsernameMetadataKey = "x-ironrise-username"
)

// ActorToOutgoingContext attaches the actor to outgoing call metadata.
func ActorToOutgoingContext(ctx context.Context, actor *domain.Actor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx,
		HostnameMetadataKey, actor.Hostname,
		UsernameMetadataKey, actor.Username,
	)
}

// ActorFromIncomingContext extracts the actor from incoming call metadata.
// Returns nil when the caller did not identify itself.
func ActorFromIncomingContext(ctx context.Context) *domain.Actor {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	actor := &domain.Actor{
		Hostname: firstValue(md, HostnameMetadataKey),
		Username: firstValue(md, UsernameMetadataKey),
	}

	if actor.Hostname == "" && actor.Username == "" {
		return nil
	}

	return actor
}

func firstValue(md metadata.MD, key string) string {
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}

	return values[0]
}
