// Package annodex provides an embedded Go client for the annodex
// document and role store. It talks to Redis directly, running the same
// resolution and authorization logic as the API server, so batch jobs and
// migration tools can manage roles without going through HTTP.
//
// Every call acts as an Actor: a caller identity the role resolver
// evaluates. System() bypasses authorization entirely and is meant for
// trusted offline tooling.
//
//	client, _ := annodex.New(ctx, annodex.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	_, _ = client.Projects().Create(ctx, annodex.System(), "reviews", "Review corpus", "", "")
//	_, _ = client.Roles().Set(ctx, annodex.System(), "*@example.com", "reviews", "READER")
//	rule, _ := client.Roles().Resolve(ctx, annodex.As("bob@example.com"), "reviews")
package annodex
