// Package matchmaker is the embedded client of the matchmaking service.
//
// It talks to Redis or Valkey directly and runs the same profile and
// matching logic as the HTTP API, so tools and tests can rank users
// without a running server:
//
//	c, err := matchmaker.New(ctx, matchmaker.WithRedis("localhost:6379", ""))
//	if err != nil { ... }
//	defer c.Close()
//
//	ranking, err := c.Matches(ctx, "minsu")
package matchmaker
