// Package braintrust provides a Go client for the braintrust assistant API,
// a question answering service over community discussion threads.
//
//	client := braintrust.New("http://localhost:8080",
//	    braintrust.WithAPIKey("secret"),
//	)
//
//	answer, err := client.Ask(ctx, "How do I tune HNSW recall?", 5)
//	threads, err := client.Similar(ctx, "redis memory usage", 5)
//	summary, err := client.Summarize(ctx, "thread-42")
//	experts, err := client.Experts(ctx, []string{"redis", "go"}, 3)
//
// Errors returned by the service carry a machine-readable code; use
// errors.As with *braintrust.APIError, or the IsNotFound and IsValidation
// helpers, to branch on them.
package braintrust
