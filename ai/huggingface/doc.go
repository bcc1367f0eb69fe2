// Package huggingface embeds text through the hosted feature-extraction
// inference API.
//
// Requests that hit a cold model (503) or a rate limit (429) wait at least
// five seconds, longer when the service reports an estimated load time.
// Timeouts, transport failures and other 5xx answers back off
// exponentially from Config.InitialDelay. Any other 4xx fails at once.
// Every returned vector is checked against Config.Dimension.
package huggingface
