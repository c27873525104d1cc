// Package relay carries the postboard exchange over TCP.
//
// Server accepts connections and runs one exchange per connection on its own
// goroutine; the post store behind the exchange is the only state shared
// between them. Dial opens the client side, retrying transient network
// failures under a retry.Policy.
package relay
