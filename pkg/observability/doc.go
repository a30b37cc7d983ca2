/*
Package observability turns the record stream of an organism tree into
metrics and structured logs.

Both Metrics.Observe and LogObserver fit domain.Observer and are attached with
Organism.Subscribe. Subscribing on the root sees every descendant, since
records bubble up.
*/
package observability
