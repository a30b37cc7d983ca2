/*
Package domain contains the shared models of the cells runtime.

It is kept free of runtime behaviour so that adapters (metrics, Redis, HTTP)
can depend on it without importing the organism package.

# Key Entities

  - Record: the structured event emitted for every state change, event firing,
    query start/end and listener invocation.
  - Signal: the payload handed to probes and inhibitors.
  - InvariantError: the fatal (programmer-error) tier of failures.
*/
package domain
