/*
Package dna defines the attribute vocabulary of an Organism.

An attribute (Amino) is a named, kind-tagged unit of the organism's contract:

  - Config: immutable value supplied at construction.
  - State: mutable, observable value with a declared default.
  - Event: write-only trigger without return value.
  - Listen: reachable only through a same-named Event (or State) of the host.
  - Query: request/response computation.

A Dna maps attribute names to Aminos. A Genome adds the Dna of the child slots
(endo) and, optionally, the Dna the organism expects from its host.
*/
package dna
